package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

var (
	ErrInvalidUser        = errors.New("invalid user payload")
	ErrUserExists         = errors.New("user exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLen = 8

type UserService struct {
	db core.DbClient
}

func NewUserService(db core.DbClient) *UserService {
	return &UserService{db: db}
}

// Signup hashes the password and stores a new user.
func (s *UserService) Signup(ctx context.Context, firstName, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || len(password) < minPasswordLen {
		return nil, ErrInvalidUser
	}

	existing, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(firstName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user whose password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.db.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
