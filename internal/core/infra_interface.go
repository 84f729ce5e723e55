package core

import (
	"context"
	"errors"
	"io"

	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

// DbClient defines all persistence operations your services will need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, userID, id string) (*models.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, userID string) ([]models.AnalysisRecord, error)
	DeleteAnalysis(ctx context.Context, userID, id string) error
	UpdateAnalysisStatus(ctx context.Context, id string, status string) error
	// GetAnalysisSource returns the stored source text without an ownership check.
	GetAnalysisSource(ctx context.Context, id string) (string, error)

	InsertAnalysisChunks(ctx context.Context, chunks []models.AnalysisChunk) error
	DeleteAnalysisChunks(ctx context.Context, analysisID string) error
	SearchAnalysisChunks(ctx context.Context, analysisID string, queryVec []float32, limit int) ([]models.AnalysisChunk, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// ErrNotFound is returned when a record does not exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")
