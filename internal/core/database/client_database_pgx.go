package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/Udhayakumar116/ai-question-gen/internal/config"
	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends certificate verification to the URL when a CA bundle is
// configured.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for analysis history

func (c *DatabaseClient) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec == nil {
		return errors.New("nil analysis")
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	files, err := json.Marshal(nonNil(rec.FileNames))
	if err != nil {
		return fmt.Errorf("encode file names: %w", err)
	}

	const q = `
		INSERT INTO analyses
			(id, user_id, title, source_text, file_names, result, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at, updated_at
	`
	return c.db.QueryRowContext(ctx, q,
		rec.ID, rec.UserID, rec.Title, rec.SourceText, string(files), string(result), rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (c *DatabaseClient) GetAnalysis(ctx context.Context, userID, id string) (*models.AnalysisRecord, error) {
	const q = `
		SELECT id, user_id, title, file_names, result, status, created_at, updated_at
		FROM analyses
		WHERE id = $1 AND user_id = $2
	`
	rec, err := scanAnalysis(c.db.QueryRowContext(ctx, q, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return rec, err
}

func (c *DatabaseClient) ListAnalyses(ctx context.Context, userID string) ([]models.AnalysisRecord, error) {
	const q = `
		SELECT id, user_id, title, file_names, result, status, created_at, updated_at
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteAnalysis(ctx context.Context, userID, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) UpdateAnalysisStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE analyses
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("analysis %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (c *DatabaseClient) GetAnalysisSource(ctx context.Context, id string) (string, error) {
	var src string
	err := c.db.QueryRowContext(ctx, `SELECT source_text FROM analyses WHERE id = $1`, id).Scan(&src)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	return src, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*models.AnalysisRecord, error) {
	var rec models.AnalysisRecord
	var files, result []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &files, &result, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(files, &rec.FileNames); err != nil {
		return nil, fmt.Errorf("decode file names: %w", err)
	}
	if err := json.Unmarshal(result, &rec.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &rec, nil
}

// Implementing the db interface for analysis chunks

// InsertAnalysisChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertAnalysisChunks(ctx context.Context, chunks []models.AnalysisChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO analysis_chunks
			(id, analysis_id, position, text, embedding, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.AnalysisID, ch.Position, ch.Text, pgvector.NewVector(ch.Embedding), ch.TokenCount, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// DeleteAnalysisChunks removes every chunk of an analysis.
func (c *DatabaseClient) DeleteAnalysisChunks(ctx context.Context, analysisID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM analysis_chunks WHERE analysis_id = $1`, analysisID)
	return err
}

// SearchAnalysisChunks finds top-k similar chunks within an analysis for a query embedding.
func (c *DatabaseClient) SearchAnalysisChunks(ctx context.Context, analysisID string, queryVec []float32, limit int) ([]models.AnalysisChunk, error) {
	const q = `
		SELECT id, analysis_id, position, text, embedding, token_count, created_at
		FROM analysis_chunks
		WHERE analysis_id = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, analysisID, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AnalysisChunk
	for rows.Next() {
		var (
			ch  models.AnalysisChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(&ch.ID, &ch.AnalysisID, &ch.Position, &ch.Text, &emb, &ch.TokenCount, &ch.CreatedAt); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
