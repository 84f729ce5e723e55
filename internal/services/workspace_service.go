package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Udhayakumar116/ai-question-gen/internal/core/ingestion_engine"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

var ErrFileIndex = errors.New("no file at that index")

// FileIngester turns a batch of uploads into ingested files.
type FileIngester interface {
	Ingest(ctx context.Context, existing []models.UploadedFile, batch []ingestion_engine.SourceFile) ingestion_engine.BatchResult
}

// WorkspaceService holds each user's ingested files in memory until they
// are analyzed or cleared.
type WorkspaceService struct {
	ingester FileIngester

	mu    sync.RWMutex
	files map[string][]models.UploadedFile
}

func NewWorkspaceService(ingester FileIngester) *WorkspaceService {
	return &WorkspaceService{ingester: ingester, files: make(map[string][]models.UploadedFile)}
}

// Upload ingests batch and appends the accepted files to the user's
// workspace. The returned result lists the whole workspace in Files.
func (s *WorkspaceService) Upload(ctx context.Context, userID string, batch []ingestion_engine.SourceFile) ingestion_engine.BatchResult {
	res := s.ingester.Ingest(ctx, nil, batch)
	res.Files = s.Add(userID, res.Added)
	return res
}

// Add appends files and returns a copy of the workspace.
func (s *WorkspaceService) Add(userID string, files []models.UploadedFile) []models.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[userID] = append(s.files[userID], files...)
	return clone(s.files[userID])
}

func (s *WorkspaceService) List(userID string) []models.UploadedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.files[userID])
}

func (s *WorkspaceService) Remove(userID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.files[userID]
	if index < 0 || index >= len(cur) {
		return ErrFileIndex
	}
	s.files[userID] = append(cur[:index:index], cur[index+1:]...)
	return nil
}

func (s *WorkspaceService) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, userID)
}

func clone(in []models.UploadedFile) []models.UploadedFile {
	out := make([]models.UploadedFile, len(in))
	copy(out, in)
	return out
}
