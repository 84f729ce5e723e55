package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

const (
	StatusSaved   = "saved"
	maxTitleRunes = 80
)

// Enqueuer schedules a saved analysis for chat indexing.
type Enqueuer interface {
	Enqueue(id string)
}

type AnalysisService struct {
	db        core.DbClient
	analyzer  core.Analyzer
	workspace *WorkspaceService
	indexer   Enqueuer
	logger    *zap.Logger
}

func NewAnalysisService(db core.DbClient, analyzer core.Analyzer, workspace *WorkspaceService, indexer Enqueuer, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{db: db, analyzer: analyzer, workspace: workspace, indexer: indexer, logger: logger}
}

// Run analyzes the user's free text together with every file in their
// workspace, stores the result in history and queues it for chat indexing.
func (s *AnalysisService) Run(ctx context.Context, userID, text string) (*models.AnalysisRecord, error) {
	files := s.workspace.List(userID)
	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return nil, fmt.Errorf("%w: add text or upload files first", ErrInvalidInput)
	}

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, core.AnalysisRequest{Text: text, Files: files})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	rec := &models.AnalysisRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      analysisTitle(text, names),
		SourceText: sourceText(text, files),
		FileNames:  names,
		Result:     *result,
		Status:     StatusSaved,
	}
	if err := s.db.SaveAnalysis(ctx, rec); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	s.logger.Info("analysis saved",
		zap.String("analysis_id", rec.ID),
		zap.String("user_id", userID),
		zap.Int("files", len(files)),
		zap.Duration("took", time.Since(start)),
	)
	if s.indexer != nil {
		s.indexer.Enqueue(rec.ID)
	}
	return rec, nil
}

func (s *AnalysisService) List(ctx context.Context, userID string) ([]models.AnalysisRecord, error) {
	return s.db.ListAnalyses(ctx, userID)
}

func (s *AnalysisService) Get(ctx context.Context, userID, id string) (*models.AnalysisRecord, error) {
	return s.db.GetAnalysis(ctx, userID, id)
}

func (s *AnalysisService) Delete(ctx context.Context, userID, id string) error {
	return s.db.DeleteAnalysis(ctx, userID, id)
}

// sourceText is the text indexed for chat: notes first, then each document.
// Images carry no text and are skipped.
func sourceText(text string, files []models.UploadedFile) string {
	var b strings.Builder
	if t := strings.TrimSpace(text); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	for _, f := range files {
		if f.IsImage() {
			continue
		}
		fmt.Fprintf(&b, "%s\n%s\n", f.Name, f.Data)
	}
	return strings.TrimSpace(b.String())
}

func analysisTitle(text string, names []string) string {
	title, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	title = strings.TrimSpace(title)
	if title == "" && len(names) > 0 {
		title = names[0]
		if len(names) > 1 {
			title = fmt.Sprintf("%s and %d more", title, len(names)-1)
		}
	}
	if title == "" {
		return "Untitled analysis"
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		r := []rune(title)
		title = strings.TrimSpace(string(r[:maxTitleRunes])) + "…"
	}
	return title
}
