package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

const (
	chatTopK       = 5
	maxChatHistory = 20
)

const chatSystemPrompt = `You are a research assistant discussing one saved analysis.
Answer using the analysis summary and the source excerpts below. If they do not contain the answer, say so.`

type ChatService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	streamer core.ChatStreamer
	logger   *zap.Logger
}

func NewChatService(db core.DbClient, embedder core.EmbeddingProvider, streamer core.ChatStreamer, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{db: db, embedder: embedder, streamer: streamer, logger: logger}
}

// Stream answers message about one analysis, passing reply chunks to onChunk.
// Until the analysis has been indexed only its summary is used as context.
func (s *ChatService) Stream(ctx context.Context, userID, analysisID string, history []models.ChatMessage, message string, onChunk func(string) error) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}

	rec, err := s.db.GetAnalysis(ctx, userID, analysisID)
	if err != nil {
		return err
	}

	excerpts, err := s.retrieve(ctx, analysisID, message)
	if err != nil {
		return err
	}
	s.logger.Debug("chat context",
		zap.String("analysis_id", analysisID),
		zap.Int("excerpts", len(excerpts)),
		zap.String("status", rec.Status),
	)

	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	return s.streamer.StreamChat(ctx, chatPrompt(rec.Result.Summary, excerpts), history, message, onChunk)
}

func (s *ChatService) retrieve(ctx context.Context, analysisID, message string) ([]models.AnalysisChunk, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{message})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed question: got %d vectors", len(vecs))
	}
	chunks, err := s.db.SearchAnalysisChunks(ctx, analysisID, vecs[0], chatTopK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	return chunks, nil
}

func chatPrompt(summary string, excerpts []models.AnalysisChunk) string {
	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	b.WriteString("\n\nSummary:\n")
	b.WriteString(strings.TrimSpace(summary))
	if len(excerpts) > 0 {
		b.WriteString("\n\nExcerpts:")
		for i, ch := range excerpts {
			fmt.Fprintf(&b, "\n[%d] %s", i+1, ch.Text)
		}
	}
	return b.String()
}
