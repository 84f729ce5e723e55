package core

import (
	"context"

	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AnalysisRequest is the input of one research analysis: the user's free
// text plus every ingested file.
type AnalysisRequest struct {
	Text  string
	Files []models.UploadedFile
}

// Analyzer asks the generative model for a fixed-schema research analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*models.AnalysisResult, error)
}

// ChatStreamer streams an assistant reply chunk by chunk.
type ChatStreamer interface {
	StreamChat(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string, onChunk func(string) error) error
}
