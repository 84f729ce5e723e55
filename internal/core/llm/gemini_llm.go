package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

const defaultGenModel = "gemini-1.5-flash"

type GeminiLLM struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

var (
	_ core.Analyzer     = (*GeminiLLM)(nil)
	_ core.ChatStreamer = (*GeminiLLM)(nil)
)

func NewGeminiLLM(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultGenModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiLLM{client: cl, modelName: modelName, logger: logger}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) model(systemPrompt string) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return m
}

// Analyze sends the free text, document text and images in one request and
// decodes the schema-constrained JSON reply.
func (g *GeminiLLM) Analyze(ctx context.Context, req core.AnalysisRequest) (*models.AnalysisResult, error) {
	parts, err := analysisParts(req)
	if err != nil {
		return nil, err
	}

	m := g.model(analysisSystemPrompt)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = analysisSchema()

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini analyze: %w", err)
	}
	raw := responseText(resp)
	g.logger.Debug("analysis reply received", zap.Int("bytes", len(raw)), zap.Int("parts", len(parts)))

	return decodeAnalysis(raw)
}

// StreamChat replays history into a chat session and forwards every text
// chunk of the reply to onChunk. An onChunk error stops the stream.
func (g *GeminiLLM) StreamChat(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string, onChunk func(string) error) error {
	cs := g.model(systemPrompt).StartChat()
	cs.History = chatHistory(history)

	it := cs.SendMessageStream(ctx, genai.Text(message))
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if text := responseText(resp); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func chatHistory(history []models.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		role := "user"
		if msg.Role == "model" || msg.Role == "assistant" {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return out
}
