package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

func TestParseDataURL(t *testing.T) {
	mime, data, err := ParseDataURL("data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("hi"), data)

	for _, bad := range []string{"image/png;base64,aGk=", "data:image/png;base64", "data:image/png,aGk=", "data:image/png;base64,***"} {
		_, _, err := ParseDataURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestAnalysisParts(t *testing.T) {
	parts, err := analysisParts(core.AnalysisRequest{
		Text: "  my notes ",
		Files: []models.UploadedFile{
			{Name: "a.pdf", Type: "application/pdf", Data: "--- Page 1 ---\nbody"},
			{Name: "fig.png", Type: "image/png", Data: "data:image/png;base64,aGk=", Preview: "data:image/png;base64,aGk="},
		},
	})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, genai.Text("## Notes\nmy notes\n\n## Document: a.pdf\n--- Page 1 ---\nbody\n\n## Image: fig.png (attached)"), parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte("hi")}, parts[1])
}

func TestAnalysisParts_Empty(t *testing.T) {
	_, err := analysisParts(core.AnalysisRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyAnalysis)
}

func TestAnalysisParts_BadImage(t *testing.T) {
	_, err := analysisParts(core.AnalysisRequest{Files: []models.UploadedFile{{Name: "x.png", Type: "image/png", Data: "nope"}}})
	assert.ErrorContains(t, err, "x.png")
}

func TestDecodeAnalysis(t *testing.T) {
	raw := "```json\n" + `{"summary":"s","gaps":[{"title":"g","description":"d","severity":"high"}],` +
		`"conceptGraph":{"nodes":[{"id":"n1","label":"N","group":"core","val":3}]},"questions":[]}` + "\n```"

	res, err := decodeAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "s", res.Summary)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, "high", res.Gaps[0].Severity)
	assert.Equal(t, 3, res.Graph.Nodes[0].Value)
	assert.NotNil(t, res.Graph.Links)
	assert.NotNil(t, res.Saturation)
}

func TestDecodeAnalysis_Malformed(t *testing.T) {
	_, err := decodeAnalysis("not json")
	assert.ErrorContains(t, err, "malformed reply")

	_, err = decodeAnalysis("  ")
	assert.Error(t, err)
}

func TestAnalysisSchema_CoversResultFields(t *testing.T) {
	s := analysisSchema()
	for _, key := range []string{"summary", "gaps", "conceptGraph", "saturation", "questions"} {
		assert.Contains(t, s.Properties, key)
	}
	assert.Equal(t, genai.TypeArray, s.Properties["gaps"].Type)
	assert.Contains(t, s.Properties["conceptGraph"].Properties["nodes"].Items.Properties, "val")
}

func TestChatHistory(t *testing.T) {
	got := chatHistory([]models.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "model", Content: " "},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("hello")}, got[1].Parts)
}
