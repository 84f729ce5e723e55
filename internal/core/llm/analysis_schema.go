package llm

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

const analysisSystemPrompt = `You are a research analyst. Read the user's notes and the attached documents and images.
Identify research gaps, build a concept graph of the key ideas, estimate how saturated each topic already is (0-100),
and propose concrete follow-up research questions. Reply only with JSON matching the response schema.`

// ErrEmptyAnalysis is returned when a request carries neither text nor files.
var ErrEmptyAnalysis = errors.New("nothing to analyze")

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func num(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func arrayOf(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

// analysisSchema mirrors models.AnalysisResult.
func analysisSchema() *genai.Schema {
	gap := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       str("short name of the gap"),
			"description": str("what is missing and why it matters"),
			"severity": {
				Type: genai.TypeString,
				Enum: []string{"low", "medium", "high"},
			},
			"relatedConcepts": arrayOf(str("concept node id")),
		},
		Required: []string{"title", "description", "severity"},
	}
	node := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":    str("stable identifier"),
			"label": str("display label"),
			"group": str("cluster name"),
			"val":   {Type: genai.TypeInteger, Description: "relative importance"},
		},
		Required: []string{"id", "label", "group", "val"},
	}
	link := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"source":   str("node id"),
			"target":   str("node id"),
			"label":    str("relationship"),
			"strength": num("0 to 1"),
		},
		Required: []string{"source", "target", "strength"},
	}
	saturation := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"topic":      str("topic"),
			"saturation": num("0 to 100"),
			"trend": {
				Type: genai.TypeString,
				Enum: []string{"rising", "stable", "declining"},
			},
		},
		Required: []string{"topic", "saturation"},
	}
	question := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question":    str("the research question"),
			"rationale":   str("why it is worth asking"),
			"methodology": str("suggested approach"),
			"impact":      str("expected impact"),
		},
		Required: []string{"question", "rationale"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": str("overview of the material"),
			"gaps":    arrayOf(gap),
			"conceptGraph": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"nodes": arrayOf(node),
					"links": arrayOf(link),
				},
				Required: []string{"nodes", "links"},
			},
			"saturation": arrayOf(saturation),
			"questions":  arrayOf(question),
		},
		Required: []string{"summary", "gaps", "conceptGraph", "saturation", "questions"},
	}
}

// analysisParts renders the request as one text part followed by one blob
// per image.
func analysisParts(req core.AnalysisRequest) ([]genai.Part, error) {
	var (
		b     strings.Builder
		blobs []genai.Part
	)
	if t := strings.TrimSpace(req.Text); t != "" {
		b.WriteString("## Notes\n")
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	for _, f := range req.Files {
		if f.IsImage() {
			mime, data, err := ParseDataURL(f.Data)
			if err != nil {
				return nil, fmt.Errorf("image %s: %w", f.Name, err)
			}
			blobs = append(blobs, genai.Blob{MIMEType: mime, Data: data})
			fmt.Fprintf(&b, "## Image: %s (attached)\n\n", f.Name)
			continue
		}
		fmt.Fprintf(&b, "## Document: %s\n%s\n\n", f.Name, f.Data)
	}
	if b.Len() == 0 {
		return nil, ErrEmptyAnalysis
	}

	parts := make([]genai.Part, 0, len(blobs)+1)
	parts = append(parts, genai.Text(strings.TrimRight(b.String(), "\n")))
	return append(parts, blobs...), nil
}

// ParseDataURL decodes a base64 data URL ("data:<mime>;base64,<payload>").
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URL has no payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.New("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return mime, data, nil
}

// decodeAnalysis parses the model reply, tolerating a markdown code fence.
func decodeAnalysis(raw string) (*models.AnalysisResult, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil, errors.New("gemini analyze: empty reply")
	}

	var res models.AnalysisResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, fmt.Errorf("gemini analyze: malformed reply: %w", err)
	}
	if res.Gaps == nil {
		res.Gaps = []models.ResearchGap{}
	}
	if res.Graph.Nodes == nil {
		res.Graph.Nodes = []models.ConceptNode{}
	}
	if res.Graph.Links == nil {
		res.Graph.Links = []models.ConceptLink{}
	}
	if res.Saturation == nil {
		res.Saturation = []models.SaturationRecord{}
	}
	if res.Questions == nil {
		res.Questions = []models.ResearchQuestion{}
	}
	return &res, nil
}
