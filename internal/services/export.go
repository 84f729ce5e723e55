package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	objectclient "github.com/Udhayakumar116/ai-question-gen/internal/core/object-client"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

var (
	ErrExportFormat    = errors.New("unsupported export format")
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// ExportFile is a rendered analysis ready to download or publish.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export renders rec as csv, md or json.
func Export(rec *models.AnalysisRecord, format string) (*ExportFile, error) {
	var (
		data []byte
		ct   string
		err  error
	)
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "csv":
		data, err = exportCSV(&rec.Result)
		ct = "text/csv; charset=utf-8"
	case "md", "markdown":
		format = "md"
		data = exportMarkdown(rec.Title, &rec.Result)
		ct = "text/markdown; charset=utf-8"
	case "json":
		data, err = json.MarshalIndent(rec.Result, "", "  ")
		ct = "application/json"
	default:
		return nil, fmt.Errorf("%w: %q", ErrExportFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	return &ExportFile{Name: "analysis-" + rec.ID + "." + format, ContentType: ct, Data: data}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func exportCSV(res *models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"section", "item", "detail", "value"},
		{"summary", "Summary", res.Summary, ""},
	}
	for _, g := range res.Gaps {
		rows = append(rows, []string{"gap", g.Title, g.Description, g.Severity})
	}
	for _, s := range res.Saturation {
		rows = append(rows, []string{"saturation", s.Topic, s.Trend, formatFloat(s.Saturation)})
	}
	for _, q := range res.Questions {
		rows = append(rows, []string{"question", q.Question, q.Rationale, q.Impact})
	}
	for _, n := range res.Graph.Nodes {
		rows = append(rows, []string{"concept", n.Label, n.Group, strconv.Itoa(n.Value)})
	}
	for _, l := range res.Graph.Links {
		rows = append(rows, []string{"link", l.Source + " -> " + l.Target, l.Label, formatFloat(l.Strength)})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportMarkdown(title string, res *models.AnalysisResult) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## Summary\n\n%s\n", title, strings.TrimSpace(res.Summary))

	if len(res.Gaps) > 0 {
		b.WriteString("\n## Research Gaps\n")
		for _, g := range res.Gaps {
			fmt.Fprintf(&b, "\n### %s (%s)\n\n%s\n", g.Title, g.Severity, g.Description)
			if len(g.RelatedConcepts) > 0 {
				fmt.Fprintf(&b, "\nRelated: %s\n", strings.Join(g.RelatedConcepts, ", "))
			}
		}
	}

	if len(res.Saturation) > 0 {
		b.WriteString("\n## Topic Saturation\n\n| Topic | Saturation | Trend |\n|---|---|---|\n")
		for _, s := range res.Saturation {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(s.Topic), formatFloat(s.Saturation), mdCell(s.Trend))
		}
	}

	if len(res.Questions) > 0 {
		b.WriteString("\n## Research Questions\n\n")
		for i, q := range res.Questions {
			fmt.Fprintf(&b, "%d. **%s**\n   %s\n", i+1, q.Question, q.Rationale)
			if q.Methodology != "" {
				fmt.Fprintf(&b, "   Methodology: %s\n", q.Methodology)
			}
		}
	}

	if len(res.Graph.Nodes) > 0 {
		b.WriteString("\n## Concepts\n\n")
		for _, n := range res.Graph.Nodes {
			fmt.Fprintf(&b, "- %s (%s)\n", n.Label, n.Group)
		}
	}
	return []byte(b.String())
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportService renders saved analyses and optionally publishes them to
// object storage.
type ExportService struct {
	db    core.DbClient
	store core.ObjectClient
	now   func() time.Time
}

// NewExportService builds the service; store may be nil when object storage
// is disabled.
func NewExportService(db core.DbClient, store core.ObjectClient) *ExportService {
	return &ExportService{db: db, store: store, now: time.Now}
}

func (s *ExportService) Render(ctx context.Context, userID, id, format string) (*ExportFile, error) {
	rec, err := s.db.GetAnalysis(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return Export(rec, format)
}

// Publish uploads the rendered analysis to the default bucket and returns
// its object URL.
func (s *ExportService) Publish(ctx context.Context, userID, id, format string) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	file, err := s.Render(ctx, userID, id, format)
	if err != nil {
		return "", err
	}
	ext := file.Name[strings.LastIndexByte(file.Name, '.')+1:]
	key := objectclient.ExportKey(userID, id, ext, s.now())
	return s.store.UploadFile(ctx, "", key, bytes.NewReader(file.Data), file.ContentType)
}
