package ingestion_engine

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
)

var _ core.DocumentExtractor = (*PPTXExtractor)(nil)

var (
	slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	textRunRe   = regexp.MustCompile(`(?s)<a:t>(.*?)</a:t>`)
)

const pptxUserMessage = "the presentation could not be opened"

// PPTXExtractor produces slide-tagged plain text, including speaker notes,
// from a PowerPoint (OOXML) archive.
type PPTXExtractor struct {
	sortSlides bool
	logger     *zap.Logger
}

// PPTXOptions configures a PPTXExtractor.
//
// SortSlides emits slides in numeric order instead of archive order.
type PPTXOptions struct {
	SortSlides bool
}

func NewPPTXExtractor(opts PPTXOptions, logger *zap.Logger) *PPTXExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PPTXExtractor{sortSlides: opts.SortSlides, logger: logger}
}

type slidePart struct {
	num  int
	file *zip.File
}

// Extract returns one block per slide: "--- Slide N ---", the slide's text
// runs joined by spaces and, when the notes part has text,
// "[Slide N Notes: ...]". Blocks are newline separated.
func (e *PPTXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", decodeError("pptx", pptxUserMessage, err)
	}

	notes := make(map[string]*zip.File)
	var slides []slidePart
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/notesSlides/") {
			notes[f.Name] = f
			continue
		}
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", decodeError("pptx", pptxUserMessage, fmt.Errorf("slide name %q: %w", f.Name, err))
		}
		slides = append(slides, slidePart{num: n, file: f})
	}

	if e.sortSlides {
		sort.SliceStable(slides, func(i, j int) bool { return slides[i].num < slides[j].num })
	}

	blocks := make([]string, 0, len(slides))
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := readRuns(s.file)
		if err != nil {
			return "", decodeError("pptx", pptxUserMessage, err)
		}

		block := fmt.Sprintf("--- Slide %d ---\n%s", s.num, text)
		if nf, ok := notes[fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", s.num)]; ok {
			noteText, err := readRuns(nf)
			if err != nil {
				return "", decodeError("pptx", pptxUserMessage, err)
			}
			if strings.TrimSpace(noteText) != "" {
				block += fmt.Sprintf("\n[Slide %d Notes: %s]", s.num, noteText)
			}
		}
		blocks = append(blocks, block)
	}

	e.logger.Debug("pptx extracted", zap.Int("slides", len(slides)))
	return strings.Join(blocks, "\n"), nil
}

// readRuns returns the text runs of one XML part joined with single spaces.
func readRuns(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return joinRuns(raw), nil
}

func joinRuns(xml []byte) string {
	matches := textRunRe.FindAllSubmatch(xml, -1)
	runs := make([]string, 0, len(matches))
	for _, m := range matches {
		runs = append(runs, html.UnescapeString(string(m[1])))
	}
	return strings.Join(runs, " ")
}
