package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
)

var _ core.DocumentExtractor = (*PDFExtractor)(nil)

const pdfUserMessage = "the PDF is corrupt or uses an unsupported structure"

// PDFExtractor produces page-tagged plain text from a PDF.
type PDFExtractor struct {
	decoder PDFDecoder
	strict  bool
	logger  *zap.Logger
}

// PDFOptions configures a PDFExtractor.
//
// StrictValidation runs the document through pdfcpu's validator before
// decoding and rejects anything it does not accept.
type PDFOptions struct {
	StrictValidation bool
}

func NewPDFExtractor(decoder PDFDecoder, opts PDFOptions, logger *zap.Logger) *PDFExtractor {
	if decoder == nil {
		decoder = LedongthucDecoder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{decoder: decoder, strict: opts.StrictValidation, logger: logger}
}

// Extract decodes every page in order and returns the blocks
// "--- Page N ---\n<text>" separated by blank lines. Any page failure fails
// the whole document.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if e.strict {
		if err := api.Validate(bytes.NewReader(data), model.NewDefaultConfiguration()); err != nil {
			return "", decodeError("pdf", "the file is not a valid PDF", err)
		}
	}

	doc, err := e.decoder.Decode(data)
	if err != nil {
		return "", decodeError("pdf", pdfUserMessage, err)
	}
	n, err := doc.NumPages()
	if err != nil {
		return "", decodeError("pdf", pdfUserMessage, err)
	}

	blocks := make([]string, 0, n)
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		frags, err := doc.Fragments(page)
		if err != nil {
			return "", decodeError("pdf", pdfUserMessage, fmt.Errorf("page %d: %w", page, err))
		}
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", page, ReconstructPage(frags)))
	}

	e.logger.Debug("pdf extracted", zap.Int("pages", n))
	return strings.Join(blocks, "\n\n"), nil
}
