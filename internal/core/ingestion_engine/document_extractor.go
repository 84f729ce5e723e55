package ingestion_engine

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"
)

// extendedFormats are the extensions routed to docconv when extended
// formats are enabled. PDF and PPTX never reach it.
var extendedFormats = map[string]bool{
	".docx": true,
	".odt":  true,
	".rtf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".xml":  true,
}

// DocconvExtractor extracts text from office and markup formats using
// sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
	logger         *zap.Logger
}

func NewDocconvExtractor(useReadability bool, logger *zap.Logger) *DocconvExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocconvExtractor{useReadability: useReadability, logger: logger}
}

// Supports reports whether name has an extension docconv is used for.
func (e *DocconvExtractor) Supports(name string) bool {
	return extendedFormats[strings.ToLower(filepath.Ext(name))]
}

// ExtractNamed converts data using the MIME type implied by name.
func (e *DocconvExtractor) ExtractNamed(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mimeType := docconv.MimeTypeByExtension(strings.ToLower(name))

	res, err := docconv.Convert(bytes.NewReader(data), mimeType, e.useReadability)
	if err != nil {
		e.logger.Debug("docconv failed", zap.String("mime", mimeType), zap.Error(err))
		return "", decodeError("document", "the document could not be converted to text", err)
	}
	return strings.TrimSpace(res.Body), nil
}
