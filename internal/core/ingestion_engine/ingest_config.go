package ingestion_engine

import (
	"github.com/Udhayakumar116/ai-question-gen/internal/config"
)

// IngestConfig tunes file ingestion and the chat indexing pipeline.
//
// MaxFileSize:     per-file ceiling in bytes; a file of exactly this size is accepted.
// StrictPDF:       validate PDFs with pdfcpu before decoding.
// SortSlides:      emit PPTX slides in numeric order instead of archive order.
// ExtendedFormats: route docx/odt/rtf/html/txt through docconv instead of rejecting them.
// TargetTokens:    approximate tokens per chat chunk (e.g., 200).
// OverlapTokens:   token overlap between consecutive chunks.
// BatchSize:       how many chunks to embed/write in one batch.
type IngestConfig struct {
	MaxFileSize     int64
	StrictPDF       bool
	SortSlides      bool
	ExtendedFormats bool

	TargetTokens  int
	OverlapTokens int
	BatchSize     int
}

// NewIngestConfig derives the ingestion settings from the service config.
func NewIngestConfig(cfg *config.Config) *IngestConfig {
	return &IngestConfig{
		MaxFileSize:     cfg.MaxUploadBytes,
		StrictPDF:       cfg.StrictPDFValidation,
		SortSlides:      cfg.SortSlides,
		ExtendedFormats: cfg.EnableExtendedFormats,
		TargetTokens:    200,
		OverlapTokens:   20,
		BatchSize:       16,
	}
}

func (c *IngestConfig) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = config.DefaultMaxUploadBytes
	}
	if c.TargetTokens <= 0 {
		c.TargetTokens = 200
	}
	if c.OverlapTokens < 0 {
		c.OverlapTokens = 0
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 16
	}
}
