package ingestion_engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

const (
	mimePDF  = "application/pdf"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// NamedExtractor converts documents whose format is implied by the file name.
type NamedExtractor interface {
	Supports(name string) bool
	ExtractNamed(ctx context.Context, name string, data []byte) (string, error)
}

// BatchResult is the outcome of one Ingest call.
//
// Files holds the previously ingested files followed by the files accepted
// in this batch, in input order. Errors holds one entry per rejected file.
type BatchResult struct {
	Files  []models.UploadedFile
	Added  []models.UploadedFile
	Errors []*FileError
}

// Messages returns the user-facing error messages of the batch.
func (r BatchResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// Coordinator classifies uploaded files and dispatches them to the matching
// extractor. Files are handled one at a time in input order.
type Coordinator struct {
	pdf      core.DocumentExtractor
	pptx     core.DocumentExtractor
	extended NamedExtractor
	maxSize  int64
	logger   *zap.Logger
}

// NewCoordinator wires the production extractors described by cfg.
func NewCoordinator(cfg *IngestConfig, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	var extended NamedExtractor
	if cfg.ExtendedFormats {
		extended = NewDocconvExtractor(false, logger)
	}
	return NewCoordinatorWith(
		NewPDFExtractor(LedongthucDecoder{}, PDFOptions{StrictValidation: cfg.StrictPDF}, logger),
		NewPPTXExtractor(PPTXOptions{SortSlides: cfg.SortSlides}, logger),
		extended,
		cfg,
		logger,
	)
}

// NewCoordinatorWith builds a Coordinator from explicit extractors.
// extended may be nil, in which case only images, PDF and PPTX are accepted.
func NewCoordinatorWith(pdf, pptx core.DocumentExtractor, extended NamedExtractor, cfg *IngestConfig, logger *zap.Logger) *Coordinator {
	c := *cfg
	c.defaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{pdf: pdf, pptx: pptx, extended: extended, maxSize: c.MaxFileSize, logger: logger}
}

// MaxFileSize returns the per-file ceiling in bytes.
func (c *Coordinator) MaxFileSize() int64 { return c.maxSize }

// Ingest processes batch and appends the accepted files to existing. It
// never fails as a whole: every rejected file yields exactly one FileError
// and processing continues with the next file.
func (c *Coordinator) Ingest(ctx context.Context, existing []models.UploadedFile, batch []SourceFile) BatchResult {
	res := BatchResult{Files: append([]models.UploadedFile(nil), existing...)}

	for _, f := range batch {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, &FileError{Name: f.Name(), Kind: err, Err: err})
			continue
		}

		uf, ferr := c.ingestOne(ctx, f)
		if ferr != nil {
			c.logger.Warn("file rejected",
				zap.String("file", f.Name()),
				zap.String("type", f.ContentType()),
				zap.Error(ferr))
			res.Errors = append(res.Errors, ferr)
			continue
		}
		c.logger.Info("file ingested",
			zap.String("file", uf.Name),
			zap.String("type", uf.Type),
			zap.Int("data_len", len(uf.Data)))
		res.Added = append(res.Added, uf)
	}

	res.Files = append(res.Files, res.Added...)
	return res
}

func (c *Coordinator) ingestOne(ctx context.Context, f SourceFile) (models.UploadedFile, *FileError) {
	name, mimeType := f.Name(), f.ContentType()

	if f.Size() > c.maxSize {
		return models.UploadedFile{}, c.sizeError(name, f.Size())
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		data, ferr := c.read(f)
		if ferr != nil {
			return models.UploadedFile{}, ferr
		}
		url := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
		return models.UploadedFile{Name: name, Type: mimeType, Data: url, Preview: url}, nil

	case strings.HasSuffix(lower, ".pdf") || mimeType == mimePDF:
		return c.extract(ctx, f, orDefault(mimeType, mimePDF), c.pdf.Extract)

	case strings.HasSuffix(lower, ".pptx"):
		return c.extract(ctx, f, orDefault(mimeType, mimePPTX), c.pptx.Extract)

	case c.extended != nil && c.extended.Supports(name):
		return c.extract(ctx, f, orDefault(mimeType, "text/plain"), func(ctx context.Context, data []byte) (string, error) {
			return c.extended.ExtractNamed(ctx, name, data)
		})

	default:
		return models.UploadedFile{}, &FileError{Name: name, Kind: ErrUnsupportedType, Err: ErrUnsupportedType}
	}
}

func (c *Coordinator) extract(ctx context.Context, f SourceFile, mimeType string, fn func(context.Context, []byte) (string, error)) (models.UploadedFile, *FileError) {
	data, ferr := c.read(f)
	if ferr != nil {
		return models.UploadedFile{}, ferr
	}
	text, err := fn(ctx, data)
	if err != nil {
		kind := ErrDecodeFailure
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			kind = ctxErr
		}
		return models.UploadedFile{}, &FileError{Name: f.Name(), Kind: kind, Err: err}
	}
	return models.UploadedFile{Name: f.Name(), Type: mimeType, Data: text}, nil
}

// read loads the whole file, enforcing the ceiling against the actual
// content as well as the declared size.
func (c *Coordinator) read(f SourceFile) ([]byte, *FileError) {
	rc, err := f.Open()
	if err != nil {
		return nil, &FileError{Name: f.Name(), Kind: ErrDecodeFailure, Err: fmt.Errorf("open: %w", err)}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, c.maxSize+1))
	if err != nil {
		return nil, &FileError{Name: f.Name(), Kind: ErrDecodeFailure, Err: fmt.Errorf("read: %w", err)}
	}
	if int64(len(data)) > c.maxSize {
		return nil, c.sizeError(f.Name(), int64(len(data)))
	}
	return data, nil
}

func (c *Coordinator) sizeError(name string, size int64) *FileError {
	return &FileError{
		Name: name,
		Kind: ErrSizeLimitExceeded,
		Err:  fmt.Errorf("%d bytes exceeds the %s limit", size, formatBytes(c.maxSize)),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatBytes(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
