package ingestion_engine

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFDecoder opens raw PDF bytes. It is the seam between the extractor and
// the third-party parser, so tests can substitute their own pages.
type PDFDecoder interface {
	Decode(data []byte) (PDFDocument, error)
}

// PDFDocument exposes the positioned text of an opened PDF.
// Pages are 1-indexed.
type PDFDocument interface {
	NumPages() (int, error)
	Fragments(page int) ([]Fragment, error)
}

// LedongthucDecoder decodes PDFs with github.com/ledongthuc/pdf. The library
// panics on some malformed inputs; every call is guarded and panics come
// back as errors.
type LedongthucDecoder struct{}

func (LedongthucDecoder) Decode(data []byte) (doc PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{r: r}, nil
}

type ledongthucDocument struct {
	r *pdf.Reader
}

func (d *ledongthucDocument) NumPages() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("read page tree: %v", r)
		}
	}()
	return d.r.NumPage(), nil
}

func (d *ledongthucDocument) Fragments(num int) (frags []Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("read page %d: %v", num, r)
		}
	}()

	page := d.r.Page(num)
	if page.V.IsNull() {
		return nil, nil
	}
	texts := page.Content().Text
	frags = make([]Fragment, 0, len(texts))
	for _, t := range texts {
		frags = append(frags, Fragment{S: t.S, X: t.X, Y: t.Y, W: t.W, Page: num})
	}
	return frags, nil
}
