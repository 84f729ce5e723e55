package ingestion_engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

// stubExtractor returns a fixed text, or fails when the payload says so.
type stubExtractor struct {
	prefix string
	calls  []string
}

func (s *stubExtractor) Extract(_ context.Context, data []byte) (string, error) {
	s.calls = append(s.calls, string(data))
	if bytes.Equal(data, []byte("corrupt")) {
		return "", decodeError(s.prefix, "broken", errors.New("bad xref"))
	}
	return s.prefix + ":" + string(data), nil
}

// declaredFile reports a size independent of its content.
type declaredFile struct {
	name, mime string
	size       int64
	data       []byte
	opened     bool
}

func (f *declaredFile) Name() string        { return f.name }
func (f *declaredFile) ContentType() string { return f.mime }
func (f *declaredFile) Size() int64         { return f.size }
func (f *declaredFile) Open() (io.ReadCloser, error) {
	f.opened = true
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func newTestCoordinator(maxSize int64) (*Coordinator, *stubExtractor, *stubExtractor) {
	pdf := &stubExtractor{prefix: "pdf"}
	pptx := &stubExtractor{prefix: "pptx"}
	return NewCoordinatorWith(pdf, pptx, nil, &IngestConfig{MaxFileSize: maxSize}, nil), pdf, pptx
}

func TestCoordinator_BatchIsolation(t *testing.T) {
	c, pdf, _ := newTestCoordinator(0)

	res := c.Ingest(context.Background(), nil, []SourceFile{
		NewBytesFile("one.pdf", "application/pdf", []byte("first")),
		NewBytesFile("two.pdf", "application/pdf", []byte("corrupt")),
		NewBytesFile("three.pdf", "application/pdf", []byte("third")),
	})

	require.Len(t, res.Files, 2)
	assert.Equal(t, "one.pdf", res.Files[0].Name)
	assert.Equal(t, "pdf:first", res.Files[0].Data)
	assert.Equal(t, "three.pdf", res.Files[1].Name)
	assert.Equal(t, "pdf:third", res.Files[1].Data)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "two.pdf", res.Errors[0].Name)
	assert.ErrorIs(t, res.Errors[0], ErrDecodeFailure)
	assert.Equal(t, []string{"Failed to read two.pdf: broken"}, res.Messages())
	assert.Equal(t, []string{"first", "corrupt", "third"}, pdf.calls, "files must be processed in input order")
}

func TestCoordinator_SizeBoundary(t *testing.T) {
	const limit = 50 << 20
	c, _, _ := newTestCoordinator(limit)

	atLimit := &declaredFile{name: "ok.pdf", mime: "application/pdf", size: limit, data: []byte("body")}
	overLimit := &declaredFile{name: "big.pdf", mime: "application/pdf", size: limit + 1, data: []byte("body")}

	res := c.Ingest(context.Background(), nil, []SourceFile{atLimit, overLimit})

	require.Len(t, res.Files, 1)
	assert.Equal(t, "ok.pdf", res.Files[0].Name)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "big.pdf", res.Errors[0].Name)
	assert.ErrorIs(t, res.Errors[0], ErrSizeLimitExceeded)
	assert.Contains(t, res.Errors[0].Error(), "big.pdf")
	assert.Contains(t, res.Errors[0].Error(), "50 MB")
	assert.False(t, overLimit.opened, "oversized files are rejected before reading")
}

func TestCoordinator_ContentLargerThanDeclared(t *testing.T) {
	c, _, _ := newTestCoordinator(4)
	lying := &declaredFile{name: "a.png", mime: "image/png", size: 1, data: []byte("12345")}

	res := c.Ingest(context.Background(), nil, []SourceFile{lying})

	assert.Empty(t, res.Files)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrSizeLimitExceeded)
}

func TestCoordinator_ImagesBecomeDataURLs(t *testing.T) {
	c, pdf, _ := newTestCoordinator(0)

	res := c.Ingest(context.Background(), nil, []SourceFile{
		NewBytesFile("chart.pdf", "image/png", []byte{0x89, 'P', 'N', 'G'}),
	})

	require.Empty(t, res.Errors)
	require.Len(t, res.Files, 1)
	f := res.Files[0]
	assert.Equal(t, "image/png", f.Type)
	assert.Equal(t, "data:image/png;base64,iVBORw==", f.Data)
	assert.Equal(t, f.Data, f.Preview)
	assert.Empty(t, pdf.calls, "image MIME takes priority over the .pdf extension")
}

func TestCoordinator_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		file     SourceFile
		wantData string
		wantType string
		wantErr  error
	}{
		{
			name:     "pdf by extension, any case",
			file:     NewBytesFile("Paper.PDF", "", []byte("x")),
			wantData: "pdf:x",
			wantType: "application/pdf",
		},
		{
			name:     "pdf by MIME without extension",
			file:     NewBytesFile("download", "application/pdf", []byte("x")),
			wantData: "pdf:x",
			wantType: "application/pdf",
		},
		{
			name:     "pptx by extension, any case",
			file:     NewBytesFile("Deck.PpTx", "application/octet-stream", []byte("y")),
			wantData: "pptx:y",
			wantType: "application/octet-stream",
		},
		{
			name:     "pptx without declared type",
			file:     NewBytesFile("deck.pptx", "", []byte("y")),
			wantData: "pptx:y",
			wantType: mimePPTX,
		},
		{
			name:    "word document rejected",
			file:    NewBytesFile("notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("z")),
			wantErr: ErrUnsupportedType,
		},
		{
			name:    "legacy ppt rejected",
			file:    NewBytesFile("old.ppt", "application/vnd.ms-powerpoint", []byte("z")),
			wantErr: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCoordinator(0)
			res := c.Ingest(context.Background(), nil, []SourceFile{tt.file})

			if tt.wantErr != nil {
				assert.Empty(t, res.Files)
				require.Len(t, res.Errors, 1)
				assert.ErrorIs(t, res.Errors[0], tt.wantErr)
				assert.Equal(t, "Unsupported file type: "+tt.file.Name(), res.Errors[0].Error())
				return
			}
			require.Empty(t, res.Errors)
			require.Len(t, res.Files, 1)
			assert.Equal(t, tt.wantData, res.Files[0].Data)
			assert.Equal(t, tt.wantType, res.Files[0].Type)
			assert.Empty(t, res.Files[0].Preview)
		})
	}
}

func TestCoordinator_AppendsToExisting(t *testing.T) {
	c, _, _ := newTestCoordinator(0)
	existing := []models.UploadedFile{{Name: "earlier.pdf", Type: "application/pdf", Data: "old"}}

	res := c.Ingest(context.Background(), existing, []SourceFile{
		NewBytesFile("bad.exe", "application/x-msdownload", []byte("MZ")),
		NewBytesFile("new.pptx", "", []byte("s")),
	})

	require.Len(t, res.Files, 2)
	assert.Equal(t, "earlier.pdf", res.Files[0].Name)
	assert.Equal(t, "new.pptx", res.Files[1].Name)
	require.Len(t, res.Added, 1)
	assert.Len(t, existing, 1, "caller's slice is not modified")
	assert.Len(t, res.Errors, 1)
}

func TestCoordinator_PreviewOnlyForImages(t *testing.T) {
	c, _, _ := newTestCoordinator(0)
	res := c.Ingest(context.Background(), nil, []SourceFile{
		NewBytesFile("a.jpg", "image/jpeg", []byte("jpg")),
		NewBytesFile("b.pdf", "application/pdf", []byte("pdf")),
		NewBytesFile("c.pptx", "", []byte("ppt")),
	})

	require.Len(t, res.Files, 3)
	for _, f := range res.Files {
		assert.Equal(t, strings.HasPrefix(f.Type, "image/"), f.Preview != "", f.Name)
		assert.Equal(t, f.IsImage(), f.Preview != "", f.Name)
	}
}

func TestCoordinator_CancelledContextReportsEveryFile(t *testing.T) {
	c, pdf, _ := newTestCoordinator(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Ingest(ctx, nil, []SourceFile{
		NewBytesFile("a.pdf", "", []byte("a")),
		NewBytesFile("b.pdf", "", []byte("b")),
	})

	assert.Empty(t, res.Files)
	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[0], context.Canceled)
	assert.Empty(t, pdf.calls)
}

type fakeNamed struct{}

func (fakeNamed) Supports(name string) bool { return strings.HasSuffix(name, ".docx") }
func (fakeNamed) ExtractNamed(_ context.Context, name string, _ []byte) (string, error) {
	return "converted " + name, nil
}

func TestCoordinator_ExtendedFormatsWhenEnabled(t *testing.T) {
	c := NewCoordinatorWith(&stubExtractor{prefix: "pdf"}, &stubExtractor{prefix: "pptx"}, fakeNamed{}, &IngestConfig{}, nil)

	res := c.Ingest(context.Background(), nil, []SourceFile{
		NewBytesFile("notes.docx", "", []byte("z")),
		NewBytesFile("data.bin", "", []byte("z")),
	})

	require.Len(t, res.Files, 1)
	assert.Equal(t, "converted notes.docx", res.Files[0].Data)
	assert.Equal(t, "text/plain", res.Files[0].Type)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrUnsupportedType)
}

func TestCoordinator_RealExtractorsEndToEnd(t *testing.T) {
	c := NewCoordinator(&IngestConfig{}, nil)
	deck := buildZip(t,
		zipEntry{"ppt/slides/slide1.xml", slideXML("Intro")},
		zipEntry{"ppt/notesSlides/notesSlide1.xml", slideXML("remember X")},
	)

	res := c.Ingest(context.Background(), nil, []SourceFile{
		NewBytesFile("deck.pptx", "", deck),
		NewBytesFile("broken.pdf", "application/pdf", []byte("not a pdf")),
	})

	require.Len(t, res.Files, 1)
	assert.Equal(t, "--- Slide 1 ---\nIntro\n[Slide 1 Notes: remember X]", res.Files[0].Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "broken.pdf", res.Errors[0].Name)
	assert.ErrorIs(t, res.Errors[0], ErrDecodeFailure)
}
