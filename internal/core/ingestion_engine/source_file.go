package ingestion_engine

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// SourceFile is one user-selected input of an ingestion batch. Size is the
// declared size and is checked before the content is opened.
type SourceFile interface {
	Name() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// BytesFile is a SourceFile held in memory.
type BytesFile struct {
	name        string
	contentType string
	data        []byte
}

func NewBytesFile(name, contentType string, data []byte) *BytesFile {
	return &BytesFile{name: name, contentType: contentType, data: data}
}

func (f *BytesFile) Name() string        { return f.name }
func (f *BytesFile) ContentType() string { return f.contentType }
func (f *BytesFile) Size() int64         { return int64(len(f.data)) }

func (f *BytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// MultipartFile adapts an uploaded form file.
type MultipartFile struct {
	header *multipart.FileHeader
}

func NewMultipartFile(fh *multipart.FileHeader) *MultipartFile {
	return &MultipartFile{header: fh}
}

func (f *MultipartFile) Name() string        { return filepath.Base(f.header.Filename) }
func (f *MultipartFile) ContentType() string { return f.header.Header.Get("Content-Type") }
func (f *MultipartFile) Size() int64         { return f.header.Size }

func (f *MultipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// LocalFile is a SourceFile on disk. The content type is supplied by the
// caller since the filesystem does not record one.
type LocalFile struct {
	path        string
	contentType string
	size        int64
}

func NewLocalFile(path, contentType string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &LocalFile{path: path, contentType: contentType, size: info.Size()}, nil
}

func (f *LocalFile) Name() string        { return filepath.Base(f.path) }
func (f *LocalFile) ContentType() string { return f.contentType }
func (f *LocalFile) Size() int64         { return f.size }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
