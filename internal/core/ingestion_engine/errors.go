package ingestion_engine

import (
	"errors"
	"fmt"
)

var (
	ErrSizeLimitExceeded = errors.New("file exceeds size limit")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrDecodeFailure     = errors.New("document could not be decoded")
)

// ExtractionError is returned by the document extractors. Message is safe to
// show to end users; Err carries the underlying cause.
type ExtractionError struct {
	Format  string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Format, e.Message, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecodeFailure}
	}
	return []error{ErrDecodeFailure, e.Err}
}

func decodeError(format, msg string, err error) *ExtractionError {
	return &ExtractionError{Format: format, Message: msg, Err: err}
}

// FileError is one rejected or failed file of an ingestion batch.
// Kind is one of the sentinel errors above (or a context error).
type FileError struct {
	Name string
	Kind error
	Err  error
}

// Error returns the user-facing message naming the file.
func (e *FileError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrSizeLimitExceeded):
		return fmt.Sprintf("File %s is too large. %v.", e.Name, e.Err)
	case errors.Is(e.Kind, ErrUnsupportedType):
		return fmt.Sprintf("Unsupported file type: %s", e.Name)
	case errors.Is(e.Kind, ErrDecodeFailure):
		var ee *ExtractionError
		if errors.As(e.Err, &ee) {
			return fmt.Sprintf("Failed to read %s: %s", e.Name, ee.Message)
		}
		return fmt.Sprintf("Failed to read %s.", e.Name)
	default:
		return fmt.Sprintf("Failed to process %s: %v", e.Name, e.Err)
	}
}

func (e *FileError) Unwrap() []error {
	errs := make([]error, 0, 2)
	for _, err := range []error{e.Kind, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
