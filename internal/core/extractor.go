package core

import (
	"context"
)

// DocumentExtractor turns the raw bytes of one document into plain text.
// Implementations either return the whole text or fail; they never return
// partial output.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}
