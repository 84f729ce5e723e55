package ingestion_engine

import "context"

// Indexer queues saved analyses for chat indexing.
type Indexer interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(id string)
	ProcessOne(ctx context.Context, id string) error
}
