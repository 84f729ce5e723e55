package ingestion_engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

// Analysis statuses written by the indexer.
const (
	StatusIndexing = "indexing"
	StatusReady    = "ready"
	StatusFailed   = "failed"
)

// AnalysisIndexer prepares saved analyses for the chat assistant: it streams
// the analysis' source text through line fragments, token-bounded chunks and
// batched embeddings into the database.
//
// db:        persistence for analyses and chunks.
// embedder:  embedding provider (Gemini).
// cfg:       runtime tuning knobs for the pipeline.
// jobs:      in-memory queue of analysis IDs to process.
// stopped:   closed once the Start context is done.
type AnalysisIndexer struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	cfg      IngestConfig
	jobs     chan string
	logger   *zap.Logger

	stopped  chan struct{}
	stopOnce sync.Once
}

var _ Indexer = (*AnalysisIndexer)(nil)

// NewAnalysisIndexer constructs the indexer with a bounded job queue (64).
func NewAnalysisIndexer(db core.DbClient, emb core.EmbeddingProvider, cfg *IngestConfig, logger *zap.Logger) *AnalysisIndexer {
	c := *cfg
	c.defaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisIndexer{
		db: db, embedder: emb, cfg: c, logger: logger,
		jobs:    make(chan string, 64),
		stopped: make(chan struct{}),
	}
}

// Start runs numWorkers goroutines reading from the jobs channel until ctx
// is cancelled.
func (i *AnalysisIndexer) Start(ctx context.Context, numWorkers int) {
	go func() {
		<-ctx.Done()
		i.stopOnce.Do(func() { close(i.stopped) })
	}()
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					i.logger.Debug("indexer worker shutting down", zap.Int("worker", w))
					return
				case id := <-i.jobs:
					i.logger.Info("indexing analysis", zap.String("analysis_id", id), zap.Int("worker", w))
					if err := i.ProcessOne(ctx, id); err != nil {
						i.logger.Error("indexing failed", zap.String("analysis_id", id), zap.Error(err))
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules an analysis ID for indexing.
// If the queue is full, this call blocks until space frees up or the
// indexer stops, in which case the ID is dropped.
func (i *AnalysisIndexer) Enqueue(id string) {
	select {
	case i.jobs <- id:
	case <-i.stopped:
		i.logger.Warn("indexer stopped, analysis not queued", zap.String("analysis_id", id))
	}
}

// ProcessOne streams, chunks, embeds and persists one analysis.
func (i *AnalysisIndexer) ProcessOne(ctx context.Context, id string) error {
	procCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	src, err := i.db.GetAnalysisSource(procCtx, id)
	if err != nil {
		return fmt.Errorf("load analysis %s: %w", id, err)
	}
	if err := i.db.UpdateAnalysisStatus(procCtx, id, StatusIndexing); err != nil {
		return fmt.Errorf("mark analysis %s indexing: %w", id, err)
	}
	// Re-indexing replaces whatever an earlier run left behind.
	if err := i.db.DeleteAnalysisChunks(procCtx, id); err != nil {
		return fmt.Errorf("reset chunks of %s: %w", id, err)
	}

	g, gctx := errgroup.WithContext(procCtx)

	// source text -> line fragments.
	fragCh := streamLines(gctx, g, strings.NewReader(src), maxFragmentLen)

	// fragments -> chunks.
	chunkCh := streamChunk(gctx, g, fragCh, i.cfg.TargetTokens, i.cfg.OverlapTokens)

	// chunks -> embed + persist.
	g.Go(func() error {
		return i.embedAndPersist(gctx, id, chunkCh, i.cfg.BatchSize)
	})

	if err := g.Wait(); err != nil {
		// Chunks from batches that succeeded must not be served for a failed analysis.
		if derr := i.db.DeleteAnalysisChunks(ctx, id); derr != nil {
			i.logger.Error("removing partial chunks failed", zap.String("analysis_id", id), zap.Error(derr))
		}
		if serr := i.db.UpdateAnalysisStatus(ctx, id, StatusFailed); serr != nil {
			i.logger.Error("marking analysis failed", zap.String("analysis_id", id), zap.Error(serr))
		}
		return err
	}
	return i.db.UpdateAnalysisStatus(ctx, id, StatusReady)
}

// embedAndPersist consumes chunks, embeds them in batches, and writes to DB.
func (i *AnalysisIndexer) embedAndPersist(ctx context.Context, id string, in <-chan chunk, batchSize int) error {
	batch := make([]chunk, 0, batchSize)

	flush := func(items []chunk) error {
		if len(items) == 0 {
			return nil
		}

		texts := make([]string, len(items))
		for idx := range items {
			texts[idx] = items[idx].Text
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if len(vecs) != len(items) {
			return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(items))
		}

		rows := make([]models.AnalysisChunk, len(items))
		now := time.Now().UTC()
		for k := range items {
			rows[k] = models.AnalysisChunk{
				ID:         uuid.NewString(),
				AnalysisID: id,
				Text:       items[k].Text,
				Embedding:  vecs[k],
				Position:   items[k].Pos,
				TokenCount: items[k].TokenCnt,
				CreatedAt:  now,
			}
		}
		if err := i.db.InsertAnalysisChunks(ctx, rows); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	}

	for c := range in {
		batch = append(batch, c)
		if len(batch) == batchSize {
			if err := flush(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return flush(batch)
}
