package ingestion_engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

type memDB struct {
	core.DbClient // unused methods panic

	mu        sync.Mutex
	sources   map[string]string
	statuses  []string
	chunks    []models.AnalysisChunk
	failAt    int // fail InsertAnalysisChunks on this call (1-based), 0 = never
	inserts   int
	resets    int
	statusErr error
}

func (m *memDB) GetAnalysisSource(_ context.Context, id string) (string, error) {
	src, ok := m.sources[id]
	if !ok {
		return "", errors.New("not found")
	}
	return src, nil
}

func (m *memDB) UpdateAnalysisStatus(_ context.Context, _ string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return m.statusErr
	}
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memDB) DeleteAnalysisChunks(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	kept := m.chunks[:0]
	for _, ch := range m.chunks {
		if ch.AnalysisID != id {
			kept = append(kept, ch)
		}
	}
	m.chunks = kept
	return nil
}

func (m *memDB) InsertAnalysisChunks(_ context.Context, rows []models.AnalysisChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.failAt == m.inserts {
		return errors.New("disk full")
	}
	m.chunks = append(m.chunks, rows...)
	return nil
}

type lenEmbedder struct{}

func (lenEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestAnalysisIndexer_ProcessOne(t *testing.T) {
	defer goleak.VerifyNone(t)

	db := &memDB{sources: map[string]string{
		"a1": "--- Page 1 ---\naaaa\n\nbbbb\ncccc\n--- Page 2 ---\ndddd",
	}}
	idx := NewAnalysisIndexer(db, lenEmbedder{}, &IngestConfig{TargetTokens: 3, BatchSize: 2}, nil)

	require.NoError(t, idx.ProcessOne(context.Background(), "a1"))

	assert.Equal(t, []string{StatusIndexing, StatusReady}, db.statuses)
	// The page tags alone reach the 3-token target, so each becomes a chunk.
	require.Len(t, db.chunks, 4)
	assert.Equal(t, 2, db.inserts)
	for i, ch := range db.chunks {
		assert.Equal(t, i, ch.Position)
		assert.Equal(t, "a1", ch.AnalysisID)
		assert.NotEmpty(t, ch.ID)
		assert.Equal(t, []float32{float32(len(ch.Text))}, ch.Embedding)
	}
	assert.Equal(t, "--- Page 1 ---", db.chunks[0].Text)
	assert.Equal(t, "aaaa\nbbbb\ncccc", db.chunks[1].Text)
	assert.Equal(t, "dddd", db.chunks[3].Text)
}

func TestAnalysisIndexer_FailureMarksAnalysis(t *testing.T) {
	defer goleak.VerifyNone(t)

	db := &memDB{
		sources: map[string]string{"a1": strings.Repeat("word word word\n", 200)},
		failAt:  3,
	}
	idx := NewAnalysisIndexer(db, lenEmbedder{}, &IngestConfig{TargetTokens: 4, BatchSize: 1}, nil)

	err := idx.ProcessOne(context.Background(), "a1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{StatusIndexing, StatusFailed}, db.statuses)
	// The two batches written before the failure are removed again.
	assert.Equal(t, 3, db.inserts)
	assert.Empty(t, db.chunks)
}

func TestAnalysisIndexer_ReindexReplacesChunks(t *testing.T) {
	db := &memDB{sources: map[string]string{"a1": "one\ntwo"}}
	idx := NewAnalysisIndexer(db, lenEmbedder{}, &IngestConfig{TargetTokens: 1, BatchSize: 4}, nil)

	require.NoError(t, idx.ProcessOne(context.Background(), "a1"))
	require.NoError(t, idx.ProcessOne(context.Background(), "a1"))
	assert.Len(t, db.chunks, 2)
	assert.Equal(t, 2, db.resets)
}

func TestAnalysisIndexer_StatusErrorStopsIndexing(t *testing.T) {
	db := &memDB{
		sources:   map[string]string{"a1": "text"},
		statusErr: errors.New("analysis deleted"),
	}
	idx := NewAnalysisIndexer(db, lenEmbedder{}, &IngestConfig{}, nil)

	err := idx.ProcessOne(context.Background(), "a1")
	assert.ErrorContains(t, err, "analysis deleted")
	assert.Zero(t, db.inserts)
	assert.Zero(t, db.resets)
}

func TestAnalysisIndexer_EnqueueAfterStopDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	idx := NewAnalysisIndexer(&memDB{}, lenEmbedder{}, &IngestConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	idx.Start(ctx, 0)
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < 100; n++ {
			idx.Enqueue("a1")
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked after the indexer stopped")
	}
}

func TestAnalysisIndexer_UnknownAnalysis(t *testing.T) {
	idx := NewAnalysisIndexer(&memDB{sources: map[string]string{}}, lenEmbedder{}, &IngestConfig{}, nil)
	assert.Error(t, idx.ProcessOne(context.Background(), "missing"))
}

func collectChunks(t *testing.T, frags []string, target, overlap int) []chunk {
	t.Helper()
	g, ctx := errgroup.WithContext(context.Background())
	in := make(chan string)
	g.Go(func() error {
		defer close(in)
		for _, f := range frags {
			in <- f
		}
		return nil
	})
	var out []chunk
	for c := range streamChunk(ctx, g, in, target, overlap) {
		out = append(out, c)
	}
	require.NoError(t, g.Wait())
	return out
}

func TestStreamChunk(t *testing.T) {
	defer goleak.VerifyNone(t)
	frags := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee"}

	t.Run("without overlap", func(t *testing.T) {
		got := collectChunks(t, frags, 2, 0)
		require.Len(t, got, 3)
		assert.Equal(t, "aaaa\nbbbb", got[0].Text)
		assert.Equal(t, "cccc\ndddd", got[1].Text)
		assert.Equal(t, "eeee", got[2].Text)
		assert.Equal(t, 1, got[2].TokenCnt)
	})

	t.Run("with overlap", func(t *testing.T) {
		got := collectChunks(t, frags, 3, 1)
		require.Len(t, got, 2)
		assert.Equal(t, "aaaa\nbbbb\ncccc", got[0].Text)
		assert.Equal(t, "cccc\ndddd\neeee", got[1].Text)
		assert.Equal(t, 1, got[1].Pos)
	})

	t.Run("oversized fragment is not repeated", func(t *testing.T) {
		got := collectChunks(t, []string{strings.Repeat("x", 40), "yyyy"}, 3, 50)
		require.Len(t, got, 2)
		assert.Equal(t, "yyyy", got[1].Text)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, collectChunks(t, nil, 3, 1))
	})
}

func TestStreamLines_SplitsLongLinesOnRuneBoundaries(t *testing.T) {
	g, ctx := errgroup.WithContext(context.Background())
	long := strings.Repeat("é", 5) // 10 bytes

	var got []string
	for s := range streamLines(ctx, g, strings.NewReader("  first \n\n"+long+"\n"), 3) {
		got = append(got, s)
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, []string{"fir", "st", "é", "é", "é", "é", "é"}, got)
}
