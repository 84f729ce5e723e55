package services

import (
	"context"
	"io"
	"sync"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

type fakeDB struct {
	core.DbClient // unused methods panic

	mu       sync.Mutex
	users    map[string]*models.User
	analyses map[string]*models.AnalysisRecord
	chunks   []models.AnalysisChunk
	searched []float32
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: map[string]*models.User{}, analyses: map[string]*models.AnalysisRecord{}}
}

func (f *fakeDB) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Email] = u
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email], nil
}

func (f *fakeDB) SaveAnalysis(_ context.Context, rec *models.AnalysisRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.analyses[rec.ID] = &cp
	return nil
}

func (f *fakeDB) GetAnalysis(_ context.Context, userID, id string) (*models.AnalysisRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.analyses[id]
	if !ok || rec.UserID != userID {
		return nil, core.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeDB) DeleteAnalysis(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.analyses[id]
	if !ok || rec.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.analyses, id)
	return nil
}

func (f *fakeDB) SearchAnalysisChunks(_ context.Context, _ string, vec []float32, limit int) ([]models.AnalysisChunk, error) {
	f.searched = vec
	if len(f.chunks) > limit {
		return f.chunks[:limit], nil
	}
	return f.chunks, nil
}

type fakeAnalyzer struct {
	got    core.AnalysisRequest
	result *models.AnalysisResult
	err    error
}

func (a *fakeAnalyzer) Analyze(_ context.Context, req core.AnalysisRequest) (*models.AnalysisResult, error) {
	a.got = req
	return a.result, a.err
}

type recordingQueue struct{ ids []string }

func (q *recordingQueue) Enqueue(id string) { q.ids = append(q.ids, id) }

type fixedEmbedder struct{}

func (fixedEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

type scriptedStreamer struct {
	prompt  string
	history []models.ChatMessage
	chunks  []string
}

func (s *scriptedStreamer) StreamChat(_ context.Context, systemPrompt string, history []models.ChatMessage, _ string, onChunk func(string) error) error {
	s.prompt, s.history = systemPrompt, history
	for _, c := range s.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

type memStore struct {
	key         string
	contentType string
	body        []byte
}

func (m *memStore) UploadFile(_ context.Context, _ string, key string, data io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.key, m.contentType, m.body = key, contentType, b
	return "https://bucket.example/" + key, nil
}

func (m *memStore) DeleteFile(context.Context, string, string) error { return nil }

func (m *memStore) GetFile(context.Context, string, string) ([]byte, error) { return m.body, nil }
