package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
)

func TestAnalysisService_Run(t *testing.T) {
	db := newFakeDB()
	ws := newWorkspace()
	ws.Add("u1", []models.UploadedFile{
		{Name: "paper.pdf", Type: "application/pdf", Data: "--- Page 1 ---\nbody"},
		{Name: "fig.png", Type: "image/png", Data: "data:image/png;base64,AA==", Preview: "data:image/png;base64,AA=="},
	})
	analyzer := &fakeAnalyzer{result: &models.AnalysisResult{Summary: "sum"}}
	queue := &recordingQueue{}
	svc := NewAnalysisService(db, analyzer, ws, queue, nil)

	rec, err := svc.Run(context.Background(), "u1", "Graph learning\nmore detail")
	require.NoError(t, err)

	assert.Equal(t, "Graph learning", rec.Title)
	assert.Equal(t, []string{"paper.pdf", "fig.png"}, rec.FileNames)
	assert.Equal(t, "Graph learning\nmore detail\npaper.pdf\n--- Page 1 ---\nbody", rec.SourceText)
	assert.Equal(t, StatusSaved, rec.Status)
	assert.Len(t, analyzer.got.Files, 2)
	assert.Equal(t, []string{rec.ID}, queue.ids)

	saved, err := svc.Get(context.Background(), "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "sum", saved.Result.Summary)
}

func TestAnalysisService_RejectsEmptyRequest(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	svc := NewAnalysisService(newFakeDB(), analyzer, newWorkspace(), nil, nil)

	_, err := svc.Run(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, analyzer.got.Text)
}

func TestAnalysisService_AnalyzerFailureSavesNothing(t *testing.T) {
	db := newFakeDB()
	svc := NewAnalysisService(db, &fakeAnalyzer{err: errors.New("quota")}, newWorkspace(), nil, nil)

	_, err := svc.Run(context.Background(), "u1", "topic")
	assert.ErrorContains(t, err, "quota")
	assert.Empty(t, db.analyses)
}

func TestAnalysisService_DeleteIsScopedToOwner(t *testing.T) {
	db := newFakeDB()
	svc := NewAnalysisService(db, &fakeAnalyzer{result: &models.AnalysisResult{}}, newWorkspace(), nil, nil)
	rec, err := svc.Run(context.Background(), "u1", "topic")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), "u2", rec.ID), core.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "u1", rec.ID))
	_, err = svc.Get(context.Background(), "u1", rec.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAnalysisTitle(t *testing.T) {
	assert.Equal(t, "Untitled analysis", analysisTitle("", nil))
	assert.Equal(t, "a.pdf", analysisTitle(" ", []string{"a.pdf"}))
	assert.Equal(t, "a.pdf and 2 more", analysisTitle("", []string{"a.pdf", "b", "c"}))

	long := analysisTitle(strings.Repeat("x", 100), nil)
	assert.Equal(t, strings.Repeat("x", 80)+"…", long)
}
