package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/core/ingestion_engine"
	"github.com/Udhayakumar116/ai-question-gen/internal/models"
	"github.com/Udhayakumar116/ai-question-gen/internal/services"
)

const (
	maxFilesPerUpload = 20
	multipartMemory   = 32 << 20
)

// DocumentHandler manages the files in the caller's workspace.
type DocumentHandler struct {
	workspace   *services.WorkspaceService
	maxFileSize int64
	logger      *zap.Logger
}

func NewDocumentHandler(workspace *services.WorkspaceService, maxFileSize int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{workspace: workspace, maxFileSize: maxFileSize, logger: logger}
}

type workspaceResponse struct {
	Files  []models.UploadedFile `json:"files"`
	Errors []string              `json:"errors"`
}

// UploadDocuments ingests every part named "files". Rejected files are
// reported in errors and never abort the rest of the batch.
func (h *DocumentHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFilesPerUpload*(h.maxFileSize+1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "no files in upload", http.StatusBadRequest)
		return
	}
	if len(headers) > maxFilesPerUpload {
		http.Error(w, "too many files in one upload", http.StatusBadRequest)
		return
	}

	batch := make([]ingestion_engine.SourceFile, len(headers))
	for i, fh := range headers {
		batch[i] = ingestion_engine.NewMultipartFile(fh)
	}

	res := h.workspace.Upload(r.Context(), userID, batch)
	h.logger.Info("workspace upload",
		zap.String("user_id", userID),
		zap.Int("accepted", len(res.Added)),
		zap.Int("rejected", len(res.Errors)))

	writeJSON(w, http.StatusOK, workspaceResponse{Files: res.Files, Errors: res.Messages()})
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{Files: h.workspace.List(userID), Errors: []string{}})
}

func (h *DocumentHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := h.workspace.Remove(userID, index); err != nil {
		writeServiceError(w, h.logger, "remove file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.workspace.Clear(userID)
	w.WriteHeader(http.StatusNoContent)
}
