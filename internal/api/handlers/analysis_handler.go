package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/services"
)

type AnalysisHandler struct {
	analyses *services.AnalysisService
	exports  *services.ExportService
	logger   *zap.Logger
}

func NewAnalysisHandler(analyses *services.AnalysisService, exports *services.ExportService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, exports: exports, logger: logger}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rec, err := h.analyses.Run(r.Context(), userID, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, "analysis", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	recs, err := h.analyses.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "list analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := analysisID(w, r)
	if !ok {
		return
	}
	rec, err := h.analyses.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.logger, "get analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *AnalysisHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := analysisID(w, r)
	if !ok {
		return
	}
	if err := h.analyses.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, "delete analysis", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportAnalysis downloads the analysis as ?format=csv|md|json.
func (h *AnalysisHandler) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := analysisID(w, r)
	if !ok {
		return
	}
	file, err := h.exports.Render(r.Context(), userID, id, r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, h.logger, "export", err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(file.Name))
	_, _ = w.Write(file.Data)
}

// PublishAnalysis uploads the export to object storage and returns its URL.
func (h *AnalysisHandler) PublishAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := analysisID(w, r)
	if !ok {
		return
	}
	url, err := h.exports.Publish(r.Context(), userID, id, r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, h.logger, "publish", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
