package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	middleware "github.com/Udhayakumar116/ai-question-gen/internal/api/middlewares"
	"github.com/Udhayakumar116/ai-question-gen/internal/core"
	"github.com/Udhayakumar116/ai-question-gen/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}

// analysisID returns the {id} path value. Anything that is not a UUID
// cannot name an analysis and is answered with 404.
func analysisID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return "", false
	}
	return id, true
}

// writeServiceError maps service errors to status codes. Unexpected errors
// are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, services.ErrFileIndex):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrExportFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrStorageDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Error(op+" failed", zap.Error(err))
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}
