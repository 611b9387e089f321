package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-assetform/pkg/store"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error  string                       `json:"error"`
	Code   string                       `json:"code"`
	Fields map[string]map[string]string `json:"fields,omitempty"`
	Form   []string                     `json:"form,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// storeError maps catalog errors to HTTP responses.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	s.logger.Error("store error", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
