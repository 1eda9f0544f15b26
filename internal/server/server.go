// Package server exposes the registry and audit engine over HTTP. It is
// transport plumbing only: request decoding, routing, and error-to-status
// mapping around the audit service.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sorobanhub/registry/internal/audit"
	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/service"
)

// Server carries the handler dependencies.
type Server struct {
	audits *audit.Service
	store  service.Storage
}

// New builds a Server around the audit service and storage.
func New(audits *audit.Service, store service.Storage) *Server {
	return &Server{
		audits: audits,
		store:  store,
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/checklist", s.handleListChecklist)

		api.Post("/contracts", s.handleRegisterContract)
		api.Get("/contracts", s.handleListContracts)
		api.Get("/contracts/{contractID}", s.handleGetContract)
		api.Post("/contracts/{contractID}/security-audit", s.handleCreateAudit)
		api.Get("/contracts/{contractID}/security-audits", s.handleListAudits)
		api.Get("/contracts/{contractID}/security-summary", s.handleSecuritySummary)

		api.Get("/security-audits/{auditID}", s.handleGetAudit)
		api.Patch("/security-audits/{auditID}/checks/{checkID}", s.handleUpdateCheck)
		api.Get("/security-audits/{auditID}/export", s.handleExportAudit)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.LogError(err, "failed to encode response", nil)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps the application error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, common.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "INVALID_INPUT"})
	case common.IsRetryable(err):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error(), Code: "STORAGE_FAILURE"})
	default:
		common.LogError(err, "request failed", nil)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "INTERNAL"})
	}
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
