package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/service"
)

func (s *Server) handleListChecklist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.audits.Catalog(),
	})
}

type registerContractRequest struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Network     string `json:"network"`
}

func (s *Server) handleRegisterContract(w http.ResponseWriter, r *http.Request) {
	var req registerContractRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	contract := model.Contract{
		ID:          uuid.NewString(),
		Address:     req.Address,
		Name:        req.Name,
		Description: req.Description,
		Publisher:   req.Publisher,
		Network:     model.Network(req.Network),
		CreatedAt:   time.Now().UTC(),
	}
	if err := contract.Validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	if err := s.store.SaveContract(r.Context(), &contract); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract)
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ContractFilter{
		Query:   q.Get("query"),
		Network: model.Network(q.Get("network")),
		Page:    parseInt64(q.Get("page"), 1),
	}
	filter.PageSize = parseInt64(q.Get("page_size"), 20)

	if filter.Network != "" && !filter.Network.Valid() {
		writeError(w, fmt.Errorf("%w: network %q", common.ErrInvalidInput, filter.Network))
		return
	}

	contracts, total, err := s.store.ListContracts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewPaginatedContracts(contracts, total, filter.Page, filter.PageSize))
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := s.store.GetContract(r.Context(), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAuditRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	resp, err := s.audits.CreateAudit(r.Context(), chi.URLParam(r, "contractID"), req.Auditor, req.SourceCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	audits, err := s.audits.ListAudits(r.Context(), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audits": audits,
	})
}

func (s *Server) handleSecuritySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.audits.SecuritySummary(r.Context(), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	resp, err := s.audits.GetAudit(r.Context(), chi.URLParam(r, "auditID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateCheck(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCheckRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	status, err := model.ParseCheckStatus(req.Status)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}

	check, err := s.audits.UpdateCheck(r.Context(), chi.URLParam(r, "auditID"), chi.URLParam(r, "checkID"), status, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleExportAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.ExportOptions{
		IncludeDescriptions: parseBool(q.Get("include_descriptions"), true),
		FailuresOnly:        parseBool(q.Get("failures_only"), false),
	}

	doc, err := s.audits.ExportAudit(r.Context(), chi.URLParam(r, "auditID"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func parseInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
