package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/zander/internal/core"
)

var errInvalidBody = errors.New("invalid request body")

type validateRequest struct {
	Rows  []core.ImportRow `json:"rows"`
	Lines []int            `json:"lines,omitempty"`
}

type validateResponse struct {
	Data    []core.ValidationResult `json:"data"`
	Summary core.ValidationSummary  `json:"summary"`
}

type importRequest struct {
	Rows            []core.ImportRow `json:"rows"`
	Lines           []int            `json:"lines,omitempty"`
	DuplicateAction string           `json:"duplicateAction"`
}

type importResponse struct {
	Data *core.ImportResult `json:"data"`
}

type historyResponse struct {
	Data []core.AuditEntry `json:"data"`
}

// decodeBody reads a size-capped JSON body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("request body too large: %w", err)
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// handleValidate checks submitted rows without writing anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	actor, err := tenantFromRequest(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnauthorized)
		return
	}

	var req validateRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	results, summary, err := s.service.Validate(r.Context(), actor.TenantID, req.Rows, req.Lines)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, validateResponse{Data: results, Summary: summary})
}

// handleImport commits submitted rows under the requested duplicate policy.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	actor, err := tenantFromRequest(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnauthorized)
		return
	}

	var req importRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	action, err := core.ParseDuplicateAction(req.DuplicateAction)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Import.Timeout)
	defer cancel()

	result, err := s.service.Import(ctx, actor.TenantID, req.Rows, req.Lines, action)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, importResponse{Data: result})
}

// handleDownloadTemplate serves the CSV template.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.TemplateFileName))
	w.Write([]byte(core.TemplateCSV()))
}

// handleImportHistory lists the tenant's recent import audit entries.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	actor, err := tenantFromRequest(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnauthorized)
		return
	}

	entries, err := s.service.History(r.Context(), actor.TenantID, parseIntParam(r, "limit", core.DefaultAuditLimit))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}

	writeJSON(w, r, http.StatusOK, historyResponse{Data: entries})
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.Limiter().Status(),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
