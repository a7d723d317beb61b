package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/nerrad567/lovelace-strategy/internal/generator"
	"github.com/nerrad567/lovelace-strategy/internal/history"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
)

const formatYAML = "yaml"

// handleGetDashboard returns the latest dashboard, as YAML when asked for
// with ?format=yaml.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	result, ok := s.latest(w, r)
	if !ok {
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, result.Dashboard)
	case formatYAML:
		writeYAML(w, http.StatusOK, result.Dashboard)
	default:
		writeBadRequest(w, "format must be json or yaml")
	}
}

// handleGetView returns one view of the latest dashboard by path.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	result, ok := s.latest(w, r)
	if !ok {
		return
	}

	path := chi.URLParam(r, "path")
	view, found := lo.Find(result.Dashboard.Views, func(v lovelace.View) bool {
		return v.String("path") == path
	})
	if !found {
		writeNotFound(w, "view not found: "+path)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGenerate runs a generation and returns its summary. A failed run
// answers 500 with the error; it is still recorded in the history.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	result, err := s.generator.Generate(ctx, history.SourceAPI)
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		writeInternalError(w, err.Error())
		return
	}

	summary := result.Generation
	summary.Dashboard = nil
	writeJSON(w, http.StatusCreated, summary)
}

// latest writes the error response itself when there is no dashboard.
func (s *Server) latest(w http.ResponseWriter, r *http.Request) (*generator.Result, bool) {
	result, err := s.generator.Latest(r.Context())
	switch {
	case errors.Is(err, generator.ErrNoDashboard):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
		return nil, false
	case err != nil:
		s.logger.Error("loading latest dashboard failed", "error", err)
		writeInternalError(w, "loading latest dashboard failed")
		return nil, false
	}
	return result, true
}
