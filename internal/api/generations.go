package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lovelace-strategy/internal/history"
)

// generationList is the body of GET /generations.
type generationList struct {
	Generations []history.Generation `json:"generations"`
	Count       int                  `json:"count"`
}

// handleListGenerations lists recorded runs, newest first.
func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	repo := s.generator.History()
	if repo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "generation history is disabled")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	gens, err := repo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing generations failed", "error", err)
		writeInternalError(w, "listing generations failed")
		return
	}
	if gens == nil {
		gens = []history.Generation{}
	}
	writeJSON(w, http.StatusOK, generationList{Generations: gens, Count: len(gens)})
}

// handleGetGeneration returns one run with its dashboard.
func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	repo := s.generator.History()
	if repo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "generation history is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	gen, err := repo.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeNotFound(w, "generation not found: "+id)
		return
	}
	if err != nil {
		s.logger.Error("loading generation failed", "id", id, "error", err)
		writeInternalError(w, "loading generation failed")
		return
	}
	writeJSON(w, http.StatusOK, gen)
}

func parseFilter(r *http.Request) (history.Filter, error) {
	q := r.URL.Query()
	filter := history.Filter{Source: q.Get("source")}

	if v := q.Get("failed"); v != "" {
		failed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("failed must be true or false")
		}
		filter.Failed = &failed
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = n
	}
	return filter, nil
}
