package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/plantgate/pkg/buildinfo"
	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/plant"
	"github.com/matzehuels/plantgate/pkg/ratelimit"
)

type searchResponse struct {
	Plants []plant.Plant `json:"plants"`
	Count  int           `json:"count"`
}

type healthResponse struct {
	Status string           `json:"status"`
	Build  buildinfo.Info   `json:"build"`
	Gate   *ratelimit.Stats `json:"gate,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := q.Get("q")
	if err := perrors.ValidateSearchTerm(term); err != nil {
		writeError(w, r, err)
		return
	}

	limit := s.opts.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, perrors.New(perrors.ErrCodeInvalidLimit, "limit must be a number, got %q", raw))
			return
		}
		if err := perrors.ValidateLimit(n); err != nil {
			writeError(w, r, err)
			return
		}
		limit = n
	}

	res := s.plants.SearchResult(r.Context(), term, limit)
	if res.Failed() {
		writeErrorStatus(w, r, statusFor(res.Code), res.Code, res.Error)
		return
	}
	plants := res.Plants
	if plants == nil {
		plants = []plant.Plant{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Plants: plants, Count: len(plants)})
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	id, err := perrors.ParseSpeciesID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := s.plants.SpeciesResult(r.Context(), id)
	if res.Failed() {
		writeErrorStatus(w, r, statusFor(res.Code), res.Code, res.Error)
		return
	}
	writeJSON(w, http.StatusOK, res.Plant)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Build: buildinfo.Get()}
	if s.opts.Gate != nil {
		st := s.opts.Gate.Stats()
		resp.Gate = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
