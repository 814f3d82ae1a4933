package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/talentsift/talentsift/internal/agent"
	sifterr "github.com/talentsift/talentsift/internal/errors"
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
)

// shortlistRequest is the body of the shortlist endpoints.
type shortlistRequest struct {
	Query string `json:"query_text"`
}

// resumeDetail is the /resume/{id} response.
type resumeDetail struct {
	*store.Resume
	Headline string             `json:"headline"`
	Skills   []store.SkillEntry `json:"skills"`
}

// healthResponse is the /healthz response.
type healthResponse struct {
	Status   string            `json:"status"`
	Resumes  int               `json:"resumes"`
	Services map[string]string `json:"services"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, sifterr.InvalidQuery("request body must be valid JSON"))
		return
	}

	resp, err := s.engine.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleShortlistSync runs the agentic pipeline to completion and
// returns only the terminal result payload.
func (s *Server) handleShortlistSync(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, sifterr.InvalidQuery("request body must be valid JSON"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, sifterr.InvalidQuery("query text is required"))
		return
	}

	var result *agent.Result
	for ev := range s.pipeline.Run(r.Context(), req.Query) {
		switch ev.Type {
		case agent.EventResult:
			if res, ok := ev.Data.(*agent.Result); ok {
				result = res
			}
		case agent.EventError:
			writeError(w, sifterr.New(sifterr.ErrCodePipeline, ev.Message, nil))
			return
		}
	}
	if result == nil {
		writeError(w, sifterr.New(sifterr.ErrCodePipeline, "pipeline ended without a result", nil))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResumeGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	core, err := s.store.GetResume(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	skills, err := s.store.SkillsForResume(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resumeDetail{
		Resume:   core,
		Headline: core.Headline(),
		Skills:   skills,
	})
}

func (s *Server) handleResumeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Deleting a missing resume reports not found rather than
	// succeeding silently.
	if _, err := s.store.GetResume(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteResume(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if s.indexer != nil {
		if err := s.indexer.DeleteResume(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, sifterr.InvalidQuery("limit must be a positive integer"))
			return
		}
		limit = n
	}

	skills, err := s.store.DistinctSkills(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": skills})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{}
	status := "ok"

	if err := s.store.Ping(r.Context()); err != nil {
		services["store"] = "unavailable"
		status = "degraded"
	} else {
		services["store"] = "ok"
	}
	services["embedder"] = componentStatus(s.components.Embedder)
	services["reranker"] = componentStatus(s.components.Reranker)

	count, err := s.store.CountResumes(r.Context())
	if err != nil {
		count = 0
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Status: status, Resumes: count, Services: services})
}

func componentStatus(name string) string {
	if name == "" {
		return "disabled"
	}
	return name
}
