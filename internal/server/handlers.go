package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hoteleiro/concierge/internal/search"
)

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.Int("question_chars", len(req.Question)))
	resp := s.router.Answer(r.Context(), req.Question)
	s.respondJSON(w, http.StatusOK, resp)
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchHit struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Path      string `json:"path"`
	Relevance int    `json:"relevance"`
	Excerpt   string `json:"excerpt"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len([]rune(req.Query)) < s.config.Search.MinChars {
		s.respondError(w, http.StatusBadRequest, "query too short")
		return
	}
	if !s.session.Ready() {
		s.respondError(w, http.StatusServiceUnavailable, "knowledge base not loaded yet")
		return
	}

	results := s.engine.Search(req.Query, s.session.KnowledgeBase())
	total := len(results)
	if total > s.config.Search.MaxResults {
		results = results[:s.config.Search.MaxResults]
	}
	hits := make([]searchHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, searchHit{
			Title:     res.Record.Title,
			Category:  res.Record.Category,
			Path:      res.Record.Path,
			Relevance: res.Relevance,
			Excerpt:   search.Excerpt(res.Record.Content, req.Query, s.config.Search.ExcerptContext),
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"results": hits,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, loaded, failed := s.loader.Progress().Counts()

	documents := 0
	if kb := s.session.KnowledgeBase(); kb != nil {
		documents = kb.CountDocuments()
	}

	api := map[string]interface{}{
		"configured": s.generator != nil,
		"available":  s.generator != nil && s.generator.Available(),
	}
	if fr, ok := s.generator.(interface{ LastFailure() string }); ok {
		if msg := fr.LastFailure(); msg != "" {
			api["last_failure"] = msg
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ready":     s.session.Ready(),
		"degraded":  s.session.Degraded(),
		"documents": documents,
		"last_mode": s.session.LastMode(),
		"progress": map[string]int{
			"total":  total,
			"loaded": loaded,
			"failed": failed,
		},
		"external_api": api,
	})
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.storage.RecentQueries(r.Context(), limit)
	if err != nil {
		s.logger.Error("query log read failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"queries": entries})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("reload requested")
	kb, degraded, err := s.loader.Reload(r.Context())
	if err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.session.Install(kb, degraded)

	_, loaded, failed := s.loader.Progress().Counts()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": kb.CountDocuments(),
		"loaded":    loaded,
		"failed":    failed,
		"degraded":  degraded,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
