package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"nexnews/repository"
	"nexnews/search"
)

// SearchRequest is the body of POST /news/search.
type SearchRequest struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type articleResult struct {
	repository.Article
	Score float64 `json:"score"`
}

type searchResponse struct {
	Count      int             `json:"count"`
	SearchType string          `json:"search_type"`
	Articles   []articleResult `json:"articles"`
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	results, err := s.engine.Search(r.Context(), search.Request{
		Prompt:   req.Prompt,
		Category: req.Category,
		Limit:    req.Limit,
	})
	if errors.Is(err, search.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	searchType := "semantic"
	if req.Prompt == "" {
		searchType = "category"
	}

	resp := searchResponse{
		Count:      len(results),
		SearchType: searchType,
		Articles:   make([]articleResult, 0, len(results)),
	}
	for _, res := range results {
		resp.Articles = append(resp.Articles, articleResult{Article: res.Article, Score: res.Score})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) articleHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/news/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid article id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		article, err := s.engine.GetByID(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.logger.Error("get article failed", zap.Int64("article_id", id), zap.Error(err))
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, article)

	case http.MethodDelete:
		err := s.pipeline.Delete(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "article not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.logger.Error("delete article failed", zap.Int64("article_id", id), zap.Error(err))
			http.Error(w, "delete failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
