package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"nexnews/ingest"
	"nexnews/search"
)

// Server exposes the retrieval surface over HTTP.
type Server struct {
	engine   *search.Engine
	pipeline *ingest.Pipeline
	logger   *zap.Logger
	port     int
}

func NewServer(engine *search.Engine, pipeline *ingest.Pipeline, logger *zap.Logger, port int) *Server {
	return &Server{
		engine:   engine,
		pipeline: pipeline,
		logger:   logger,
		port:     port,
	}
}

// Start blocks serving HTTP until the listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/news/search", s.searchHandler)
	mux.HandleFunc("/news/", s.articleHandler)
	mux.HandleFunc("/stats", s.statsHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.logger.Info("starting API server", zap.Int("port", s.port))
	return http.ListenAndServe(":"+strconv.Itoa(s.port), mux)
}
