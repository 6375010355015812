package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/videa-app/videa/internal/auth"
	"github.com/videa-app/videa/internal/ideas"
	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/trends"
	"github.com/videa-app/videa/internal/youtube"
)

type Server struct {
	youtubeSvc     *youtube.Client
	trendsSvc      *trends.Aggregator
	ideasSvc       *ideas.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
	server         *http.Server
}

func New(youtubeSvc *youtube.Client, trendsSvc *trends.Aggregator, ideasSvc *ideas.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *Server {
	return &Server{
		youtubeSvc:     youtubeSvc,
		trendsSvc:      trendsSvc,
		ideasSvc:       ideasSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	trendingAPI := NewTrendingAPI(s.youtubeSvc, s.trendsSvc, s.logger)
	trendingAPI.RegisterRoutes(mux, s.corsMiddleware)

	channelsAPI := NewChannelsAPI(s.youtubeSvc, s.logger)
	channelsAPI.RegisterRoutes(mux, s.corsMiddleware)

	ideasAPI := NewIdeasAPI(s.ideasSvc, s.authMiddleware, s.logger)
	ideasAPI.RegisterRoutes(mux, s.corsMiddleware)

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Generation can poll the assistant for up to a minute.
		WriteTimeout: 4 * time.Minute,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
