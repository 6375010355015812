package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/videa-app/videa/internal/auth"
	"github.com/videa-app/videa/internal/database"
	"github.com/videa-app/videa/internal/ideas"
	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
)

const (
	generateTimeout = 3 * time.Minute

	maintenanceMessage = "System is currently undergoing maintenance. Please try again later."
	generationFailed   = "Failed to generate a video idea. Please try again."
)

// ideaService is the slice of the ideas service the API depends on.
type ideaService interface {
	Generate(ctx context.Context, req models.IdeaRequest) (*models.VideoIdea, error)
	Save(ctx context.Context, userID string, idea models.VideoIdea) (models.VideoIdea, error)
	ListSaved(ctx context.Context, userID string) ([]models.VideoIdea, error)
	Delete(ctx context.Context, id, userID string) error
	Recent(ctx context.Context) []models.VideoIdea
}

// IdeasAPI handles HTTP API requests for idea generation and persistence
type IdeasAPI struct {
	ideasSvc       ideaService
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewIdeasAPI creates a new ideas API handler
func NewIdeasAPI(ideasSvc ideaService, authMiddleware *auth.Middleware, logger *logging.Logger) *IdeasAPI {
	return &IdeasAPI{
		ideasSvc:       ideasSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers idea routes on the given mux. List and save use
// OptionalAuth because their 401 bodies are per-action.
func (api *IdeasAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/ideas", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleIdeas)))
	mux.HandleFunc("/api/ideas/generate", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleGenerate)))
	mux.HandleFunc("/api/ideas/recent", corsMiddleware(api.handleRecent))
	mux.HandleFunc("/api/ideas/", corsMiddleware(api.authMiddleware.RequireAuth(api.handleIdeaItem)))
}

// handleIdeas handles list and save operations
func (api *IdeasAPI) handleIdeas(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.listIdeas(w, r)
	case http.MethodPost:
		api.saveIdea(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listIdeas returns all saved ideas for the authenticated user
func (api *IdeasAPI) listIdeas(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "You must be logged in to view ideas")
		return
	}

	list, err := api.ideasSvc.ListSaved(r.Context(), userID)
	if err != nil {
		api.writeStoreError(w, err, "Failed to fetch ideas")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ideas": list,
	})
}

// saveIdea persists an idea for the authenticated user
func (api *IdeasAPI) saveIdea(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "You must be logged in to save ideas")
		return
	}

	var idea models.VideoIdea
	if err := json.NewDecoder(r.Body).Decode(&idea); err != nil || idea.ID == "" || idea.Title == "" {
		writeError(w, http.StatusBadRequest, "Invalid idea data provided")
		return
	}

	saved, err := api.ideasSvc.Save(r.Context(), userID, idea)
	if err != nil {
		api.writeStoreError(w, err, "Failed to save idea")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    saved,
	})
}

// handleIdeaItem handles operations on a single idea
func (api *IdeasAPI) handleIdeaItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/ideas/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "Idea ID is required")
		return
	}

	userID := auth.GetUserID(r.Context())
	if err := api.ideasSvc.Delete(r.Context(), id, userID); err != nil {
		api.writeStoreError(w, err, "Failed to delete idea")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// handleGenerate runs the synthesizer for the request parameters
func (api *IdeasAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.IdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	idea, err := api.ideasSvc.Generate(ctx, req)
	if err != nil {
		api.logger.Error("Idea generation failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, generationFailed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"idea": idea,
	})
}

// handleRecent returns the latest generated ideas
func (api *IdeasAPI) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ideas": api.ideasSvc.Recent(r.Context()),
	})
}

// writeStoreError maps persistence errors to responses. A missing table or
// missing store presents as maintenance rather than an internal error.
func (api *IdeasAPI) writeStoreError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, database.ErrTableMissing) || errors.Is(err, ideas.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, maintenanceMessage)
		return
	}
	api.logger.Error("Idea store operation failed", logging.WithField("error", err.Error()))
	writeError(w, http.StatusInternalServerError, fallback)
}
