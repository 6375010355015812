package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
	"github.com/videa-app/videa/internal/youtube"
)

const defaultSearchResults = 5

// channelService resolves channels and their uploads.
type channelService interface {
	ChannelVideos(ctx context.Context, channelID string) (*models.ChannelVideosResponse, error)
	SearchChannels(ctx context.Context, query string, maxResults int64) ([]models.ChannelSearchResult, error)
}

// ChannelsAPI handles HTTP API requests for channel lookups
type ChannelsAPI struct {
	channels channelService
	logger   *logging.Logger
}

// NewChannelsAPI creates a new channels API handler
func NewChannelsAPI(channels channelService, logger *logging.Logger) *ChannelsAPI {
	return &ChannelsAPI{
		channels: channels,
		logger:   logger,
	}
}

// RegisterRoutes registers channel routes on the given mux
func (api *ChannelsAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/channels/videos", corsMiddleware(api.handleChannelVideos))
	mux.HandleFunc("/api/channels/search", corsMiddleware(api.handleChannelSearch))
}

// handleChannelVideos returns a channel's profile and top uploads
func (api *ChannelsAPI) handleChannelVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channelID := r.URL.Query().Get("channelId")
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "Channel ID is required")
		return
	}

	response, err := api.channels.ChannelVideos(r.Context(), channelID)
	if err != nil {
		if errors.Is(err, youtube.ErrChannelNotFound) {
			writeError(w, http.StatusNotFound, "Channel not found")
			return
		}
		api.logger.Error("Channel videos fetch failed", logging.WithFields(map[string]interface{}{
			"channelId": channelID,
			"error":     err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to fetch channel videos")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// handleChannelSearch searches channels by name
func (api *ChannelsAPI) handleChannelSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	maxResults := int64(defaultSearchResults)
	if v := r.URL.Query().Get("maxResults"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			maxResults = parsed
		}
	}

	channels, err := api.channels.SearchChannels(r.Context(), query, maxResults)
	if err != nil {
		if errors.Is(err, youtube.ErrNoChannelsFound) {
			writeError(w, http.StatusNotFound, "No channels found matching that name")
			return
		}
		api.logger.Error("Channel search failed", logging.WithFields(map[string]interface{}{
			"query": query,
			"error": err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to search for YouTube channel")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"channels": channels,
	})
}
