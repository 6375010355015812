package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
)

const trendingTimeout = 2 * time.Minute

const (
	sourceDataAPI   = "YouTube Data API"
	sourceAggregate = "Multi-Region Aggregation"
)

// regionLister fetches the raw trending listing for one region.
type regionLister interface {
	TrendingVideos(ctx context.Context, region string) ([]models.TrendingVideo, error)
}

// topLister resolves the aggregated top list for a region selector.
type topLister interface {
	TopVideos(ctx context.Context, region string) ([]models.TrendingVideo, error)
}

// TrendingAPI handles HTTP API requests for trending videos
type TrendingAPI struct {
	source regionLister
	trends topLister
	logger *logging.Logger
}

// NewTrendingAPI creates a new trending API handler
func NewTrendingAPI(source regionLister, trends topLister, logger *logging.Logger) *TrendingAPI {
	return &TrendingAPI{
		source: source,
		trends: trends,
		logger: logger,
	}
}

// RegisterRoutes registers trending routes on the given mux
func (api *TrendingAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/trending", corsMiddleware(api.handleTrending))
}

// handleTrending serves the trending listing for a region. The GLOBAL
// selector serves the multi-region aggregate instead of a single country
// listing.
func (api *TrendingAPI) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	region := models.NormalizeRegion(r.URL.Query().Get("region"))

	ctx, cancel := context.WithTimeout(r.Context(), trendingTimeout)
	defer cancel()

	var (
		videos []models.TrendingVideo
		source string
		err    error
	)
	if models.IsGlobalRegion(region) {
		videos, err = api.trends.TopVideos(ctx, region)
		source = sourceAggregate
	} else {
		videos, err = api.source.TrendingVideos(ctx, region)
		source = sourceDataAPI
	}
	if err != nil {
		api.logger.Error("Trending fetch failed", logging.WithFields(map[string]interface{}{
			"region": region,
			"error":  err.Error(),
		}))
		writeError(w, http.StatusInternalServerError, "Failed to fetch trending videos")
		return
	}

	writeJSON(w, http.StatusOK, models.TrendingResponse{
		Videos: videos,
		Metadata: models.TrendingMetadata{
			FetchedAt:    time.Now().UTC().Format(time.RFC3339),
			Region:       region,
			TotalFetched: len(videos),
			Source:       source,
		},
	})
}
