// Package youtube fetches trending listings, channel uploads, and channel
// search results from the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
	"github.com/videa-app/videa/internal/ratelimit"
	"github.com/videa-app/videa/internal/retry"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrNoChannelsFound = errors.New("no channels found")
)

const (
	apiHost = "www.googleapis.com"

	// Channel stat lookups are batched into multi-id channels.list calls
	// with a pause between batches to stay under the API rate limit.
	channelStatsBatchSize = 50
	channelBatchDelay     = 500 * time.Millisecond

	trendingMaxResults = 50
	channelTopVideos   = 20

	sourceDataAPI = "YouTube Data API"
	sourceRSS     = "YouTube RSS"
)

// Client wraps the YouTube Data API service.
type Client struct {
	svc     *youtubeapi.Service
	limiter *ratelimit.Limiter
	logger  *logging.Logger
	retry   retry.Config
	rss     *RSSLister

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a Client using the given API key. Extra client options
// are passed through to the underlying service.
func NewClient(ctx context.Context, apiKey string, limiter *ratelimit.Limiter, logger *logging.Logger, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key required")
	}

	svcOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtubeapi.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		svc:     svc,
		limiter: limiter,
		logger:  logger,
		retry:   retry.DefaultConfig(),
		now:     time.Now,
		sleep:   time.Sleep,
	}, nil
}

// SetFallbackLister sets the RSS lister used when the Data API cannot serve
// a channel's uploads.
func (c *Client) SetFallbackLister(rss *RSSLister) {
	c.rss = rss
}

// retryableAPIError reports whether an API failure is a rate limit or quota
// response worth retrying.
func retryableAPIError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusForbidden
	}
	return false
}

// TrendingVideos fetches the most popular listing for a region and enriches
// each entry with its uploader's channel statistics.
func (c *Client) TrendingVideos(ctx context.Context, region string) ([]models.TrendingVideo, error) {
	c.logger.Info("Fetching trending videos", logging.WithField("region", region))

	var listing *youtubeapi.VideoListResponse
	err := retry.Do(ctx, c.retry, retryableAPIError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, apiHost); err != nil {
			return err
		}
		var callErr error
		listing, callErr = c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
			Chart("mostPopular").
			RegionCode(region).
			MaxResults(trendingMaxResults).
			Context(ctx).
			Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("list trending videos for %s: %w", region, err)
	}

	videos := c.enrichVideos(ctx, listing.Items, nil)
	SortByViews(videos)
	c.logger.Info("Fetched trending videos",
		logging.WithFields(map[string]interface{}{"region": region, "count": len(videos)}))
	return videos, nil
}

// enrichVideos converts raw API items into listing entries. When fixed is
// non-nil every entry uses those author stats; otherwise the unique
// uploaders are looked up in batched channels.list calls.
func (c *Client) enrichVideos(ctx context.Context, items []*youtubeapi.Video, fixed *models.AuthorStats) []models.TrendingVideo {
	var stats map[string]models.AuthorStats
	var failed map[string]bool
	if fixed == nil {
		stats, failed = c.channelStatsBatch(ctx, uploaderIDs(items))
	}

	out := make([]models.TrendingVideo, len(items))
	for i, item := range items {
		out[i] = c.buildVideo(item, fixed, stats, failed)
	}
	return out
}

// uploaderIDs collects the unique channel ids of a listing in first-seen
// order.
func uploaderIDs(items []*youtubeapi.Video) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Snippet == nil || item.Snippet.ChannelId == "" {
			continue
		}
		if !seen[item.Snippet.ChannelId] {
			seen[item.Snippet.ChannelId] = true
			ids = append(ids, item.Snippet.ChannelId)
		}
	}
	return ids
}

// channelStatsBatch fetches statistics for the given channel ids in multi-id
// batches. A failed batch marks its channels failed rather than aborting the
// listing; channels absent from a successful response degrade to zero stats.
func (c *Client) channelStatsBatch(ctx context.Context, ids []string) (map[string]models.AuthorStats, map[string]bool) {
	stats := make(map[string]models.AuthorStats, len(ids))
	failed := make(map[string]bool)

	for start := 0; start < len(ids); start += channelStatsBatchSize {
		end := start + channelStatsBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		var listing *youtubeapi.ChannelListResponse
		err := retry.Do(ctx, c.retry, retryableAPIError, func(ctx context.Context) error {
			if err := c.limiter.Wait(ctx, apiHost); err != nil {
				return err
			}
			var callErr error
			listing, callErr = c.svc.Channels.List([]string{"id", "statistics"}).
				Id(strings.Join(batch, ",")).
				Context(ctx).
				Do()
			return callErr
		})
		if err != nil {
			c.logger.Warn("Failed to fetch channel stats batch",
				logging.WithFields(map[string]interface{}{
					"channels": len(batch),
					"error":    err.Error(),
				}))
			for _, id := range batch {
				failed[id] = true
			}
		} else {
			for _, item := range listing.Items {
				entry := models.AuthorStats{Subscribers: "0", TotalViews: "0"}
				if item.Statistics != nil {
					entry.Subscribers = strconv.FormatUint(item.Statistics.SubscriberCount, 10)
					entry.TotalViews = strconv.FormatUint(item.Statistics.ViewCount, 10)
				}
				stats[item.Id] = entry
			}
		}

		if end < len(ids) {
			c.sleep(channelBatchDelay)
		}
	}

	return stats, failed
}

func (c *Client) buildVideo(item *youtubeapi.Video, fixed *models.AuthorStats, stats map[string]models.AuthorStats, failed map[string]bool) models.TrendingVideo {
	video := models.TrendingVideo{
		VideoID:  item.Id,
		Category: "N/A",
		Tags:     []string{},
	}

	var published time.Time
	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Author = item.Snippet.ChannelTitle
		video.Description = item.Snippet.Description
		if len(item.Snippet.Tags) > 0 {
			video.Tags = item.Snippet.Tags
		}
		if item.Snippet.CategoryId != "" {
			video.Category = item.Snippet.CategoryId
		}
		published, _ = time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	}

	video.Stats = videoStats(item.Statistics)
	video.Views = video.Stats.Views

	if published.IsZero() {
		video.PublishedText = "Unknown"
	} else {
		video.PublishedText = RecencyLabel(published, c.now())
	}

	channelID := ""
	if item.Snippet != nil {
		channelID = item.Snippet.ChannelId
	}

	switch {
	case fixed != nil:
		video.AuthorStats = *fixed
	case channelID != "" && failed[channelID]:
		video.AuthorStats = models.AuthorStats{Subscribers: "0", TotalViews: "0"}
		video.PublishedText = "Unknown"
	case channelID != "":
		if entry, ok := stats[channelID]; ok {
			video.AuthorStats = entry
		} else {
			video.AuthorStats = models.AuthorStats{Subscribers: "0", TotalViews: "0"}
		}
	default:
		video.AuthorStats = models.AuthorStats{Subscribers: "0", TotalViews: "0"}
	}

	return video
}

func videoStats(stats *youtubeapi.VideoStatistics) models.VideoStats {
	if stats == nil {
		return models.VideoStats{Views: "0", Likes: "0", Comments: "0"}
	}
	return models.VideoStats{
		Views:    strconv.FormatUint(stats.ViewCount, 10),
		Likes:    strconv.FormatUint(stats.LikeCount, 10),
		Comments: strconv.FormatUint(stats.CommentCount, 10),
	}
}

// ChannelVideos fetches a channel's most viewed recent uploads along with
// the channel profile. When the Data API cannot serve the uploads and an
// RSS fallback is configured, a degraded listing is returned instead.
func (c *Client) ChannelVideos(ctx context.Context, channelID string) (*models.ChannelVideosResponse, error) {
	c.logger.Info("Fetching channel videos", logging.WithField("channelId", channelID))

	var channels *youtubeapi.ChannelListResponse
	err := retry.Do(ctx, c.retry, retryableAPIError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, apiHost); err != nil {
			return err
		}
		var callErr error
		channels, callErr = c.svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("lookup channel %s: %w", channelID, err)
	}
	if len(channels.Items) == 0 {
		return nil, ErrChannelNotFound
	}

	channel := channels.Items[0]
	info := models.ChannelInfo{ID: channel.Id}
	if channel.Snippet != nil {
		info.Title = channel.Snippet.Title
		info.Description = channel.Snippet.Description
		info.CustomURL = channel.Snippet.CustomUrl
	}
	if channel.Statistics != nil {
		info.Statistics = models.ChannelStatistics{
			ViewCount:       strconv.FormatUint(channel.Statistics.ViewCount, 10),
			SubscriberCount: strconv.FormatUint(channel.Statistics.SubscriberCount, 10),
			VideoCount:      strconv.FormatUint(channel.Statistics.VideoCount, 10),
		}
	}

	videos, err := c.channelUploads(ctx, channel, info)
	if err != nil {
		if c.rss == nil {
			return nil, err
		}
		c.logger.Warn("Falling back to RSS for channel uploads",
			logging.WithFields(map[string]interface{}{"channelId": channelID, "error": err.Error()}))
		rssVideos, rssErr := c.rss.ChannelVideos(ctx, channelID, info)
		if rssErr != nil {
			return nil, err
		}
		return &models.ChannelVideosResponse{
			ChannelInfo: info,
			Videos:      rssVideos,
			Metadata: models.TrendingMetadata{
				FetchedAt:    c.now().UTC().Format(time.RFC3339),
				TotalFetched: len(rssVideos),
				Source:       sourceRSS,
			},
		}, nil
	}

	return &models.ChannelVideosResponse{
		ChannelInfo: info,
		Videos:      videos,
		Metadata: models.TrendingMetadata{
			FetchedAt:    c.now().UTC().Format(time.RFC3339),
			TotalFetched: len(videos),
			Source:       sourceDataAPI,
		},
	}, nil
}

func (c *Client) channelUploads(ctx context.Context, channel *youtubeapi.Channel, info models.ChannelInfo) ([]models.TrendingVideo, error) {
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil {
		return nil, fmt.Errorf("channel %s has no uploads playlist", channel.Id)
	}
	uploadsID := channel.ContentDetails.RelatedPlaylists.Uploads

	var playlist *youtubeapi.PlaylistItemListResponse
	err := retry.Do(ctx, c.retry, retryableAPIError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, apiHost); err != nil {
			return err
		}
		var callErr error
		playlist, callErr = c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(uploadsID).
			MaxResults(trendingMaxResults).
			Context(ctx).
			Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("list uploads playlist %s: %w", uploadsID, err)
	}

	ids := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	if len(ids) == 0 {
		return []models.TrendingVideo{}, nil
	}

	var details *youtubeapi.VideoListResponse
	err = retry.Do(ctx, c.retry, retryableAPIError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, apiHost); err != nil {
			return err
		}
		var callErr error
		details, callErr = c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(strings.Join(ids, ",")).
			Context(ctx).
			Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("list video details: %w", err)
	}

	authorStats := models.AuthorStats{
		Subscribers: info.Statistics.SubscriberCount,
		TotalViews:  info.Statistics.ViewCount,
	}
	if authorStats.Subscribers == "" {
		authorStats.Subscribers = "0"
	}
	if authorStats.TotalViews == "" {
		authorStats.TotalViews = "0"
	}

	videos := c.enrichVideos(ctx, details.Items, &authorStats)
	SortByViews(videos)
	if len(videos) > channelTopVideos {
		videos = videos[:channelTopVideos]
	}
	return videos, nil
}

// SearchChannels finds channels whose name matches the query.
func (c *Client) SearchChannels(ctx context.Context, query string, maxResults int64) ([]models.ChannelSearchResult, error) {
	c.logger.Info("Searching channels", logging.WithField("query", query))

	var listing *youtubeapi.SearchListResponse
	err := retry.Do(ctx, c.retry, retryableAPIError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, apiHost); err != nil {
			return err
		}
		var callErr error
		listing, callErr = c.svc.Search.List([]string{"snippet"}).
			Q(query).
			Type("channel").
			MaxResults(maxResults).
			Context(ctx).
			Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("search channels %q: %w", query, err)
	}
	if len(listing.Items) == 0 {
		return nil, ErrNoChannelsFound
	}

	results := make([]models.ChannelSearchResult, 0, len(listing.Items))
	for _, item := range listing.Items {
		result := models.ChannelSearchResult{}
		if item.Id != nil {
			result.ChannelID = item.Id.ChannelId
		}
		if item.Snippet != nil {
			result.Title = item.Snippet.Title
			result.Description = item.Snippet.Description
		}
		results = append(results, result)
	}
	return results, nil
}

// SortByViews orders a listing by view count, highest first.
func SortByViews(videos []models.TrendingVideo) {
	sort.SliceStable(videos, func(i, j int) bool {
		return parseCount(videos[i].Stats.Views) > parseCount(videos[j].Stats.Views)
	})
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
