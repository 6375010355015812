package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/videa-app/videa/internal/models"
	"github.com/videa-app/videa/internal/ratelimit"
)

const defaultFeedBaseURL = "https://www.youtube.com/feeds/videos.xml"

// RSSLister fetches a channel's recent uploads from its public RSS feed.
// Feed entries carry no statistics, so listings built this way are degraded.
type RSSLister struct {
	baseURL string
	parser  *gofeed.Parser
	limiter *ratelimit.Limiter
	timeout time.Duration
	now     func() time.Time
}

// NewRSSLister creates an RSSLister. An empty baseURL uses the public
// YouTube feed endpoint.
func NewRSSLister(baseURL string, limiter *ratelimit.Limiter, timeout time.Duration) *RSSLister {
	if baseURL == "" {
		baseURL = defaultFeedBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RSSLister{
		baseURL: baseURL,
		parser:  gofeed.NewParser(),
		limiter: limiter,
		timeout: timeout,
		now:     time.Now,
	}
}

// ChannelVideos parses the channel's upload feed into listing entries using
// the already fetched channel profile for author fields.
func (l *RSSLister) ChannelVideos(ctx context.Context, channelID string, info models.ChannelInfo) ([]models.TrendingVideo, error) {
	feedURL := fmt.Sprintf("%s?channel_id=%s", l.baseURL, channelID)
	if err := l.limiter.Wait(ctx, "www.youtube.com"); err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	feed, err := l.parser.ParseURLWithContext(feedURL, ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YouTube feed %s: %w", feedURL, err)
	}

	authorStats := models.AuthorStats{Subscribers: "0", TotalViews: "0"}
	if info.Statistics.SubscriberCount != "" {
		authorStats.Subscribers = info.Statistics.SubscriberCount
	}
	if info.Statistics.ViewCount != "" {
		authorStats.TotalViews = info.Statistics.ViewCount
	}

	videos := make([]models.TrendingVideo, 0, len(feed.Items))
	for _, item := range feed.Items {
		author := info.Title
		if item.Author != nil && item.Author.Name != "" {
			author = item.Author.Name
		}

		publishedText := "Unknown"
		if item.PublishedParsed != nil {
			publishedText = RecencyLabel(*item.PublishedParsed, l.now())
		}

		videos = append(videos, models.TrendingVideo{
			Title:         item.Title,
			Views:         "0",
			Author:        author,
			AuthorStats:   authorStats,
			Description:   item.Description,
			VideoID:       feedVideoID(item),
			PublishedText: publishedText,
			Stats:         models.VideoStats{Views: "0", Likes: "0", Comments: "0"},
			Tags:          []string{},
			Category:      "N/A",
		})
	}

	return videos, nil
}

var watchURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)`)

// feedVideoID extracts the video ID from a feed entry. Upload feeds use
// "yt:video:ID" GUIDs; the watch URL is the fallback.
func feedVideoID(item *gofeed.Item) string {
	if id, ok := strings.CutPrefix(item.GUID, "yt:video:"); ok {
		return id
	}
	matches := watchURLPattern.FindStringSubmatch(item.Link)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}
