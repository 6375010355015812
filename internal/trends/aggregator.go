// Package trends turns raw trending listings into the diversified top list
// and the LLM-produced trend summary that idea generation builds on.
package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/videa-app/videa/internal/cache"
	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
)

// ErrNoGlobalData is returned when every region of a global fan-out fails.
var ErrNoGlobalData = errors.New("failed to fetch global trending data")

// VideoSource fetches the trending listing for one region.
type VideoSource interface {
	TrendingVideos(ctx context.Context, region string) ([]models.TrendingVideo, error)
}

const (
	topListSize   = 10
	authorCap     = 2
	defaultTopTTL = time.Hour
)

// Aggregator produces the diversified top-10 listing for a region, fanning
// out across the fixed region set for GLOBAL.
type Aggregator struct {
	source  VideoSource
	cache   cache.Cache
	logger  *logging.Logger
	regions []string
	ttl     time.Duration
}

// NewAggregator creates an Aggregator with the standard global region set
// and a one hour cache per region.
func NewAggregator(source VideoSource, c cache.Cache, logger *logging.Logger) *Aggregator {
	return &Aggregator{
		source:  source,
		cache:   c,
		logger:  logger,
		regions: models.GlobalRegions,
		ttl:     defaultTopTTL,
	}
}

func topCacheKey(region string) string {
	return "trending:top:" + region
}

// TopVideos returns up to 10 diversified trending videos for the region.
// Results are cached per region for the configured TTL.
func (a *Aggregator) TopVideos(ctx context.Context, region string) ([]models.TrendingVideo, error) {
	region = models.NormalizeRegion(region)

	if cached, ok := a.cache.Get(topCacheKey(region)); ok {
		if videos, ok := videosFromCache(cached); ok {
			a.logger.Debug("Serving top videos from cache", logging.WithField("region", region))
			return videos, nil
		}
	}

	var (
		videos []models.TrendingVideo
		err    error
	)
	if region == models.RegionGlobal {
		videos, err = a.globalTop(ctx)
	} else {
		videos, err = a.regionTop(ctx, region)
	}
	if err != nil {
		return nil, err
	}

	a.cache.SetWithTTL(topCacheKey(region), videos, a.ttl)
	return videos, nil
}

type regionResult struct {
	region string
	videos []models.TrendingVideo
	err    error
}

func (a *Aggregator) globalTop(ctx context.Context) ([]models.TrendingVideo, error) {
	results := make(chan regionResult, len(a.regions))
	var wg sync.WaitGroup

	for _, region := range a.regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			videos, err := a.source.TrendingVideos(ctx, region)
			results <- regionResult{region: region, videos: videos, err: err}
		}(region)
	}

	wg.Wait()
	close(results)

	var merged []models.TrendingVideo
	for result := range results {
		if result.err != nil {
			// A failed region contributes nothing
			a.logger.Warn("Region fetch failed during global aggregation",
				logging.WithFields(map[string]interface{}{
					"region": result.region,
					"error":  result.err.Error(),
				}))
			continue
		}
		merged = append(merged, result.videos...)
	}

	if len(merged) == 0 {
		return nil, ErrNoGlobalData
	}

	a.logger.Info("Merged global trending videos",
		logging.WithFields(map[string]interface{}{
			"regions": len(a.regions),
			"videos":  len(merged),
		}))

	deduped := dedupeByID(merged)
	sortByViews(deduped)
	return diversify(deduped, true, topListSize), nil
}

func (a *Aggregator) regionTop(ctx context.Context, region string) ([]models.TrendingVideo, error) {
	videos, err := a.source.TrendingVideos(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("fetch trending for %s: %w", region, err)
	}

	sorted := make([]models.TrendingVideo, len(videos))
	copy(sorted, videos)
	sortByViews(sorted)
	return diversify(sorted, false, topListSize), nil
}

// dedupeByID collapses videos that trend in several regions at once,
// keeping the instance with the higher view count.
func dedupeByID(videos []models.TrendingVideo) []models.TrendingVideo {
	best := make(map[string]models.TrendingVideo, len(videos))
	order := make([]string, 0, len(videos))

	for _, video := range videos {
		existing, ok := best[video.VideoID]
		if !ok {
			best[video.VideoID] = video
			order = append(order, video.VideoID)
			continue
		}
		if parseCount(video.Stats.Views) > parseCount(existing.Stats.Views) {
			best[video.VideoID] = video
		}
	}

	out := make([]models.TrendingVideo, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

func sortByViews(videos []models.TrendingVideo) {
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

// diversify walks the ranked list admitting at most two videos per author
// and, when filterTitles is set, skipping near-duplicate titles. Slots left
// open by the filter are backfilled with the next highest-ranked leftovers.
func diversify(videos []models.TrendingVideo, filterTitles bool, limit int) []models.TrendingVideo {
	selected := make([]models.TrendingVideo, 0, limit)
	authorCount := make(map[string]int)
	var seenTitles [][]string

	for _, video := range videos {
		if authorCount[video.Author] >= authorCap {
			continue
		}

		words := normalizeTitle(video.Title)
		if filterTitles && titleSimilar(seenTitles, words) {
			continue
		}

		selected = append(selected, video)
		authorCount[video.Author]++
		if filterTitles {
			seenTitles = append(seenTitles, words)
		}
		if len(selected) >= limit {
			break
		}
	}

	if len(selected) < limit {
		included := make(map[string]bool, len(selected))
		for _, video := range selected {
			included[video.VideoID] = true
		}
		for _, video := range videos {
			if included[video.VideoID] {
				continue
			}
			selected = append(selected, video)
			included[video.VideoID] = true
			if len(selected) >= limit {
				break
			}
		}
	}

	return selected
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// normalizeTitle lowercases a title, strips diacritics and punctuation, and
// splits it into words.
func normalizeTitle(title string) []string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(title),
	)
	if err != nil {
		folded = strings.ToLower(title)
	}
	return strings.Fields(nonWordChars.ReplaceAllString(folded, ""))
}

// titleSimilar reports whether enough significant words (longer than three
// characters) overlap with an already admitted title. The match threshold is
// 40% of the candidate's word count, capped at three.
func titleSimilar(seen [][]string, words []string) bool {
	threshold := len(words) * 4 / 10
	if threshold > 3 {
		threshold = 3
	}
	if threshold < 1 {
		threshold = 1
	}

	for _, existing := range seen {
		existingSet := make(map[string]bool, len(existing))
		for _, w := range existing {
			existingSet[w] = true
		}

		matches := 0
		for _, w := range words {
			if len(w) > 3 && existingSet[w] {
				matches++
			}
		}
		if matches >= threshold {
			return true
		}
	}
	return false
}

// videosFromCache converts a cached value back into a listing. Redis-backed
// caches return generic JSON values, so a remarshal round trip is needed.
func videosFromCache(v interface{}) ([]models.TrendingVideo, bool) {
	if videos, ok := v.([]models.TrendingVideo); ok {
		return videos, true
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var videos []models.TrendingVideo
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, false
	}
	return videos, true
}
