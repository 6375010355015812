package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/videa-app/videa/internal/cache"
	"github.com/videa-app/videa/internal/llm"
	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
)

// Completer issues a single stateless text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	summaryTTL      = time.Hour
	summaryTopCount = 20

	summaryCacheKey = "trends:summary"
)

// Summarizer condenses a trending listing into a TrendSummary via one LLM
// completion. Failures degrade to a placeholder summary rather than an
// error, so idea generation never stalls on analysis.
type Summarizer struct {
	llm    Completer
	cache  cache.Cache
	logger *logging.Logger
	ttl    time.Duration
}

// NewSummarizer creates a Summarizer that keeps successful summaries in the
// shared cache for an hour.
func NewSummarizer(completer Completer, c cache.Cache, logger *logging.Logger) *Summarizer {
	return &Summarizer{
		llm:    completer,
		cache:  c,
		logger: logger,
		ttl:    summaryTTL,
	}
}

// Summarize returns the trend summary for the listing, reusing a cached
// summary when one is fresh enough.
func (s *Summarizer) Summarize(ctx context.Context, videos []models.TrendingVideo) *models.TrendSummary {
	if cached, ok := s.cache.Get(summaryCacheKey); ok {
		if summary, ok := summaryFromCache(cached); ok {
			s.logger.Debug("Serving trend summary from cache")
			return summary
		}
	}

	prompt := buildAnalysisPrompt(videos)

	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("Trend analysis completion failed", logging.WithField("error", err.Error()))
		return placeholderSummary()
	}

	summary, err := parseSummary(text)
	if err != nil {
		s.logger.Warn("Failed to parse trend analysis", logging.WithField("error", err.Error()))
		return placeholderSummary()
	}

	s.cache.SetWithTTL(summaryCacheKey, summary, s.ttl)

	return summary
}

// summaryFromCache converts a cached value back into a summary. Redis-backed
// caches return generic JSON values, so a remarshal round trip is needed.
func summaryFromCache(v interface{}) (*models.TrendSummary, bool) {
	if summary, ok := v.(*models.TrendSummary); ok {
		return summary, true
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var summary models.TrendSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func buildAnalysisPrompt(videos []models.TrendingVideo) string {
	top := rankByEngagement(videos)
	if len(top) > summaryTopCount {
		top = top[:summaryTopCount]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these %d trending YouTube videos. I'm providing detailed data for the top %d most engaging videos:\n\n",
		len(videos), len(top))
	b.WriteString("Top Performing Videos:\n")
	for i, v := range top {
		fmt.Fprintf(&b, "%d. %q\n", i+1, v.Title)
		fmt.Fprintf(&b, "Author: %s (%s subscribers)\n", v.Author, v.AuthorStats.Subscribers)
		fmt.Fprintf(&b, "Stats: %s views, %s likes, %s comments\n", v.Stats.Views, v.Stats.Likes, v.Stats.Comments)
		fmt.Fprintf(&b, "Category: %s\n", v.Category)
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(v.Tags, ", "))
		fmt.Fprintf(&b, "Published: %s\n\n", v.PublishedText)
	}

	b.WriteString("Additional Context:\n")
	fmt.Fprintf(&b, "- Total videos analyzed: %d\n", len(videos))
	fmt.Fprintf(&b, "- Most common categories: %s\n", strings.Join(topCategories(videos, 5), ", "))
	fmt.Fprintf(&b, "- Most used tags: %s\n\n", strings.Join(topTags(videos, 10), ", "))

	b.WriteString(`Please provide a comprehensive analysis including:
1. Common themes and patterns
2. Popular content types
3. Successful video formats
4. Trending topics
5. Engagement patterns
6. Top performing categories
7. Most effective video titles
8. Popular hashtags/tags

Respond with ONLY a JSON object in this exact format (no markdown, no code blocks):
{
  "themes": ["theme1", "theme2"],
  "contentTypes": ["type1", "type2"],
  "videoFormats": ["format1", "format2"],
  "trendingTopics": ["topic1", "topic2"],
  "engagementInsights": ["insight1", "insight2"],
  "topCategories": ["category1", "category2"],
  "titlePatterns": ["pattern1", "pattern2"],
  "popularTags": ["tag1", "tag2"]
}`)

	return b.String()
}

// parseSummary strips any code fences and requires all eight lists to be
// present; a partially filled summary is treated as a failure.
func parseSummary(text string) (*models.TrendSummary, error) {
	cleaned := llm.StripFences(text)

	var summary models.TrendSummary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal trend summary: %w", err)
	}

	missing := missingSummaryFields(&summary)
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return &summary, nil
}

func missingSummaryFields(s *models.TrendSummary) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value []string
	}{
		{"themes", s.Themes},
		{"contentTypes", s.ContentTypes},
		{"videoFormats", s.VideoFormats},
		{"trendingTopics", s.TrendingTopics},
		{"engagementInsights", s.EngagementInsights},
		{"topCategories", s.TopCategories},
		{"titlePatterns", s.TitlePatterns},
		{"popularTags", s.PopularTags},
	} {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func placeholderSummary() *models.TrendSummary {
	return &models.TrendSummary{
		Themes:             []string{"Unable to analyze themes"},
		ContentTypes:       []string{"Unable to analyze content types"},
		VideoFormats:       []string{"Unable to analyze formats"},
		TrendingTopics:     []string{"Unable to analyze topics"},
		EngagementInsights: []string{"Unable to analyze engagement"},
		TopCategories:      []string{"Unable to analyze categories"},
		TitlePatterns:      []string{"Unable to analyze patterns"},
		PopularTags:        []string{"Unable to analyze tags"},
	}
}

func engagement(v models.TrendingVideo) int64 {
	return parseCount(v.Stats.Views) + parseCount(v.Stats.Likes) + parseCount(v.Stats.Comments)
}

func rankByEngagement(videos []models.TrendingVideo) []models.TrendingVideo {
	ranked := make([]models.TrendingVideo, len(videos))
	copy(ranked, videos)
	sort.SliceStable(ranked, func(i, j int) bool {
		return engagement(ranked[i]) > engagement(ranked[j])
	})
	return ranked
}

// topCategories returns the most frequent category codes, ties broken by
// first appearance.
func topCategories(videos []models.TrendingVideo, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, v := range videos {
		if counts[v.Category] == 0 {
			order = append(order, v.Category)
		}
		counts[v.Category]++
	}
	return topByCount(counts, order, limit)
}

// topTags returns the most frequent tags, ties broken by first appearance.
func topTags(videos []models.TrendingVideo, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, v := range videos {
		for _, tag := range v.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	return topByCount(counts, order, limit)
}

func topByCount(counts map[string]int, order []string, limit int) []string {
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
