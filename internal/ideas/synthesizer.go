package ideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videa-app/videa/internal/llm"
	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
)

// ErrGenerationFailed reports that both generation paths were exhausted
// without producing a parseable idea.
var ErrGenerationFailed = errors.New("failed to generate a video idea")

const channelTopVideosInPrompt = 5

// TrendSource resolves the trending list for a region selector, including
// the GLOBAL aggregate.
type TrendSource interface {
	TopVideos(ctx context.Context, region string) ([]models.TrendingVideo, error)
}

// ChannelSource resolves a channel and its recent uploads.
type ChannelSource interface {
	ChannelVideos(ctx context.Context, channelID string) (*models.ChannelVideosResponse, error)
}

// TrendAnalyzer condenses a trending listing into a summary.
type TrendAnalyzer interface {
	Summarize(ctx context.Context, videos []models.TrendingVideo) *models.TrendSummary
}

// Generator produces model text for a prompt, through an assistant thread
// or a plain completion.
type Generator interface {
	GenerateWithAssistant(ctx context.Context, prompt string) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns an idea request into a full video idea, grounding the
// prompt in current trending data and optional reference channels.
type Synthesizer struct {
	trends   TrendSource
	channels ChannelSource
	analyzer TrendAnalyzer
	llm      Generator
	logger   *logging.Logger

	now func() time.Time
}

func NewSynthesizer(trends TrendSource, channels ChannelSource, analyzer TrendAnalyzer, generator Generator, logger *logging.Logger) *Synthesizer {
	return &Synthesizer{
		trends:   trends,
		channels: channels,
		analyzer: analyzer,
		llm:      generator,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate builds the prompt, runs the assistant path, and falls back to a
// stateless completion when the assistant path or its parse fails.
func (s *Synthesizer) Generate(ctx context.Context, req models.IdeaRequest) (*models.VideoIdea, error) {
	region := models.NormalizeRegion(req.Region)

	videos, err := s.trends.TopVideos(ctx, region)
	if err != nil {
		s.logger.Warn("Trending fetch for idea generation failed",
			logging.WithFields(map[string]interface{}{"region": region, "error": err.Error()}))
		videos = nil
	}

	summary := s.analyzer.Summarize(ctx, videos)
	insights := s.channelInsights(ctx, req.ReferenceChannels)
	prompt := buildIdeaPrompt(req, region, summary, insights)

	text, err := s.llm.GenerateWithAssistant(ctx, prompt)
	if err == nil {
		idea, parseErr := s.buildIdea(text, req, region)
		if parseErr == nil {
			return idea, nil
		}
		err = parseErr
	}
	s.logger.Warn("Assistant generation failed, falling back to completion",
		logging.WithField("error", err.Error()))

	text, err = s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("Completion fallback failed", logging.WithField("error", err.Error()))
		return nil, ErrGenerationFailed
	}

	idea, err := s.buildIdea(text, req, region)
	if err != nil {
		s.logger.Error("Failed to parse completion response",
			logging.WithField("error", err.Error()))
		return nil, ErrGenerationFailed
	}
	return idea, nil
}

type channelInsight struct {
	info   models.ChannelInfo
	videos []models.TrendingVideo
}

// channelInsights fetches reference channels, skipping any that fail.
func (s *Synthesizer) channelInsights(ctx context.Context, channelIDs []string) []channelInsight {
	if len(channelIDs) == 0 || s.channels == nil {
		return nil
	}

	insights := make([]channelInsight, 0, len(channelIDs))
	for _, id := range channelIDs {
		resp, err := s.channels.ChannelVideos(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping reference channel",
				logging.WithFields(map[string]interface{}{"channelId": id, "error": err.Error()}))
			continue
		}
		insights = append(insights, channelInsight{info: resp.ChannelInfo, videos: resp.Videos})
	}
	return insights
}

func buildIdeaPrompt(req models.IdeaRequest, region string, summary *models.TrendSummary, insights []channelInsight) string {
	improving := req.Feedback != "" && req.PreviousIdea != ""

	var b strings.Builder
	if req.Feedback != "" {
		b.WriteString("IMPROVE AN EXISTING")
	} else {
		b.WriteString("CREATE AN ORIGINAL")
	}
	fmt.Fprintf(&b, " viral video idea for %s focusing on the %s niche.\n\n", req.Platform, req.Niche)

	b.WriteString("Details:\n")
	fmt.Fprintf(&b, "- Content type: %s\n", req.ContentType)
	fmt.Fprintf(&b, "- Region: %s\n", region)
	fmt.Fprintf(&b, "- Virality factor: %d%% (higher means more experimental)\n", req.ViralityFactor)
	if req.Keywords != "" {
		fmt.Fprintf(&b, "- Keywords to incorporate: %s\n", req.Keywords)
	}

	b.WriteString("\nBased on current YouTube trending data:\n")
	fmt.Fprintf(&b, "- Common themes: %s\n", strings.Join(summary.Themes, ", "))
	fmt.Fprintf(&b, "- Popular content types: %s\n", strings.Join(summary.ContentTypes, ", "))
	fmt.Fprintf(&b, "- Trending topics: %s\n", strings.Join(summary.TrendingTopics, ", "))
	fmt.Fprintf(&b, "- Engagement insights: %s\n", strings.Join(summary.EngagementInsights, ", "))
	fmt.Fprintf(&b, "- Top categories: %s\n", strings.Join(summary.TopCategories, ", "))
	fmt.Fprintf(&b, "- Title patterns: %s\n", strings.Join(summary.TitlePatterns, ", "))
	fmt.Fprintf(&b, "- Popular tags: %s\n", strings.Join(summary.PopularTags, ", "))

	if len(insights) > 0 {
		b.WriteString("\nReference Channels Analysis:\n")
		for i, insight := range insights {
			fmt.Fprintf(&b, "\nChannel %d: %s\n", i+1, insight.info.Title)
			fmt.Fprintf(&b, "Subscribers: %s\n", insight.info.Statistics.SubscriberCount)
			b.WriteString("Top Performing Videos:\n")
			top := insight.videos
			if len(top) > channelTopVideosInPrompt {
				top = top[:channelTopVideosInPrompt]
			}
			for j, video := range top {
				fmt.Fprintf(&b, "%d. %q\n", j+1, video.Title)
				fmt.Fprintf(&b, "Stats: %s views, %s likes, %s comments\n",
					video.Stats.Views, video.Stats.Likes, video.Stats.Comments)
				fmt.Fprintf(&b, "Tags: %s\n", strings.Join(video.Tags, ", "))
			}
		}
	}

	if improving {
		if prev := previousIdeaSection(req.PreviousIdea); prev != "" {
			b.WriteString(prev)
		}
		fmt.Fprintf(&b, "\nUSER FEEDBACK TO INCORPORATE:\n%q\n", req.Feedback)
		b.WriteString("\nPlease carefully consider this feedback and make specific improvements to the previous idea based on it.\n")
	}

	if req.Feedback != "" {
		b.WriteString("\nCreate an improved version of the video idea by incorporating the user's feedback while maintaining viral potential.\n")
	} else {
		b.WriteString("\nCreate a completely original video idea that:\n")
	}
	b.WriteString("1. Leverages current trends\n")
	b.WriteString("2. Has viral potential\n")
	fmt.Fprintf(&b, "3. Is authentic to the %s niche\n", req.Niche)
	fmt.Fprintf(&b, "4. Works well on %s\n", req.Platform)
	b.WriteString("5. Incorporates insights from the reference channels (if provided)\n")
	if req.Feedback != "" {
		b.WriteString("6. Directly addresses the user's feedback for improvements\n")
	}

	b.WriteString(`
Provide a JSON response in this exact format (no markdown, no code blocks):
{
  "title": "Catchy video title",
  "concept": "Detailed description of the video concept, structure, and execution",
  "hashtags": ["tag1", "tag2", "tag3"],
  "viralityScore": 85,
  "viralityJustification": "Explanation of why this idea has viral potential",
  "monetizationStrategy": "How to monetize this content",
  "videoFormat": {
    "type": "The type of video format that works best",
    "length": "Optimal video length",
    "hooks": ["Key moment 1 to hook viewers", "Key moment 2", "Key moment 3"]
  },
  "trendAnalysis": {
    "relevantThemes": ["theme1", "theme2"],
    "relatedContent": ["related1", "related2"],
    "suggestedTags": ["tag1", "tag2", "tag3"]
  },
  "channelInspirations": "How the reference channels influenced this idea (only if reference channels were provided)"
}
`)

	return b.String()
}

// previousIdeaSection renders the idea being improved. A previous idea that
// does not parse is dropped rather than failing the whole request.
func previousIdeaSection(raw string) string {
	var prev struct {
		Title                string   `json:"title"`
		Concept              string   `json:"concept"`
		Hashtags             []string `json:"hashtags"`
		ViralityScore        int      `json:"viralityScore"`
		MonetizationStrategy string   `json:"monetizationStrategy"`
	}
	if err := json.Unmarshal([]byte(raw), &prev); err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nPREVIOUS IDEA TO IMPROVE:\n")
	fmt.Fprintf(&b, "Title: %q\n", prev.Title)
	fmt.Fprintf(&b, "Concept: %q\n", prev.Concept)
	fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(prev.Hashtags, ", "))
	fmt.Fprintf(&b, "Virality Score: %d%%\n", prev.ViralityScore)
	fmt.Fprintf(&b, "Monetization Strategy: %q\n", prev.MonetizationStrategy)
	b.WriteString("\nUsing the user's feedback, create an IMPROVED version of this idea. Maintain the strengths but address the feedback directly.\n")
	return b.String()
}

type rawIdea struct {
	Title                 string                `json:"title"`
	Concept               string                `json:"concept"`
	Hashtags              []string              `json:"hashtags"`
	ViralityScore         int                   `json:"viralityScore"`
	ViralityJustification string                `json:"viralityJustification"`
	MonetizationStrategy  string                `json:"monetizationStrategy"`
	VideoFormat           *models.VideoFormat   `json:"videoFormat"`
	TrendAnalysis         *models.TrendAnalysis `json:"trendAnalysis"`
	ChannelInspirations   string                `json:"channelInspirations"`
}

// buildIdea parses a model response and fills in defaults for anything the
// model left out. ID and timestamp always come from the server.
func (s *Synthesizer) buildIdea(text string, req models.IdeaRequest, region string) (*models.VideoIdea, error) {
	var raw rawIdea
	if err := json.Unmarshal([]byte(llm.StripFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("parse idea response: %w", err)
	}

	idea := &models.VideoIdea{
		ID:                    uuid.NewString(),
		Title:                 raw.Title,
		Concept:               raw.Concept,
		Hashtags:              raw.Hashtags,
		ViralityScore:         clampScore(raw.ViralityScore),
		ViralityJustification: raw.ViralityJustification,
		MonetizationStrategy:  raw.MonetizationStrategy,
		Platform:              req.Platform,
		ContentType:           req.ContentType,
		CreatedAt:             s.now(),
		Region:                region,
		ChannelInspirations:   raw.ChannelInspirations,
	}
	if idea.Title == "" {
		idea.Title = "Untitled Video Idea"
	}
	if idea.Concept == "" {
		idea.Concept = "No concept provided"
	}
	if idea.Hashtags == nil {
		idea.Hashtags = []string{}
	}
	if raw.VideoFormat != nil {
		idea.VideoFormat = *raw.VideoFormat
	} else {
		idea.VideoFormat = models.VideoFormat{
			Type:   "Short form",
			Length: "60 seconds",
			Hooks:  []string{"Hook 1", "Hook 2", "Hook 3"},
		}
	}
	if raw.TrendAnalysis != nil {
		idea.TrendAnalysis = *raw.TrendAnalysis
	} else {
		idea.TrendAnalysis = models.TrendAnalysis{
			RelevantThemes: []string{},
			RelatedContent: []string{},
			SuggestedTags:  []string{},
		}
	}
	return idea, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
