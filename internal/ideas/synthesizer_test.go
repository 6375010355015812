package ideas

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/videa-app/videa/internal/models"
	"github.com/videa-app/videa/internal/testutil"
)

type fakeTrendSource struct {
	videos []models.TrendingVideo
	err    error
	calls  int
	region string
}

func (f *fakeTrendSource) TopVideos(ctx context.Context, region string) ([]models.TrendingVideo, error) {
	f.calls++
	f.region = region
	return f.videos, f.err
}

type fakeChannelSource struct {
	responses map[string]*models.ChannelVideosResponse
}

func (f *fakeChannelSource) ChannelVideos(ctx context.Context, channelID string) (*models.ChannelVideosResponse, error) {
	resp, ok := f.responses[channelID]
	if !ok {
		return nil, errors.New("channel lookup failed")
	}
	return resp, nil
}

type fakeAnalyzer struct {
	summary *models.TrendSummary
	videos  []models.TrendingVideo
}

func (f *fakeAnalyzer) Summarize(ctx context.Context, videos []models.TrendingVideo) *models.TrendSummary {
	f.videos = videos
	return f.summary
}

type fakeGenerator struct {
	assistantText  string
	assistantErr   error
	completeText   string
	completeErr    error
	assistantCalls int
	completeCalls  int
	lastPrompt     string
}

func (f *fakeGenerator) GenerateWithAssistant(ctx context.Context, prompt string) (string, error) {
	f.assistantCalls++
	f.lastPrompt = prompt
	return f.assistantText, f.assistantErr
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	f.completeCalls++
	f.lastPrompt = prompt
	return f.completeText, f.completeErr
}

func testSummary() *models.TrendSummary {
	return &models.TrendSummary{
		Themes:             []string{"gaming", "reactions"},
		ContentTypes:       []string{"challenges"},
		VideoFormats:       []string{"short form"},
		TrendingTopics:     []string{"speedruns"},
		EngagementInsights: []string{"questions in titles"},
		TopCategories:      []string{"20"},
		TitlePatterns:      []string{"I tried X"},
		PopularTags:        []string{"gaming", "viral"},
	}
}

const fullIdeaJSON = `{
	"title": "Speedrun Roulette",
	"concept": "Randomized speedrun challenges with live reactions",
	"hashtags": ["speedrun", "gaming"],
	"viralityScore": 88,
	"viralityJustification": "Taps the current speedrun wave",
	"monetizationStrategy": "Sponsor segments and memberships",
	"videoFormat": {"type": "Long form", "length": "12 minutes", "hooks": ["Cold open fail", "Timer reveal", "Final attempt"]},
	"trendAnalysis": {"relevantThemes": ["gaming"], "relatedContent": ["speedrun compilations"], "suggestedTags": ["speedrun"]},
	"channelInspirations": "Pacing borrowed from channel 1"
}`

func newTestSynthesizer(t *testing.T, source *fakeTrendSource, channels ChannelSource, gen *fakeGenerator) (*Synthesizer, time.Time) {
	t.Helper()
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	s := NewSynthesizer(source, channels, &fakeAnalyzer{summary: testSummary()}, gen, testutil.NullLogger())
	s.now = func() time.Time { return now }
	return s, now
}

func TestGenerate_AssistantPath(t *testing.T) {
	gen := &fakeGenerator{assistantText: "```json\n" + fullIdeaJSON + "\n```"}
	s, now := newTestSynthesizer(t, &fakeTrendSource{}, nil, gen)

	idea, err := s.Generate(context.Background(), models.IdeaRequest{
		Niche:          "gaming",
		Platform:       "YouTube",
		ContentType:    "entertainment",
		ViralityFactor: 70,
		Region:         "gb",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if idea.Title != "Speedrun Roulette" {
		t.Errorf("title = %q", idea.Title)
	}
	if idea.ID == "" {
		t.Error("expected a generated id")
	}
	if !idea.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", idea.CreatedAt, now)
	}
	if idea.Platform != "YouTube" || idea.ContentType != "entertainment" {
		t.Errorf("request fields not carried: %+v", idea)
	}
	if idea.Region != "GB" {
		t.Errorf("region = %q, want GB", idea.Region)
	}
	if idea.VideoFormat.Type != "Long form" {
		t.Errorf("videoFormat.type = %q", idea.VideoFormat.Type)
	}
	if gen.completeCalls != 0 {
		t.Errorf("completion fallback ran %d times", gen.completeCalls)
	}
}

func TestGenerate_FallsBackOnAssistantError(t *testing.T) {
	gen := &fakeGenerator{
		assistantErr: errors.New("run timed out"),
		completeText: fullIdeaJSON,
	}
	s, _ := newTestSynthesizer(t, &fakeTrendSource{}, nil, gen)

	idea, err := s.Generate(context.Background(), models.IdeaRequest{Niche: "gaming", Platform: "YouTube"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if gen.assistantCalls != 1 || gen.completeCalls != 1 {
		t.Errorf("calls = assistant %d, complete %d", gen.assistantCalls, gen.completeCalls)
	}
	if idea.Title != "Speedrun Roulette" {
		t.Errorf("title = %q", idea.Title)
	}
}

func TestGenerate_FallsBackOnUnparseableAssistantReply(t *testing.T) {
	gen := &fakeGenerator{
		assistantText: "Sure! Here's an idea for you.",
		completeText:  fullIdeaJSON,
	}
	s, _ := newTestSynthesizer(t, &fakeTrendSource{}, nil, gen)

	if _, err := s.Generate(context.Background(), models.IdeaRequest{Niche: "gaming"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if gen.completeCalls != 1 {
		t.Errorf("completeCalls = %d, want 1", gen.completeCalls)
	}
}

func TestGenerate_BothPathsFail(t *testing.T) {
	gen := &fakeGenerator{
		assistantErr: errors.New("assistant down"),
		completeText: "not json either",
	}
	s, _ := newTestSynthesizer(t, &fakeTrendSource{}, nil, gen)

	_, err := s.Generate(context.Background(), models.IdeaRequest{Niche: "gaming"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerate_DefaultsFillSparseResponse(t *testing.T) {
	gen := &fakeGenerator{assistantText: `{"viralityScore": 140}`}
	s, _ := newTestSynthesizer(t, &fakeTrendSource{}, nil, gen)

	idea, err := s.Generate(context.Background(), models.IdeaRequest{Niche: "gaming", Platform: "TikTok"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if idea.Title != "Untitled Video Idea" {
		t.Errorf("title = %q", idea.Title)
	}
	if idea.Concept != "No concept provided" {
		t.Errorf("concept = %q", idea.Concept)
	}
	if idea.Hashtags == nil || len(idea.Hashtags) != 0 {
		t.Errorf("hashtags = %#v, want empty slice", idea.Hashtags)
	}
	if idea.ViralityScore != 100 {
		t.Errorf("viralityScore = %d, want clamped 100", idea.ViralityScore)
	}
	if idea.VideoFormat.Type != "Short form" || idea.VideoFormat.Length != "60 seconds" {
		t.Errorf("videoFormat = %+v", idea.VideoFormat)
	}
	if len(idea.VideoFormat.Hooks) != 3 {
		t.Errorf("hooks = %v", idea.VideoFormat.Hooks)
	}
	if idea.TrendAnalysis.RelevantThemes == nil {
		t.Error("trendAnalysis.relevantThemes should be an empty slice")
	}
}

func TestGenerate_TrendingFailureTolerated(t *testing.T) {
	source := &fakeTrendSource{err: errors.New("quota exceeded")}
	gen := &fakeGenerator{assistantText: fullIdeaJSON}
	s, _ := newTestSynthesizer(t, source, nil, gen)

	if _, err := s.Generate(context.Background(), models.IdeaRequest{Niche: "gaming"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("trending calls = %d", source.calls)
	}
}

func TestGenerate_GlobalRegionPassesThrough(t *testing.T) {
	source := &fakeTrendSource{}
	gen := &fakeGenerator{assistantText: fullIdeaJSON}
	s, _ := newTestSynthesizer(t, source, nil, gen)

	idea, err := s.Generate(context.Background(), models.IdeaRequest{Niche: "gaming", Region: "global"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if source.region != models.RegionGlobal {
		t.Errorf("fetch region = %q, want GLOBAL", source.region)
	}
	if idea.Region != models.RegionGlobal {
		t.Errorf("idea region = %q, want GLOBAL", idea.Region)
	}
}

func TestBuildIdeaPrompt_CreateFraming(t *testing.T) {
	prompt := buildIdeaPrompt(models.IdeaRequest{
		Niche:          "cooking",
		Platform:       "YouTube",
		ContentType:    "tutorial",
		ViralityFactor: 40,
		Keywords:       "air fryer",
	}, "US", testSummary(), nil)

	for _, want := range []string{
		"CREATE AN ORIGINAL viral video idea for YouTube focusing on the cooking niche.",
		"- Keywords to incorporate: air fryer",
		"- Common themes: gaming, reactions",
		"- Popular tags: gaming, viral",
		"Create a completely original video idea that:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "USER FEEDBACK") {
		t.Error("create prompt should not carry a feedback section")
	}
}

func TestBuildIdeaPrompt_ImproveFraming(t *testing.T) {
	prompt := buildIdeaPrompt(models.IdeaRequest{
		Niche:        "cooking",
		Platform:     "YouTube",
		Feedback:     "make it shorter",
		PreviousIdea: `{"title": "Slow Roast Marathon", "concept": "An 8 hour roast", "hashtags": ["roast"], "viralityScore": 55, "monetizationStrategy": "Ads"}`,
	}, "US", testSummary(), nil)

	for _, want := range []string{
		"IMPROVE AN EXISTING viral video idea",
		"PREVIOUS IDEA TO IMPROVE:",
		`Title: "Slow Roast Marathon"`,
		"Virality Score: 55%",
		`USER FEEDBACK TO INCORPORATE:`,
		`"make it shorter"`,
		"6. Directly addresses the user's feedback",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildIdeaPrompt_BadPreviousIdeaSkipped(t *testing.T) {
	prompt := buildIdeaPrompt(models.IdeaRequest{
		Niche:        "cooking",
		Feedback:     "make it shorter",
		PreviousIdea: "{not json",
	}, "US", testSummary(), nil)

	if strings.Contains(prompt, "PREVIOUS IDEA TO IMPROVE") {
		t.Error("unparseable previous idea should be skipped")
	}
	if !strings.Contains(prompt, "USER FEEDBACK TO INCORPORATE") {
		t.Error("feedback section should survive a bad previous idea")
	}
}

func TestGenerate_ChannelInsights(t *testing.T) {
	channels := &fakeChannelSource{responses: map[string]*models.ChannelVideosResponse{
		"UCgood": {
			ChannelInfo: models.ChannelInfo{
				Title:      "Kitchen Lab",
				Statistics: models.ChannelStatistics{SubscriberCount: "250000"},
			},
			Videos: []models.TrendingVideo{
				{Title: "Knife skills", Stats: models.VideoStats{Views: "90000", Likes: "4000", Comments: "300"}, Tags: []string{"knives"}},
			},
		},
	}}
	gen := &fakeGenerator{assistantText: fullIdeaJSON}
	s, _ := newTestSynthesizer(t, &fakeTrendSource{}, channels, gen)

	_, err := s.Generate(context.Background(), models.IdeaRequest{
		Niche:             "cooking",
		ReferenceChannels: []string{"UCgood", "UCmissing"},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	for _, want := range []string{
		"Reference Channels Analysis:",
		"Channel 1: Kitchen Lab",
		"Subscribers: 250000",
		`1. "Knife skills"`,
		"Stats: 90000 views, 4000 likes, 300 comments",
	} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(gen.lastPrompt, "Channel 2:") {
		t.Error("failed channel should be skipped, not rendered")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{85, 85},
		{100, 100},
		{140, 100},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
