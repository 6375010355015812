package models

import "time"

// VideoFormat describes how a generated idea should be produced.
type VideoFormat struct {
	Type   string   `json:"type"`
	Length string   `json:"length"`
	Hooks  []string `json:"hooks"`
}

// TrendAnalysis links a generated idea back to the trend data that shaped it.
type TrendAnalysis struct {
	RelevantThemes []string `json:"relevantThemes"`
	RelatedContent []string `json:"relatedContent"`
	SuggestedTags  []string `json:"suggestedTags"`
}

// VideoIdea is a generated content idea. IDs and timestamps are assigned
// server-side; values a model emits for them are discarded.
type VideoIdea struct {
	ID                    string        `json:"id"`
	Title                 string        `json:"title"`
	Concept               string        `json:"concept"`
	Hashtags              []string      `json:"hashtags"`
	ViralityScore         int           `json:"viralityScore"`
	ViralityJustification string        `json:"viralityJustification"`
	MonetizationStrategy  string        `json:"monetizationStrategy"`
	VideoFormat           VideoFormat   `json:"videoFormat"`
	Platform              string        `json:"platform"`
	ContentType           string        `json:"contentType"`
	CreatedAt             time.Time     `json:"createdAt"`
	TrendAnalysis         TrendAnalysis `json:"trendAnalysis"`
	Region                string        `json:"region"`
	ChannelInspirations   string        `json:"channelInspirations,omitempty"`
	UserID                string        `json:"userId,omitempty"`
	IsSaved               bool          `json:"isSaved,omitempty"`
}

// IdeaRequest is the client's input to idea generation.
type IdeaRequest struct {
	Niche             string   `json:"niche"`
	Platform          string   `json:"platform"`
	ContentType       string   `json:"contentType"`
	ViralityFactor    int      `json:"viralityFactor"`
	Keywords          string   `json:"keywords,omitempty"`
	Region            string   `json:"region,omitempty"`
	ReferenceChannels []string `json:"referenceChannels,omitempty"`
	Feedback          string   `json:"feedback,omitempty"`
	PreviousIdea      string   `json:"previousIdea,omitempty"`
}

// TrendSummary condenses a trending listing into themes a generation prompt
// can build on. All eight lists are required for a summary to be usable.
type TrendSummary struct {
	Themes             []string `json:"themes"`
	ContentTypes       []string `json:"contentTypes"`
	VideoFormats       []string `json:"videoFormats"`
	TrendingTopics     []string `json:"trendingTopics"`
	EngagementInsights []string `json:"engagementInsights"`
	TopCategories      []string `json:"topCategories"`
	TitlePatterns      []string `json:"titlePatterns"`
	PopularTags        []string `json:"popularTags"`
}
