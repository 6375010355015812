package models

// ChannelStatistics holds channel-level counts as decimal strings.
type ChannelStatistics struct {
	ViewCount       string `json:"viewCount"`
	SubscriberCount string `json:"subscriberCount"`
	VideoCount      string `json:"videoCount"`
}

// ChannelInfo describes a YouTube channel.
type ChannelInfo struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CustomURL   string            `json:"customUrl,omitempty"`
	Statistics  ChannelStatistics `json:"statistics"`
}

// ChannelVideosResponse is the payload returned when listing a channel's
// recent uploads.
type ChannelVideosResponse struct {
	ChannelInfo ChannelInfo      `json:"channelInfo"`
	Videos      []TrendingVideo  `json:"videos"`
	Metadata    TrendingMetadata `json:"metadata"`
}

// ChannelSearchResult is a single hit from a channel name search.
type ChannelSearchResult struct {
	ChannelID   string `json:"channelId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
