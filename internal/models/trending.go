package models

// VideoStats holds per-video engagement counts. Values are decimal strings
// as returned by the YouTube Data API.
type VideoStats struct {
	Views    string `json:"views"`
	Likes    string `json:"likes"`
	Comments string `json:"comments"`
}

// AuthorStats holds channel-level counts for a video's uploader.
type AuthorStats struct {
	Subscribers string `json:"subscribers"`
	TotalViews  string `json:"totalViews"`
}

// TrendingVideo is a single video in a trending or channel listing.
type TrendingVideo struct {
	Title         string      `json:"title"`
	Views         string      `json:"views"`
	Author        string      `json:"author"`
	AuthorStats   AuthorStats `json:"authorStats"`
	Description   string      `json:"description"`
	VideoID       string      `json:"videoId"`
	PublishedText string      `json:"publishedText"`
	Stats         VideoStats  `json:"stats"`
	Tags          []string    `json:"tags"`
	Category      string      `json:"category"`
}

// TrendingMetadata describes how a listing was produced.
type TrendingMetadata struct {
	FetchedAt    string `json:"fetchedAt"`
	Region       string `json:"region"`
	TotalFetched int    `json:"totalFetched"`
	Source       string `json:"source"`
}

// TrendingResponse is the payload returned by the trending endpoints.
type TrendingResponse struct {
	Videos   []TrendingVideo  `json:"videos"`
	Metadata TrendingMetadata `json:"metadata"`
}
