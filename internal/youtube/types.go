package youtube

import "time"

// Wire types for the provider's videos.list response with
// part=snippet,statistics. Items are relayed verbatim by the proxy
// endpoint, so the field set mirrors what the provider sends.

// ListResponse is the top-level videos.list envelope.
type ListResponse struct {
	Items []VideoItem `json:"items"`
}

// VideoItem is one video resource. Snippet can be missing: the
// provider sometimes returns an item shell with no usable data.
type VideoItem struct {
	ID         string      `json:"id"`
	Snippet    *Snippet    `json:"snippet,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

type Snippet struct {
	PublishedAt  time.Time  `json:"publishedAt"`
	ChannelID    string     `json:"channelId,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelTitle string     `json:"channelTitle"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Statistics counters arrive as decimal strings.
type Statistics struct {
	ViewCount    string `json:"viewCount,omitempty"`
	LikeCount    string `json:"likeCount,omitempty"`
	CommentCount string `json:"commentCount,omitempty"`
}
