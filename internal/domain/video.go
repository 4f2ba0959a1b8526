package domain

// VideoRecord is one bookmarked video.
//
// It is the flat shape the rest of the system works with; the
// provider's nested response is mapped into it exactly once, at add
// time. Display fields (PublishedAt, ViewCount, AddedAt) are
// locale-baked snapshots: they are formatted when the record is built
// and stored as-is, never re-derived on render.
//
// A VideoRecord is uniquely identified by its ID within the collection.
type VideoRecord struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical 11-character video identifier.
	ID string `json:"id"`

	// ─────────────────────────────
	// Provider metadata (opaque display strings)
	// ─────────────────────────────

	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`

	// Thumbnail is the high-resolution variant when the provider has
	// one, otherwise the default-resolution variant.
	Thumbnail string `json:"thumbnail"`

	// PublishedAt is the provider's publish timestamp rendered in the
	// display locale at add time.
	PublishedAt string `json:"publishedAt"`

	// ViewCount is the provider's view count rendered with locale
	// digit grouping at add time.
	ViewCount string `json:"viewCount"`

	// ─────────────────────────────
	// Collection metadata
	// ─────────────────────────────

	// AddedAt is stamped by the collection store on insert,
	// never copied from provider data.
	AddedAt string `json:"addedAt"`

	// Subtitle is the optional attached subtitle file, nil when absent.
	Subtitle *SubtitleAttachment `json:"subtitle"`
}

// SubtitleAttachment is one user-supplied subtitle file. The content
// is opaque text: it is stored and handed back verbatim, never parsed.
type SubtitleAttachment struct {
	// Name is the original filename, used as the suggested download
	// filename.
	Name string `json:"name"`

	// Size is the byte length of Content.
	Size int `json:"size"`

	// Content is the raw decoded text.
	Content string `json:"content"`

	// UploadedAt is stamped by the collection store on attach.
	UploadedAt string `json:"uploadedAt"`
}

// WatchURLPrefix is the canonical watch page prefix.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// WatchURL returns the external watch page URL for the record.
func (v *VideoRecord) WatchURL() string {
	return WatchURLPrefix + v.ID
}
