package youtube

import (
	"errors"
	"strconv"

	"github.com/mkodama/tubemark/internal/display"
	"github.com/mkodama/tubemark/internal/domain"
)

var (
	// ErrMalformedItem means the provider item carries no snippet.
	ErrMalformedItem = errors.New("provider item has no snippet")

	// ErrMissingThumbnail means neither the high- nor the
	// default-resolution thumbnail is present.
	ErrMissingThumbnail = errors.New("provider item has no usable thumbnail")
)

// Mapper flattens provider items into domain.VideoRecord.
type Mapper struct {
	formatter *display.Formatter
}

// NewMapper creates a mapper rendering display snapshots with f.
func NewMapper(f *display.Formatter) *Mapper {
	return &Mapper{formatter: f}
}

// Record builds the VideoRecord for item, fetched under videoID.
// AddedAt is left empty: the collection store stamps it on insert.
func (m *Mapper) Record(item *VideoItem, videoID string) (*domain.VideoRecord, error) {
	if item == nil || item.Snippet == nil {
		return nil, ErrMalformedItem
	}
	sn := item.Snippet

	var thumbnail string
	switch {
	case sn.Thumbnails.High != nil && sn.Thumbnails.High.URL != "":
		thumbnail = sn.Thumbnails.High.URL
	case sn.Thumbnails.Default != nil && sn.Thumbnails.Default.URL != "":
		thumbnail = sn.Thumbnails.Default.URL
	default:
		return nil, ErrMissingThumbnail
	}

	// Absent or unparseable statistics count as zero views.
	var views int64
	if item.Statistics != nil && item.Statistics.ViewCount != "" {
		if n, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64); err == nil {
			views = n
		}
	}

	return &domain.VideoRecord{
		ID:           videoID,
		Title:        sn.Title,
		Description:  sn.Description,
		ChannelTitle: sn.ChannelTitle,
		Thumbnail:    thumbnail,
		PublishedAt:  m.formatter.Date(sn.PublishedAt),
		ViewCount:    m.formatter.GroupedInt(views),
	}, nil
}
