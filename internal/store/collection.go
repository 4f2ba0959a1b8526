// Package store owns the in-memory video collection and mirrors every
// mutation synchronously to a persisted slot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkodama/tubemark/internal/display"
	"github.com/mkodama/tubemark/internal/domain"
	"github.com/mkodama/tubemark/internal/logger"
)

var (
	// ErrDuplicateVideo is returned by Add for an id already present.
	ErrDuplicateVideo = errors.New("video already in collection")

	// ErrIndexOutOfRange marks an index-addressed operation outside
	// [0, len). The page only passes indices it just displayed, so
	// hitting this means a stale or buggy caller.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// CollectionStore is the exclusive owner of the ordered video
// collection. Records are kept newest-first; uniqueness is enforced on
// the video id. Every mutation re-serializes the whole collection into
// the slot before it is considered done; when the slot write fails the
// in-memory change is rolled back so memory and slot never diverge.
type CollectionStore struct {
	mu        sync.RWMutex
	videos    []*domain.VideoRecord
	slot      Slot
	formatter *display.Formatter
	logger    logger.Logger
	now       func() time.Time
}

// NewCollectionStore creates a store persisting into slot.
func NewCollectionStore(slot Slot, f *display.Formatter, log logger.Logger) *CollectionStore {
	return &CollectionStore{
		slot:      slot,
		formatter: f,
		logger:    log,
		now:       time.Now,
	}
}

// Load reads the slot once. A missing, unreadable or corrupt slot
// yields an empty collection; it is logged, never fatal.
func (s *CollectionStore) Load(ctx context.Context) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		s.logger.Warn("failed to read collection slot, starting empty",
			logger.Error(err))
		return
	}
	if len(data) == 0 {
		s.logger.Info("collection slot empty, starting fresh")
		return
	}

	var videos []*domain.VideoRecord
	if err := json.Unmarshal(data, &videos); err != nil {
		s.logger.Warn("collection slot is corrupt, starting empty",
			logger.Error(err))
		return
	}

	s.mu.Lock()
	s.videos = videos
	s.mu.Unlock()

	s.logger.Info("collection loaded",
		logger.Int("videos", len(videos)))
}

// Videos returns a snapshot of the collection, newest first. Records
// are deep copies: callers read and encode them outside the store's
// lock, so no pointer into the live collection may escape.
func (s *CollectionStore) Videos() []*domain.VideoRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.VideoRecord, len(s.videos))
	for i, v := range s.videos {
		out[i] = cloneRecord(v)
	}
	return out
}

// Len returns the number of videos in the collection.
func (s *CollectionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

// Contains reports whether a record with id is in the collection.
func (s *CollectionStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// At returns a deep copy of the record at index.
func (s *CollectionStore) At(index int) (*domain.VideoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.videos) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return cloneRecord(s.videos[index]), nil
}

// Add prepends record and persists. AddedAt is stamped here, never
// taken from provider data. A duplicate id fails without mutating
// anything.
func (s *CollectionStore) Add(ctx context.Context, record *domain.VideoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(record.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateVideo, record.ID)
	}

	record.AddedAt = s.formatter.DateTime(s.now())

	old := s.videos
	s.videos = append([]*domain.VideoRecord{record}, s.videos...)
	if err := s.persistLocked(ctx); err != nil {
		s.videos = old
		return err
	}

	s.logger.Info("video added to collection",
		logger.String("video_id", record.ID),
		logger.Int("videos", len(s.videos)))
	return nil
}

// RemoveAt removes the record at index and persists, returning the
// removed record.
func (s *CollectionStore) RemoveAt(ctx context.Context, index int) (*domain.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.videos) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	removed := s.videos[index]
	old := s.videos

	next := make([]*domain.VideoRecord, 0, len(old)-1)
	next = append(next, old[:index]...)
	next = append(next, old[index+1:]...)
	s.videos = next

	if err := s.persistLocked(ctx); err != nil {
		s.videos = old
		return nil, err
	}

	s.logger.Info("video removed from collection",
		logger.String("video_id", removed.ID),
		logger.Int("videos", len(s.videos)))
	return removed, nil
}

// AttachSubtitle replaces the subtitle at index and persists.
// UploadedAt is stamped here.
func (s *CollectionStore) AttachSubtitle(ctx context.Context, index int, sub *domain.SubtitleAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.videos) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	sub.UploadedAt = s.formatter.DateTime(s.now())

	prev := s.videos[index].Subtitle
	s.videos[index].Subtitle = sub
	if err := s.persistLocked(ctx); err != nil {
		s.videos[index].Subtitle = prev
		return err
	}

	s.logger.Info("subtitle attached",
		logger.String("video_id", s.videos[index].ID),
		logger.String("filename", sub.Name),
		logger.Int("size", sub.Size))
	return nil
}

// DetachSubtitle clears the subtitle at index and persists.
func (s *CollectionStore) DetachSubtitle(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.videos) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	prev := s.videos[index].Subtitle
	s.videos[index].Subtitle = nil
	if err := s.persistLocked(ctx); err != nil {
		s.videos[index].Subtitle = prev
		return err
	}

	s.logger.Info("subtitle detached",
		logger.String("video_id", s.videos[index].ID))
	return nil
}

// cloneRecord copies a record and its subtitle pointer so reads can
// proceed without holding the store lock.
func cloneRecord(v *domain.VideoRecord) *domain.VideoRecord {
	out := *v
	if v.Subtitle != nil {
		sub := *v.Subtitle
		out.Subtitle = &sub
	}
	return &out
}

func (s *CollectionStore) indexOf(id string) int {
	for i, v := range s.videos {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (s *CollectionStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.videos)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if err := s.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to persist collection: %w", err)
	}
	return nil
}
