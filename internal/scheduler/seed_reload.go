package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/sources/seedfile"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/youtube"
)

// SeedReloader handles periodic loading of the seed file: every listed
// video that is not yet in the collection gets fetched and added. Seed
// fetches share the fetch gate with the add endpoint, so at most one
// provider fetch is in flight process-wide.
type SeedReloader struct {
	loader        *seedfile.Loader
	mapper        *seedfile.Mapper
	store         *store.CollectionStore
	gateway       *youtube.Client
	videoMapper   *youtube.Mapper
	fetchGate     chan struct{}
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedReloader creates a new seed reloader.
func NewSeedReloader(
	seedFile string,
	st *store.CollectionStore,
	gateway *youtube.Client,
	videoMapper *youtube.Mapper,
	fetchGate chan struct{},
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seedfile.NewLoader(seedFile),
		mapper:        seedfile.NewMapper(),
		store:         st,
		gateway:       gateway,
		videoMapper:   videoMapper,
		fetchGate:     fetchGate,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process.
func (sr *SeedReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	// Start periodic reload
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload loads the seed file and fetches any listed video missing from
// the collection. Per-video failures are logged and skipped; the pass
// itself only fails when the file cannot be loaded or parsed.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("reloading videos from seed file")

	config, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	ids, err := sr.mapper.IDs(config)
	if err != nil {
		return fmt.Errorf("failed to map seed entries: %w", err)
	}

	added, skipped, failed := 0, 0, 0
	for _, id := range ids {
		if sr.store.Contains(id) {
			skipped++
			continue
		}

		item, err := sr.fetchVideo(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("seed reload interrupted: %w", ctx.Err())
			}
			sr.logger.Warn("failed to fetch seed video",
				logger.String("video_id", id),
				logger.Error(err))
			failed++
			continue
		}

		record, err := sr.videoMapper.Record(item, id)
		if err != nil {
			sr.logger.Warn("failed to map seed video",
				logger.String("video_id", id),
				logger.Error(err))
			failed++
			continue
		}

		if err := sr.store.Add(ctx, record); err != nil {
			sr.logger.Warn("failed to add seed video",
				logger.String("video_id", id),
				logger.Error(err))
			failed++
			continue
		}
		added++
	}

	sr.logger.Info("seed reload completed",
		logger.Int("added", added),
		logger.Int("skipped", skipped),
		logger.Int("failed", failed))

	return nil
}

// fetchVideo acquires the fetch gate before calling the provider,
// waiting if an interactive add currently holds it.
func (sr *SeedReloader) fetchVideo(ctx context.Context, id string) (*youtube.VideoItem, error) {
	select {
	case sr.fetchGate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-sr.fetchGate }()

	return sr.gateway.FetchVideo(ctx, id)
}
