package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkodama/tubemark/internal/display"
	"github.com/mkodama/tubemark/internal/domain"
	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/metrics"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/youtube"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

// newSeedReloader wires a reloader against an in-memory store and a
// provider stub counting requests.
func newSeedReloader(t *testing.T, seedPath string, gate chan struct{}) (*SeedReloader, *store.CollectionStore, *int64) {
	t.Helper()

	var requests int64
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		id := r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[{"id":%q,"snippet":{
			"publishedAt":"2009-10-25T06:57:33Z",
			"title":"Seeded %s",
			"description":"desc",
			"channelTitle":"Channel",
			"thumbnails":{"high":{"url":"https://i.ytimg.com/vi/%s/hq.jpg"}}
		},"statistics":{"viewCount":"10"}}]}`, id, id, id)
	}))
	t.Cleanup(provider.Close)

	log := logger.New("error", false)
	formatter := display.NewFormatter("zh-CN")
	collector := metrics.NewCollector(prometheus.NewRegistry())
	st := store.NewCollectionStore(store.NewMemorySlot(), formatter, log)
	gateway := youtube.NewClient(&http.Client{Timeout: 5 * time.Second}, "test-key", provider.URL, log, collector)

	sr := NewSeedReloader(seedPath, st, gateway, youtube.NewMapper(formatter), gate, log, time.Hour, nil)
	return sr, st, &requests
}

func TestSeedReloadAddsMissingVideos(t *testing.T) {
	path := writeSeedFile(t, `videos:
  - dQw4w9WgXcQ
  - https://youtu.be/jNQXAC9IVRw
`)
	gate := make(chan struct{}, 1)
	sr, st, requests := newSeedReloader(t, path, gate)

	// One of the seeded ids is already in the collection.
	if err := st.Add(context.Background(), &domain.VideoRecord{ID: "dQw4w9WgXcQ", Title: "present"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := sr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if st.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", st.Len())
	}
	if !st.Contains("jNQXAC9IVRw") {
		t.Error("missing seed video was not added")
	}
	if got := atomic.LoadInt64(requests); got != 1 {
		t.Errorf("provider requests = %d, want 1 (present id must be skipped)", got)
	}
	if len(gate) != 0 {
		t.Error("fetch gate was not released")
	}
}

func TestSeedReloadWaitsOnOccupiedFetchGate(t *testing.T) {
	path := writeSeedFile(t, "videos:\n  - dQw4w9WgXcQ\n")
	gate := make(chan struct{}, 1)
	sr, st, requests := newSeedReloader(t, path, gate)

	// Simulate an interactive add holding the gate for the whole pass.
	gate <- struct{}{}
	defer func() { <-gate }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := sr.Reload(ctx); err == nil {
		t.Fatal("Reload() should fail when the gate never frees before the deadline")
	}
	if got := atomic.LoadInt64(requests); got != 0 {
		t.Errorf("provider requests = %d, want 0 (no fetch may bypass the gate)", got)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}
