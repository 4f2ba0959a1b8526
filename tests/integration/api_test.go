package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkodama/tubemark/internal/display"
	"github.com/mkodama/tubemark/internal/domain"
	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/httpserver/routes"
	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/metrics"
	"github.com/mkodama/tubemark/internal/notify"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/youtube"
)

// newTestAPI wires the full route table against an in-memory slot and
// a stubbed metadata provider.
func newTestAPI(t *testing.T) (http.Handler, deps.Deps) {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[{"id":%q,"snippet":{
			"publishedAt":"2009-10-25T06:57:33Z",
			"title":"Video %s",
			"description":"desc",
			"channelTitle":"Channel",
			"thumbnails":{"high":{"url":"https://i.ytimg.com/vi/%s/hq.jpg"}}
		},"statistics":{"viewCount":"42000"}}]}`, id, id, id)
	}))
	t.Cleanup(provider.Close)

	log := logger.New("error", false)
	formatter := display.NewFormatter("zh-CN")
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	st := store.NewCollectionStore(store.NewMemorySlot(), formatter, log)
	gateway := youtube.NewClient(&http.Client{Timeout: 5 * time.Second}, "test-key", provider.URL, log, collector)

	d := deps.Deps{
		Logger:           log,
		StartTime:        time.Now(),
		TimeNow:          time.Now,
		Store:            st,
		Gateway:          gateway,
		VideoMapper:      youtube.NewMapper(formatter),
		Notices:          notify.NewCenter(time.Minute),
		Metrics:          collector,
		Gatherer:         registry,
		FetchGate:        make(chan struct{}, 1),
		RateBurst:        100,
		RateRefillPerMin: 100,
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	return r, d
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVideoLifecycle(t *testing.T) {
	api, d := newTestAPI(t)

	// Add two videos via different input shapes
	rec := doJSON(t, api, http.MethodPost, "/api/videos", map[string]string{
		"input": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add #1 status = %d (body: %s)", rec.Code, rec.Body)
	}
	rec = doJSON(t, api, http.MethodPost, "/api/videos", map[string]string{
		"input": "jNQXAC9IVRw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add #2 status = %d (body: %s)", rec.Code, rec.Body)
	}

	// Duplicate via another URL shape is rejected
	rec = doJSON(t, api, http.MethodPost, "/api/videos", map[string]string{
		"input": "https://youtu.be/dQw4w9WgXcQ",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate add status = %d, want %d", rec.Code, http.StatusConflict)
	}

	// List returns both, newest first
	rec = doJSON(t, api, http.MethodGet, "/api/videos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Videos []*domain.VideoRecord `json:"videos"`
		Count  int                   `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.Count != 2 {
		t.Fatalf("count = %d, want 2", list.Count)
	}
	if list.Videos[0].ID != "jNQXAC9IVRw" || list.Videos[1].ID != "dQw4w9WgXcQ" {
		t.Errorf("order = [%s, %s], want newest first", list.Videos[0].ID, list.Videos[1].ID)
	}
	if list.Videos[0].ViewCount != "42,000" {
		t.Errorf("viewCount = %q, want %q", list.Videos[0].ViewCount, "42,000")
	}

	// Attach a subtitle to the newest video
	rec = doJSON(t, api, http.MethodPut, "/api/videos/0/subtitle", map[string]string{
		"name":    "first.vtt",
		"content": "WEBVTT\n\n00:01.000 --> 00:02.000\nhi\n",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("attach status = %d (body: %s)", rec.Code, rec.Body)
	}

	// Download it back
	rec = doJSON(t, api, http.MethodGet, "/api/videos/0/subtitle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("WEBVTT")) {
		t.Errorf("downloaded content = %q", rec.Body.String())
	}

	// Remove the older video; subtitle on the newest survives
	rec = doJSON(t, api, http.MethodDelete, "/api/videos/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d (body: %s)", rec.Code, rec.Body)
	}
	if d.Store.Len() != 1 {
		t.Fatalf("store has %d videos, want 1", d.Store.Len())
	}
	remaining, _ := d.Store.At(0)
	if remaining.ID != "jNQXAC9IVRw" {
		t.Errorf("remaining ID = %q, want %q", remaining.ID, "jNQXAC9IVRw")
	}
	if remaining.Subtitle == nil || remaining.Subtitle.Name != "first.vtt" {
		t.Error("subtitle should survive removal of another video")
	}

	// Notices were produced along the way
	rec = doJSON(t, api, http.MethodGet, "/api/notices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("notices status = %d", rec.Code)
	}
	var notices struct {
		Notices []*notify.Notice `json:"notices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&notices); err != nil {
		t.Fatalf("failed to decode notices: %v", err)
	}
	if len(notices.Notices) == 0 {
		t.Error("expected at least one active notice")
	}
}

func TestYouTubeProxy(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/api/youtube?videoId=dQw4w9WgXcQ", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("proxy status = %d (body: %s)", rec.Code, rec.Body)
	}
	var item youtube.VideoItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	if item.ID != "dQw4w9WgXcQ" {
		t.Errorf("item.ID = %q", item.ID)
	}
	if item.Snippet == nil || item.Snippet.Title != "Video dQw4w9WgXcQ" {
		t.Errorf("unexpected snippet: %+v", item.Snippet)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/youtube", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing videoId status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/youtube?videoId=short", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid videoId status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	var health struct {
		Status string `json:"status"`
		Videos int    `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode healthz: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want %q", health.Status, "ok")
	}

	rec = doJSON(t, api, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("tubemark_collection_videos")) {
		t.Error("metrics output should contain the collection gauge")
	}
}

func TestSeedReloadNotConfigured(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/seed/reload", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("seed reload status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
