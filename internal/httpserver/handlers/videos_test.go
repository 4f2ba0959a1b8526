package handlers

import (
	"bytes"
	"context"
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
	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/metrics"
	"github.com/mkodama/tubemark/internal/notify"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/youtube"
)

// providerStub serves a canned videos.list response for any id.
func providerStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[{"id":%q,"snippet":{
			"publishedAt":"2009-10-25T06:57:33Z",
			"title":"Test Video",
			"description":"desc",
			"channelTitle":"Test Channel",
			"thumbnails":{"high":{"url":"https://i.ytimg.com/vi/%s/hq.jpg"}}
		},"statistics":{"viewCount":"1234567"}}]}`, id, id)
	}))
}

func testDeps(t *testing.T, endpoint string) deps.Deps {
	t.Helper()

	log := logger.New("error", false)
	formatter := display.NewFormatter("zh-CN")
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	st := store.NewCollectionStore(store.NewMemorySlot(), formatter, log)
	gateway := youtube.NewClient(&http.Client{Timeout: 5 * time.Second}, "test-key", endpoint, log, collector)

	return deps.Deps{
		Logger:      log,
		StartTime:   time.Now(),
		TimeNow:     time.Now,
		Store:       st,
		Gateway:     gateway,
		VideoMapper: youtube.NewMapper(formatter),
		Notices:     notify.NewCenter(time.Minute),
		Metrics:     collector,
		Gatherer:    registry,
		FetchGate:   make(chan struct{}, 1),
	}
}

func addVideo(t *testing.T, d deps.Deps, input string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"input": input})
	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	AddVideo(d)(rec, req)
	return rec
}

func TestAddVideo(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	rec := addVideo(t, d, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if rec.Code != http.StatusCreated {
		t.Fatalf("AddVideo status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body)
	}

	var record domain.VideoRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if record.ID != "dQw4w9WgXcQ" {
		t.Errorf("record.ID = %q, want %q", record.ID, "dQw4w9WgXcQ")
	}
	if record.Title != "Test Video" {
		t.Errorf("record.Title = %q, want %q", record.Title, "Test Video")
	}
	if record.ViewCount != "1,234,567" {
		t.Errorf("record.ViewCount = %q, want %q", record.ViewCount, "1,234,567")
	}
	if record.AddedAt == "" {
		t.Error("record.AddedAt should be stamped")
	}
	if d.Store.Len() != 1 {
		t.Errorf("store has %d videos, want 1", d.Store.Len())
	}
}

func TestAddVideoDuplicate(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	if rec := addVideo(t, d, "dQw4w9WgXcQ"); rec.Code != http.StatusCreated {
		t.Fatalf("first add status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if rec := addVideo(t, d, "https://youtu.be/dQw4w9WgXcQ"); rec.Code != http.StatusConflict {
		t.Errorf("duplicate add status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if d.Store.Len() != 1 {
		t.Errorf("store has %d videos, want 1", d.Store.Len())
	}
}

func TestAddVideoBadInput(t *testing.T) {
	d := testDeps(t, "http://unused.invalid")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not a video", "hello world"},
		{"too short id", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(d.Notices.Active())
			if rec := addVideo(t, d, tt.input); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			// Every add outcome surfaces as a transient notice.
			if after := len(d.Notices.Active()); after != before+1 {
				t.Errorf("active notices = %d, want %d", after, before+1)
			}
		})
	}
}

func TestAddVideoProviderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()
	d := testDeps(t, srv.URL)

	if rec := addVideo(t, d, "dQw4w9WgXcQ"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if d.Store.Len() != 0 {
		t.Errorf("store has %d videos, want 0", d.Store.Len())
	}
}

func TestAddVideoQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	d := testDeps(t, srv.URL)

	if rec := addVideo(t, d, "dQw4w9WgXcQ"); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAddVideoFetchGateBusy(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	// Occupy the gate as if another fetch were in flight.
	d.FetchGate <- struct{}{}
	defer func() { <-d.FetchGate }()

	if rec := addVideo(t, d, "dQw4w9WgXcQ"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestListVideos(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	addVideo(t, d, "dQw4w9WgXcQ")
	addVideo(t, d, "jNQXAC9IVRw")

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	ListVideos(d)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ListVideos status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp listVideosResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	// Newest first
	if resp.Videos[0].ID != "jNQXAC9IVRw" {
		t.Errorf("videos[0].ID = %q, want %q", resp.Videos[0].ID, "jNQXAC9IVRw")
	}
}

// indexRequest routes a request through chi so {index} resolves.
func indexRequest(t *testing.T, h http.HandlerFunc, method, path, pattern string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	r.ServeHTTP(rec, req)
	return rec
}

func TestRemoveVideo(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	addVideo(t, d, "dQw4w9WgXcQ")
	addVideo(t, d, "jNQXAC9IVRw")

	rec := indexRequest(t, RemoveVideo(d), http.MethodDelete, "/api/videos/0", "/api/videos/{index}", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("RemoveVideo status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp removeVideoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Removed != "jNQXAC9IVRw" {
		t.Errorf("removed = %q, want %q", resp.Removed, "jNQXAC9IVRw")
	}
	if d.Store.Len() != 1 {
		t.Errorf("store has %d videos, want 1", d.Store.Len())
	}
}

func TestRemoveVideoBadIndex(t *testing.T) {
	d := testDeps(t, "http://unused.invalid")

	tests := []struct {
		name string
		path string
	}{
		{"out of range", "/api/videos/5"},
		{"negative", "/api/videos/-1"},
		{"not a number", "/api/videos/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := indexRequest(t, RemoveVideo(d), http.MethodDelete, tt.path, "/api/videos/{index}", nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestSubtitleLifecycle(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	addVideo(t, d, "dQw4w9WgXcQ")

	body, _ := json.Marshal(map[string]string{
		"name":    "movie.srt",
		"content": "1\n00:00:01,000 --> 00:00:02,000\nhello\n",
	})
	rec := indexRequest(t, AttachSubtitle(d), http.MethodPut, "/api/videos/0/subtitle", "/api/videos/{index}/subtitle", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("AttachSubtitle status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	video, err := d.Store.At(0)
	if err != nil {
		t.Fatalf("At(0) error = %v", err)
	}
	if video.Subtitle == nil {
		t.Fatal("subtitle should be attached")
	}
	if video.Subtitle.Name != "movie.srt" {
		t.Errorf("subtitle name = %q, want %q", video.Subtitle.Name, "movie.srt")
	}
	if video.Subtitle.UploadedAt == "" {
		t.Error("subtitle UploadedAt should be stamped")
	}

	rec = indexRequest(t, DownloadSubtitle(d), http.MethodGet, "/api/videos/0/subtitle", "/api/videos/{index}/subtitle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DownloadSubtitle status = %d, want %d", rec.Code, http.StatusOK)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="movie.srt"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = indexRequest(t, DetachSubtitle(d), http.MethodDelete, "/api/videos/0/subtitle", "/api/videos/{index}/subtitle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DetachSubtitle status = %d, want %d", rec.Code, http.StatusOK)
	}

	video, _ = d.Store.At(0)
	if video.Subtitle != nil {
		t.Error("subtitle should be detached")
	}

	rec = indexRequest(t, DownloadSubtitle(d), http.MethodGet, "/api/videos/0/subtitle", "/api/videos/{index}/subtitle", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DownloadSubtitle after detach status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAttachSubtitleRejectsUnsupportedType(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()
	d := testDeps(t, srv.URL)

	addVideo(t, d, "dQw4w9WgXcQ")

	tests := []struct {
		name     string
		filename string
	}{
		{"executable", "evil.exe"},
		{"no extension", "subtitle"},
		{"empty name", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"name": tt.filename, "content": "x"})
			rec := indexRequest(t, AttachSubtitle(d), http.MethodPut, "/api/videos/0/subtitle", "/api/videos/{index}/subtitle", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestAddVideoPersistsAcrossReload(t *testing.T) {
	srv := providerStub(t)
	defer srv.Close()

	log := logger.New("error", false)
	formatter := display.NewFormatter("zh-CN")
	slot := store.NewMemorySlot()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	d := testDeps(t, srv.URL)
	d.Store = store.NewCollectionStore(slot, formatter, log)
	d.Gateway = youtube.NewClient(&http.Client{Timeout: 5 * time.Second}, "test-key", srv.URL, log, collector)

	addVideo(t, d, "dQw4w9WgXcQ")

	reloaded := store.NewCollectionStore(slot, formatter, log)
	reloaded.Load(context.Background())
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded store has %d videos, want 1", reloaded.Len())
	}
	if !reloaded.Contains("dQw4w9WgXcQ") {
		t.Error("reloaded store should contain the added video")
	}
}
