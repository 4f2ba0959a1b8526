package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mkodama/tubemark/internal/domain"
	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/notify"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/youtube"
)

// subtitleExtensions is the allowlist for attached subtitle filenames.
// Content is opaque either way; this only keeps obvious junk out.
var subtitleExtensions = map[string]bool{
	".srt": true,
	".vtt": true,
	".ass": true,
	".txt": true,
}

type listVideosResponse struct {
	Videos []*domain.VideoRecord `json:"videos"`
	Count  int                   `json:"count"`
}

// ListVideos returns the whole collection, newest first.
func ListVideos(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos := d.Store.Videos()
		writeJSON(w, http.StatusOK, listVideosResponse{
			Videos: videos,
			Count:  len(videos),
		})
	}
}

type addVideoRequest struct {
	Input string `json:"input"`
}

// AddVideo resolves the submitted URL or id, fetches metadata from the
// provider and prepends the record. Only one provider fetch runs at a
// time; a second concurrent add gets a 429 instead of queueing.
func AddVideo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			d.Notices.Push(notify.LevelError, "invalid request body")
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		videoID, err := domain.ExtractVideoID(req.Input)
		if err != nil {
			if errors.Is(err, domain.ErrMissingInput) {
				d.Notices.Push(notify.LevelError, "missing video url or id")
				writeError(w, http.StatusBadRequest, "missing video url or id")
				return
			}
			d.Notices.Push(notify.LevelError, "could not extract a video id from input")
			writeError(w, http.StatusBadRequest, "could not extract a video id from input")
			return
		}

		// Cheap pre-check before spending a provider call on a video
		// that is already in the collection.
		if d.Store.Contains(videoID) {
			d.Notices.Push(notify.LevelError, "video is already in the collection")
			writeError(w, http.StatusConflict, "video already in collection")
			return
		}

		select {
		case d.FetchGate <- struct{}{}:
			defer func() { <-d.FetchGate }()
		default:
			d.Notices.Push(notify.LevelError, "another fetch is in progress")
			writeError(w, http.StatusTooManyRequests, "another fetch is in progress")
			return
		}

		item, err := d.Gateway.FetchVideo(r.Context(), videoID)
		if err != nil {
			status, msg := fetchErrorStatus(err)
			d.Notices.Push(notify.LevelError, msg)
			writeError(w, status, msg)
			return
		}

		record, err := d.VideoMapper.Record(item, videoID)
		if err != nil {
			d.Logger.Error("failed to map provider item",
				logger.String("video_id", videoID),
				logger.Error(err))
			d.Notices.Push(notify.LevelError, "video data unavailable")
			writeError(w, http.StatusInternalServerError, "video data unavailable")
			return
		}

		if err := d.Store.Add(r.Context(), record); err != nil {
			if errors.Is(err, store.ErrDuplicateVideo) {
				d.Notices.Push(notify.LevelError, "video is already in the collection")
				writeError(w, http.StatusConflict, "video already in collection")
				return
			}
			d.Logger.Error("failed to persist collection",
				logger.String("video_id", videoID),
				logger.Error(err))
			d.Notices.Push(notify.LevelError, "failed to save video")
			writeError(w, http.StatusInternalServerError, "failed to save video")
			return
		}

		d.Metrics.SetCollectionSize(d.Store.Len())
		d.Notices.Push(notify.LevelSuccess, fmt.Sprintf("added %q", record.Title))
		writeJSON(w, http.StatusCreated, record)
	}
}

type removeVideoResponse struct {
	Removed string `json:"removed"`
}

// RemoveVideo deletes the record at the path index.
func RemoveVideo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathIndex(w, r)
		if !ok {
			return
		}

		removed, err := d.Store.RemoveAt(r.Context(), index)
		if err != nil {
			if errors.Is(err, store.ErrIndexOutOfRange) {
				writeError(w, http.StatusBadRequest, "index out of range")
				return
			}
			d.Logger.Error("failed to persist collection", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save collection")
			return
		}

		d.Metrics.SetCollectionSize(d.Store.Len())
		d.Notices.Push(notify.LevelSuccess, fmt.Sprintf("removed %q", removed.Title))
		writeJSON(w, http.StatusOK, removeVideoResponse{Removed: removed.ID})
	}
}

type attachSubtitleRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// AttachSubtitle stores a subtitle file alongside the video at the
// path index, replacing any previous one.
func AttachSubtitle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathIndex(w, r)
		if !ok {
			return
		}

		var req attachSubtitleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "missing subtitle filename")
			return
		}
		if !subtitleExtensions[strings.ToLower(filepath.Ext(req.Name))] {
			writeError(w, http.StatusBadRequest, "unsupported subtitle type")
			return
		}

		sub := &domain.SubtitleAttachment{
			Name:    req.Name,
			Size:    len(req.Content),
			Content: req.Content,
		}

		if err := d.Store.AttachSubtitle(r.Context(), index, sub); err != nil {
			if errors.Is(err, store.ErrIndexOutOfRange) {
				writeError(w, http.StatusBadRequest, "index out of range")
				return
			}
			d.Logger.Error("failed to persist collection", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save subtitle")
			return
		}

		d.Metrics.RecordSubtitleOp("attach")
		d.Notices.Push(notify.LevelSuccess, fmt.Sprintf("subtitle %q attached", req.Name))
		writeJSON(w, http.StatusOK, sub)
	}
}

// DetachSubtitle removes the subtitle from the video at the path index.
func DetachSubtitle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathIndex(w, r)
		if !ok {
			return
		}

		if err := d.Store.DetachSubtitle(r.Context(), index); err != nil {
			if errors.Is(err, store.ErrIndexOutOfRange) {
				writeError(w, http.StatusBadRequest, "index out of range")
				return
			}
			d.Logger.Error("failed to persist collection", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save collection")
			return
		}

		d.Metrics.RecordSubtitleOp("detach")
		d.Notices.Push(notify.LevelSuccess, "subtitle removed")
		writeJSON(w, http.StatusOK, map[string]bool{"detached": true})
	}
}

// DownloadSubtitle serves the stored subtitle content back as a file.
func DownloadSubtitle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := pathIndex(w, r)
		if !ok {
			return
		}

		video, err := d.Store.At(index)
		if err != nil {
			writeError(w, http.StatusBadRequest, "index out of range")
			return
		}
		if video.Subtitle == nil {
			writeError(w, http.StatusNotFound, "no subtitle attached")
			return
		}

		d.Metrics.RecordSubtitleOp("download")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", video.Subtitle.Name))
		_, _ = w.Write([]byte(video.Subtitle.Content))
	}
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return index, true
}

func fetchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, youtube.ErrInvalidVideoID):
		return http.StatusBadRequest, "invalid video id format"
	case errors.Is(err, youtube.ErrUnconfigured):
		return http.StatusInternalServerError, "metadata provider is not configured"
	case errors.Is(err, youtube.ErrQuotaExceeded):
		return http.StatusForbidden, "provider quota exceeded or key rejected"
	case errors.Is(err, youtube.ErrNotFound):
		return http.StatusNotFound, "video not found"
	default:
		return http.StatusInternalServerError, "failed to fetch video metadata"
	}
}
