package handlers

import (
	"net/http"

	"github.com/mkodama/tubemark/internal/domain"
	"github.com/mkodama/tubemark/internal/httpserver/deps"
)

// YouTubeProxy forwards a metadata lookup to the provider without
// touching the collection. The page uses it to preview a video before
// adding; the credential stays server-side.
func YouTubeProxy(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := r.URL.Query().Get("videoId")
		if videoID == "" {
			writeError(w, http.StatusBadRequest, "missing videoId parameter")
			return
		}
		if !domain.IsValidVideoID(videoID) {
			writeError(w, http.StatusBadRequest, "invalid video id format")
			return
		}

		item, err := d.Gateway.FetchVideo(r.Context(), videoID)
		if err != nil {
			status, msg := fetchErrorStatus(err)
			writeError(w, status, msg)
			return
		}
		if item.Snippet == nil {
			writeError(w, http.StatusNotFound, "video data unavailable")
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}
