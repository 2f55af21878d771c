package trainer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cariocaphil/blind-aria/internal/oembed"
)

// handleMetadata serves the post-listening reveal for one take. A failed
// upstream lookup is not an error: the reveal simply shows "unavailable".
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "missing video id")
		return
	}

	meta, ok := s.meta.Lookup(r.Context(), videoID)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"available": false,
			"watchUrl":  oembed.WatchURL(videoID),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"available":    true,
		"title":        meta.Title,
		"authorName":   meta.AuthorName,
		"thumbnailUrl": meta.ThumbnailURL,
		"watchUrl":     oembed.WatchURL(videoID),
	})
}
