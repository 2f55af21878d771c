package trainer

import (
	"net/http"
	"strings"

	"github.com/cariocaphil/blind-aria/internal/catalog"
)

func workView(w *catalog.Work) WorkView {
	return WorkView{
		ID:        w.ID,
		Title:     w.Title,
		Composer:  w.Composer,
		Label:     w.Label(),
		TakeCount: len(w.TakeIDs()),
	}
}

// handleSearchWorks searches eligible works by title, composer or alias.
// An empty query returns an empty result set on purpose: pickers should not
// flood with the whole catalog.
func (s *Server) handleSearchWorks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if len(strings.TrimSpace(q)) > 200 {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	matches := s.cat.Search(q, catalog.MinTakes)
	views := make([]WorkView, 0, len(matches))
	for _, m := range matches {
		views = append(views, workView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"works": views,
	})
}

// handleRandomWork picks a random eligible work for the "random aria" flow.
func (s *Server) handleRandomWork(w http.ResponseWriter, r *http.Request) {
	work := s.randomEligibleWork()
	if work == nil {
		writeError(w, http.StatusServiceUnavailable, "no eligible works in catalog")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"work": workView(work),
	})
}
