package trainer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cariocaphil/blind-aria/internal/catalog"
	"github.com/cariocaphil/blind-aria/internal/notes"
	"github.com/cariocaphil/blind-aria/internal/solo"
	"github.com/cariocaphil/blind-aria/internal/takes"
)

// Solo mode needs no login: state lives in this process only and dies with it.

func (s *Server) soloResponse(st *solo.State) map[string]any {
	workID, takeIDs, takeCount, generation := st.Snapshot()
	resp := map[string]any{
		"soloId":     st.ID,
		"takeIds":    takeIDs,
		"takeCount":  takeCount,
		"generation": generation,
		"played":     st.Played(workID),
	}
	if work := s.cat.ByID(workID); work != nil {
		resp["work"] = workView(work)
	}
	return resp
}

// handleSoloStart opens a solo round on a random eligible work.
func (s *Server) handleSoloStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TakeCount int `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	work := s.randomEligibleWork()
	if work == nil {
		writeError(w, http.StatusServiceUnavailable, "no eligible works in catalog")
		return
	}

	count := clampTakeCount(body.TakeCount)
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, 0)

	st := s.solo.Create()
	st.SetWork(work.ID, draw, count, 0)

	writeJSON(w, http.StatusCreated, s.soloResponse(st))
}

func (s *Server) soloState(w http.ResponseWriter, r *http.Request) (*solo.State, bool) {
	st, ok := s.solo.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "solo state not found")
		return nil, false
	}
	return st, true
}

func (s *Server) handleSoloGet(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.soloResponse(st))
}

// handleSoloRandomWork jumps to a new random aria.
func (s *Server) handleSoloRandomWork(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}

	var body struct {
		TakeCount int `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	work := s.randomEligibleWork()
	if work == nil {
		writeError(w, http.StatusServiceUnavailable, "no eligible works in catalog")
		return
	}

	_, _, prevCount, generation := st.Snapshot()
	count := body.TakeCount
	if count == 0 {
		count = prevCount
	}
	count = clampTakeCount(count)

	generation++
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, generation)
	st.SetWork(work.ID, draw, count, generation)

	writeJSON(w, http.StatusOK, s.soloResponse(st))
}

// handleSoloSetWork switches to a specific work (search-select flow).
func (s *Server) handleSoloSetWork(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}

	var body struct {
		WorkID    string `json:"workId"`
		TakeCount int    `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.WorkID == "" {
		writeError(w, http.StatusBadRequest, "missing workId")
		return
	}

	work := s.cat.ByID(body.WorkID)
	if work == nil {
		writeError(w, http.StatusNotFound, "work not found")
		return
	}
	if !work.Eligible(catalog.MinTakes) {
		writeError(w, http.StatusUnprocessableEntity, "work does not have enough takes")
		return
	}

	_, _, prevCount, generation := st.Snapshot()
	count := body.TakeCount
	if count == 0 {
		count = prevCount
	}
	count = clampTakeCount(count)

	generation++
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, generation)
	st.SetWork(work.ID, draw, count, generation)

	writeJSON(w, http.StatusOK, s.soloResponse(st))
}

// handleSoloReshuffle redraws takes for the current work.
func (s *Server) handleSoloReshuffle(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}

	var body struct {
		TakeCount int `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	workID, _, prevCount, generation := st.Snapshot()
	work := s.cat.ByID(workID)
	if work == nil {
		writeError(w, http.StatusInternalServerError, "solo state references a work missing from the catalog")
		return
	}

	count := body.TakeCount
	if count == 0 {
		count = prevCount
	}
	count = clampTakeCount(count)

	generation++
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, generation)
	st.SetTakes(draw, count, generation)

	writeJSON(w, http.StatusOK, s.soloResponse(st))
}

func (s *Server) handleSoloMarkPlayed(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}
	takeID := chi.URLParam(r, "takeId")
	if !st.HasTake(takeID) {
		writeError(w, http.StatusNotFound, "take is not part of the current draw")
		return
	}

	workID, _, _, _ := st.Snapshot()
	st.MarkPlayed(workID, takeID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSoloSaveNote(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}
	takeID := chi.URLParam(r, "takeId")
	if !st.HasTake(takeID) {
		writeError(w, http.StatusNotFound, "take is not part of the current draw")
		return
	}

	var payload notes.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workID, _, _, _ := st.Snapshot()
	st.SaveNote(workID, takeID, payload)

	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   true,
		"payload": payload,
	})
}

func (s *Server) handleSoloGetNote(w http.ResponseWriter, r *http.Request) {
	st, ok := s.soloState(w, r)
	if !ok {
		return
	}
	takeID := chi.URLParam(r, "takeId")
	if !st.HasTake(takeID) {
		writeError(w, http.StatusNotFound, "take is not part of the current draw")
		return
	}

	workID, _, _, _ := st.Snapshot()
	payload, saved := st.Note(workID, takeID)
	if !saved {
		payload = notes.Empty()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   saved,
		"payload": payload,
	})
}
