package trainer

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSolo opens a solo round and returns its id plus the initial response.
func startSolo(t *testing.T, s *Server, body any) (string, map[string]any) {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/solo/", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	id, _ := resp["soloId"].(string)
	require.NotEmpty(t, id)
	return id, resp
}

func takeIDsOf(t *testing.T, resp map[string]any) []string {
	t.Helper()
	raw, ok := resp["takeIds"].([]any)
	require.True(t, ok, "takeIds missing in %v", resp)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(string))
	}
	return out
}

func TestSoloStart(t *testing.T) {
	s := newTestServer(&MockStore{})
	_, resp := startSolo(t, s, nil)

	work := resp["work"].(map[string]any)
	assert.Contains(t, []any{"w1", "w3"}, work["id"], "ineligible works must never be drawn")
	assert.Equal(t, float64(0), resp["generation"])

	ids := takeIDsOf(t, resp)
	assert.NotEmpty(t, ids)
	assert.LessOrEqual(t, len(ids), defaultTakeCount)
}

func TestSoloGetUnknown(t *testing.T) {
	s := newTestServer(&MockStore{})
	w := doJSON(t, s, http.MethodGet, "/solo/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSoloSetWork(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, _ := startSolo(t, s, nil)

	w := doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", map[string]any{
		"workId": "w3", "takeCount": 4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)

	work := resp["work"].(map[string]any)
	assert.Equal(t, "w3", work["id"])
	assert.Equal(t, float64(1), resp["generation"])
	assert.Len(t, takeIDsOf(t, resp), 4)
}

func TestSoloSetWorkErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode int
	}{
		{"missing work id", map[string]any{}, http.StatusBadRequest},
		{"unknown work", map[string]any{"workId": "ghost"}, http.StatusNotFound},
		{"too few takes", map[string]any{"workId": "w2"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&MockStore{})
			id, _ := startSolo(t, s, nil)
			w := doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestSoloReshuffleStaysWithinWork(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, _ := startSolo(t, s, nil)

	doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", map[string]any{"workId": "w3"})

	w := doJSON(t, s, http.MethodPost, "/solo/"+id+"/reshuffle", "", map[string]any{"takeCount": 6})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)

	work := resp["work"].(map[string]any)
	assert.Equal(t, "w3", work["id"], "reshuffling must not change the work")
	assert.Equal(t, float64(2), resp["generation"])
	for _, tid := range takeIDsOf(t, resp) {
		assert.Contains(t, []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"}, tid)
	}
	assert.Len(t, takeIDsOf(t, resp), 6)
}

func TestSoloPlayedResetOnWorkChange(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, resp := startSolo(t, s, nil)
	first := takeIDsOf(t, resp)[0]

	w := doJSON(t, s, http.MethodPost, fmt.Sprintf("/solo/%s/played/%s", id, first), "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/solo/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeResponse(t, w)["played"], first)

	// switching works wipes the markers for the target work
	doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", map[string]any{"workId": "w3"})
	w = doJSON(t, s, http.MethodGet, "/solo/"+id, "", nil)
	assert.Empty(t, decodeResponse(t, w)["played"])
}

func TestSoloMarkPlayedUnknownTake(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, _ := startSolo(t, s, nil)
	w := doJSON(t, s, http.MethodPost, "/solo/"+id+"/played/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSoloNotesSurviveWorkChange(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, _ := startSolo(t, s, nil)

	// draw the full pool so the take stays in every later redraw
	w := doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", map[string]any{"workId": "w3", "takeCount": 8})
	require.Equal(t, http.StatusOK, w.Code)
	first := takeIDsOf(t, decodeResponse(t, w))[0]

	w = doJSON(t, s, http.MethodPut, fmt.Sprintf("/solo/%s/notes/%s", id, first), "", map[string]any{
		"comment":    "breathtaking pianissimo",
		"impression": "Loved it",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// wander off to another work and back
	doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", map[string]any{"workId": "w1"})
	doJSON(t, s, http.MethodPost, "/solo/"+id+"/work", "", map[string]any{"workId": "w3", "takeCount": 8})

	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/solo/%s/notes/%s", id, first), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, true, resp["saved"])
	payload := resp["payload"].(map[string]any)
	assert.Equal(t, "breathtaking pianissimo", payload["comment"])
	assert.Equal(t, "Loved it", payload["impression"])
}

func TestSoloSaveNoteRejectsUnknownValue(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, resp := startSolo(t, s, nil)
	first := takeIDsOf(t, resp)[0]

	w := doJSON(t, s, http.MethodPut, fmt.Sprintf("/solo/%s/notes/%s", id, first), "", map[string]any{
		"transmission": "Blew my mind",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSoloGetNoteDefaults(t *testing.T) {
	s := newTestServer(&MockStore{})
	id, resp := startSolo(t, s, nil)
	first := takeIDsOf(t, resp)[0]

	w := doJSON(t, s, http.MethodGet, fmt.Sprintf("/solo/%s/notes/%s", id, first), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeResponse(t, w)
	assert.Equal(t, false, got["saved"])
	payload := got["payload"].(map[string]any)
	assert.Equal(t, "Unsure", payload["anchor"])
}
