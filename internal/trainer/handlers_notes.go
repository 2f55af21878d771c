package trainer

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cariocaphil/blind-aria/internal/notes"
)

// handleSaveNote stores the caller's questionnaire answers for one take of a
// shared session. A save always replaces the whole record.
func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := currentUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")
	takeID := chi.URLParam(r, "takeId")

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

	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Printf("trainer: get session: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if !sessionHasTake(sess, takeID) {
		writeError(w, http.StatusNotFound, "take is not part of this session")
		return
	}

	// a direct PUT from a holder of the invite link enrolls them, same as a visit
	if err := s.store.EnsureMember(ctx, sessionID, userID); err != nil {
		log.Printf("trainer: ensure member: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := s.store.UpsertNote(ctx, sessionID, userID, sess.WorkID, takeID, payload); err != nil {
		log.Printf("trainer: upsert note: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   true,
		"payload": payload,
	})
}

// handleGetNote returns the caller's saved answers for one take, or the
// defaults when nothing has been saved yet. Other members' notes are not
// reachable through any route.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := currentUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")
	takeID := chi.URLParam(r, "takeId")

	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Printf("trainer: get session: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if !sessionHasTake(sess, takeID) {
		writeError(w, http.StatusNotFound, "take is not part of this session")
		return
	}

	payload, saved, err := s.store.GetNote(ctx, sessionID, userID, sess.WorkID, takeID)
	if err != nil {
		log.Printf("trainer: get note: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !saved {
		payload = notes.Empty()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   saved,
		"payload": payload,
	})
}
