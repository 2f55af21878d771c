package trainer

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cariocaphil/blind-aria/internal/catalog"
	"github.com/cariocaphil/blind-aria/internal/takes"
)

// pickWork resolves the work for a create/change request: explicit id, or a
// random eligible pick when the id is empty.
func (s *Server) pickWork(w http.ResponseWriter, workID string) (*catalog.Work, bool) {
	if workID == "" {
		work := s.randomEligibleWork()
		if work == nil {
			writeError(w, http.StatusServiceUnavailable, "no eligible works in catalog")
			return nil, false
		}
		return work, true
	}

	work := s.cat.ByID(workID)
	if work == nil {
		writeError(w, http.StatusNotFound, "work not found")
		return nil, false
	}
	if !work.Eligible(catalog.MinTakes) {
		writeError(w, http.StatusUnprocessableEntity, "work does not have enough takes")
		return nil, false
	}
	return work, true
}

// handleCreateSession starts a shared listening session owned by the caller.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := currentUserID(r)
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var body struct {
		Title     string `json:"title"`
		WorkID    string `json:"workId"`
		TakeCount int    `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	title := strings.TrimSpace(body.Title)
	if title == "" {
		title = defaultSessionTitle
	}
	if len(title) > maxSessionTitleLen {
		writeError(w, http.StatusBadRequest, "title is too long")
		return
	}

	work, ok := s.pickWork(w, body.WorkID)
	if !ok {
		return
	}

	count := clampTakeCount(body.TakeCount)
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, 0)
	if len(draw) < minTakeCount {
		writeError(w, http.StatusUnprocessableEntity, "not enough takes in this work")
		return
	}

	sess, err := s.store.CreateSession(ctx, title, work.ID, draw, ownerID)
	if err != nil {
		log.Printf("trainer: create session: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "session.created",
		"payload": map[string]any{
			"sessionId": sess.ID,
		},
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"session":  sess,
		"work":     workView(work),
		"role":     roleOwner,
		"shareUrl": s.shareURL(sess.ID),
	})
}

// handleGetSession loads a session and enrolls the caller as a member if they
// are not one yet — visiting an invite link is joining.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := currentUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")

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

	if err := s.store.EnsureMember(ctx, sessionID, userID); err != nil {
		log.Printf("trainer: ensure member: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	role, err := s.store.GetMemberRole(ctx, sessionID, userID)
	if err != nil {
		log.Printf("trainer: get member role: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	work := s.cat.ByID(sess.WorkID)
	if work == nil {
		// catalog/session data mismatch, not recoverable by retrying
		log.Printf("trainer: session %s references unknown work %s", sess.ID, sess.WorkID)
		writeError(w, http.StatusInternalServerError, "session references a work missing from the catalog")
		return
	}

	canMutate := role == roleOwner || sess.OwnerID == userID

	writeJSON(w, http.StatusOK, map[string]any{
		"session":   sess,
		"work":      workView(work),
		"role":      role,
		"canMutate": canMutate,
		"shareUrl":  s.shareURL(sess.ID),
		"played":    s.played.Played(sess.ID, userID),
	})
}

// handleChangeWork replaces the session's work and draw. Owner only.
func (s *Server) handleChangeWork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := currentUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")

	var body struct {
		WorkID    string `json:"workId"`
		TakeCount int    `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
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

	owner, err := s.isOwner(ctx, sess, userID)
	if err != nil {
		log.Printf("trainer: owner check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !owner {
		writeError(w, http.StatusForbidden, "only the owner can change the aria")
		return
	}

	work, ok := s.pickWork(w, body.WorkID)
	if !ok {
		return
	}

	count := clampTakeCount(body.TakeCount)
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, 0)
	if len(draw) < minTakeCount {
		writeError(w, http.StatusUnprocessableEntity, "not enough takes in this work")
		return
	}

	if err := s.store.UpdateSessionWork(ctx, sessionID, work.ID, draw); err != nil {
		log.Printf("trainer: update session work: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.played.Clear(sessionID)

	sess.WorkID = work.ID
	sess.TakeIDs = draw
	sess.ShuffleGeneration = 0

	s.publishEvent(ctx, map[string]any{
		"type": "session.updated",
		"payload": map[string]any{
			"sessionId": sess.ID,
			"workId":    sess.WorkID,
			"takeIds":   sess.TakeIDs,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"work":    workView(work),
	})
}

// handleReshuffle redraws the takes of the current work. Owner only.
func (s *Server) handleReshuffle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := currentUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")

	var body struct {
		TakeCount int `json:"takeCount"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
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

	owner, err := s.isOwner(ctx, sess, userID)
	if err != nil {
		log.Printf("trainer: owner check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !owner {
		writeError(w, http.StatusForbidden, "only the owner can reshuffle takes")
		return
	}

	work := s.cat.ByID(sess.WorkID)
	if work == nil {
		log.Printf("trainer: session %s references unknown work %s", sess.ID, sess.WorkID)
		writeError(w, http.StatusInternalServerError, "session references a work missing from the catalog")
		return
	}

	count := body.TakeCount
	if count == 0 {
		count = len(sess.TakeIDs)
	}
	count = clampTakeCount(count)

	generation := sess.ShuffleGeneration + 1
	draw := takes.PickForWork(work.ID, work.TakeIDs(), count, generation)
	if len(draw) < minTakeCount {
		writeError(w, http.StatusUnprocessableEntity, "not enough takes in this work")
		return
	}

	if err := s.store.UpdateSessionTakes(ctx, sessionID, draw, generation); err != nil {
		log.Printf("trainer: update session takes: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.played.Clear(sessionID)

	sess.TakeIDs = draw
	sess.ShuffleGeneration = generation

	s.publishEvent(ctx, map[string]any{
		"type": "session.updated",
		"payload": map[string]any{
			"sessionId": sess.ID,
			"workId":    sess.WorkID,
			"takeIds":   sess.TakeIDs,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"work":    workView(work),
	})
}

// handleMarkPlayed records that the caller started playback of a take.
func (s *Server) handleMarkPlayed(w http.ResponseWriter, r *http.Request) {
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

	s.played.Mark(sessionID, userID, takeID)
	w.WriteHeader(http.StatusNoContent)
}
