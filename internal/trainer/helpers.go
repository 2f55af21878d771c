package trainer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

// decodeBody decodes an optional JSON body. An empty body leaves v zeroed so
// every field falls back to its default.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// currentUserID returns the authenticated user id injected by the jwt
// middleware, or "".
func currentUserID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

// publishEvent notifies the realtime hub through redis, best-effort.
func (s *Server) publishEvent(ctx context.Context, event map[string]any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("trainer: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("trainer: publish event: %v", err)
	}
}

// isOwner decides whether userID may mutate the session. The membership role
// row is the authoritative source; the denormalized owner_id on the session
// row is accepted as a fallback so sessions created before a member row
// existed still obey their creator.
func (s *Server) isOwner(ctx context.Context, sess Session, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	role, err := s.store.GetMemberRole(ctx, sess.ID, userID)
	if err != nil {
		return false, err
	}
	return role == roleOwner || sess.OwnerID == userID, nil
}

// sessionHasTake reports whether takeID belongs to the session's current draw.
func sessionHasTake(sess Session, takeID string) bool {
	for _, id := range sess.TakeIDs {
		if id == takeID {
			return true
		}
	}
	return false
}

// shareURL builds the invite link carried by session responses.
func (s *Server) shareURL(sessionID string) string {
	if s.frontendBaseURL == "" {
		return "?session=" + sessionID
	}
	return s.frontendBaseURL + "/?session=" + sessionID
}

// playedTracker remembers which takes a user has started playback for in a
// party session. Purely presentational, process-local, cleared whenever the
// session's work or draw changes.
type playedTracker struct {
	mu sync.Mutex
	// session id -> user id -> take id set
	bySession map[string]map[string]map[string]bool
}

func newPlayedTracker() *playedTracker {
	return &playedTracker{bySession: make(map[string]map[string]map[string]bool)}
}

func (t *playedTracker) Mark(sessionID, userID, takeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.bySession[sessionID]
	if !ok {
		users = make(map[string]map[string]bool)
		t.bySession[sessionID] = users
	}
	set, ok := users[userID]
	if !ok {
		set = make(map[string]bool)
		users[userID] = set
	}
	set[takeID] = true
}

func (t *playedTracker) Played(sessionID, userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []string{}
	for id := range t.bySession[sessionID][userID] {
		out = append(out, id)
	}
	return out
}

// Clear drops the markers of every member of the session.
func (t *playedTracker) Clear(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bySession, sessionID)
}
