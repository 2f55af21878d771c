package trainer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cariocaphil/blind-aria/internal/notes"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

// Store is the data-access contract for shared sessions, memberships and
// per-user notes. It carries no business rules: owner gating happens in the
// handlers, not here.
type Store interface {
	// CreateSession inserts the session row and the owner membership row in
	// one transaction, so a reader can never observe a session without an
	// owner member.
	CreateSession(ctx context.Context, title, workID string, takeIDs []string, ownerID string) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSessionWork(ctx context.Context, id, workID string, takeIDs []string) error
	UpdateSessionTakes(ctx context.Context, id string, takeIDs []string, generation uint64) error

	// EnsureMember enrolls the user as a plain member unless a membership row
	// already exists; it never touches an existing owner row.
	EnsureMember(ctx context.Context, sessionID, userID string) error
	// GetMemberRole returns "" when the user is not a member.
	GetMemberRole(ctx context.Context, sessionID, userID string) (string, error)

	UpsertNote(ctx context.Context, sessionID, userID, workID, takeID string, payload notes.Payload) error
	GetNote(ctx context.Context, sessionID, userID, workID, takeID string) (notes.Payload, bool, error)
}

// DB is the subset of *pgxpool.Pool the store uses; tests substitute mocks.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type pgStore struct {
	db DB
}

// NewStore wraps a pgx pool (or compatible DB) in the session store.
func NewStore(db DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) CreateSession(ctx context.Context, title, workID string, takeIDs []string, ownerID string) (Session, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Session{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var sess Session
	err = tx.QueryRow(ctx, `
		INSERT INTO game_sessions (title, work_id, take_ids, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, work_id, take_ids, owner_id, shuffle_generation, created_at
	`, title, workID, takeIDs, ownerID).Scan(
		&sess.ID,
		&sess.Title,
		&sess.WorkID,
		&sess.TakeIDs,
		&sess.OwnerID,
		&sess.ShuffleGeneration,
		&sess.CreatedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO session_members (session_id, user_id, role)
		VALUES ($1, $2, $3)
	`, sess.ID, ownerID, roleOwner)
	if err != nil {
		return Session{}, fmt.Errorf("insert owner member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, fmt.Errorf("commit: %w", err)
	}
	return sess, nil
}

func (s *pgStore) GetSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRow(ctx, `
		SELECT id, title, work_id, take_ids, owner_id, shuffle_generation, created_at
		FROM game_sessions
		WHERE id = $1
	`, id).Scan(
		&sess.ID,
		&sess.Title,
		&sess.WorkID,
		&sess.TakeIDs,
		&sess.OwnerID,
		&sess.ShuffleGeneration,
		&sess.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *pgStore) UpdateSessionWork(ctx context.Context, id, workID string, takeIDs []string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE game_sessions
		SET work_id = $2,
			take_ids = $3,
			shuffle_generation = 0
		WHERE id = $1
	`, id, workID, takeIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) UpdateSessionTakes(ctx context.Context, id string, takeIDs []string, generation uint64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE game_sessions
		SET take_ids = $2,
			shuffle_generation = $3
		WHERE id = $1
	`, id, takeIDs, generation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) EnsureMember(ctx context.Context, sessionID, userID string) error {
	// ON CONFLICT DO NOTHING keeps the call idempotent and guarantees an
	// existing owner row is never downgraded.
	_, err := s.db.Exec(ctx, `
		INSERT INTO session_members (session_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`, sessionID, userID, roleMember)
	return err
}

func (s *pgStore) GetMemberRole(ctx context.Context, sessionID, userID string) (string, error) {
	var role string
	err := s.db.QueryRow(ctx, `
		SELECT role
		FROM session_members
		WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (s *pgStore) UpsertNote(ctx context.Context, sessionID, userID, workID, takeID string, payload notes.Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO session_notes (session_id, user_id, work_id, take_id, payload)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (session_id, user_id, work_id, take_id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, sessionID, userID, workID, takeID, string(raw))
	return err
}

func (s *pgStore) GetNote(ctx context.Context, sessionID, userID, workID, takeID string) (notes.Payload, bool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT payload
		FROM session_notes
		WHERE session_id = $1 AND user_id = $2 AND work_id = $3 AND take_id = $4
	`, sessionID, userID, workID, takeID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return notes.Payload{}, false, nil
	}
	if err != nil {
		return notes.Payload{}, false, err
	}

	var p notes.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return notes.Payload{}, false, fmt.Errorf("decode payload: %w", err)
	}
	p.Normalize()
	return p, true, nil
}
