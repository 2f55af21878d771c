package trainer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/cariocaphil/blind-aria/internal/notes"
)

// MockStore implements Store for handler tests.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSession(ctx context.Context, title, workID string, takeIDs []string, ownerID string) (Session, error) {
	args := m.Called(ctx, title, workID, takeIDs, ownerID)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockStore) GetSession(ctx context.Context, id string) (Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockStore) UpdateSessionWork(ctx context.Context, id, workID string, takeIDs []string) error {
	args := m.Called(ctx, id, workID, takeIDs)
	return args.Error(0)
}

func (m *MockStore) UpdateSessionTakes(ctx context.Context, id string, takeIDs []string, generation uint64) error {
	args := m.Called(ctx, id, takeIDs, generation)
	return args.Error(0)
}

func (m *MockStore) EnsureMember(ctx context.Context, sessionID, userID string) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *MockStore) GetMemberRole(ctx context.Context, sessionID, userID string) (string, error) {
	args := m.Called(ctx, sessionID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UpsertNote(ctx context.Context, sessionID, userID, workID, takeID string, payload notes.Payload) error {
	args := m.Called(ctx, sessionID, userID, workID, takeID, payload)
	return args.Error(0)
}

func (m *MockStore) GetNote(ctx context.Context, sessionID, userID, workID, takeID string) (notes.Payload, bool, error) {
	args := m.Called(ctx, sessionID, userID, workID, takeID)
	return args.Get(0).(notes.Payload), args.Bool(1), args.Error(2)
}

// MockDB implements the DB interface for store tests.
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return nil, nil
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

func (m *MockDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if m.BeginTxFunc != nil {
		return m.BeginTxFunc(ctx, txOptions)
	}
	return &MockTx{}, nil
}

// MockRow implements pgx.Row.
type MockRow struct {
	ScanFunc func(dest ...any) error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.ScanFunc != nil {
		return m.ScanFunc(dest...)
	}
	return nil
}

// MockTx implements pgx.Tx.
type MockTx struct {
	pgx.Tx // embed to satisfy the interface; unstubbed methods panic

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *MockTx) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}
