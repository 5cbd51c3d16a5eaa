package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock TxStarter / Tx ---

type mockTxStarter struct {
	mockDBTX
}

func (m *mockTxStarter) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.(pgx.Tx), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockTx overrides the methods the repositories use; the embedded interface
// covers the rest of pgx.Tx.
type mockTx struct {
	mock.Mock
	pgx.Tx
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Mock Row / Rows ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// fakeRows plays back a sequence of scan functions; the embedded interface
// covers the pgx.Rows methods the repositories never call.
type fakeRows struct {
	pgx.Rows
	scanFns []func(dest ...any) error
	idx     int
	err     error
}

func (r *fakeRows) Next() bool {
	return r.idx < len(r.scanFns)
}

func (r *fakeRows) Scan(dest ...any) error {
	fn := r.scanFns[r.idx]
	r.idx++
	return fn(dest...)
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     {}

// --- Helper tests ---

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(pgx.ErrNoRows))
	assert.False(t, isUniqueViolation(nil))
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, nilIfEmpty(""))
	got := nilIfEmpty("JP")
	assert.NotNil(t, got)
	assert.Equal(t, "JP", *got)
}
