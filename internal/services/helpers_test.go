package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/logging"
	"github.com/acuellar/cfdivault/internal/models"
	"github.com/acuellar/cfdivault/internal/store/remote"

	_ "modernc.org/sqlite"
)

// mapStore is an in-memory local.Store for tests.
type mapStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMapStore() *mapStore { return &mapStore{m: make(map[string]string)} }

func (s *mapStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", common.ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *mapStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// fakeRemote is a preset-driven remote.Client, safe for concurrent pushes.
type fakeRemote struct {
	mu sync.Mutex

	ProbeErr error

	Rows    []remote.InvoiceRow
	ListErr error

	UpsertErr error
	Upserts   []remote.InvoiceRow
	// when non-nil, UpsertInvoice blocks until the channel is closed
	UpsertGate chan struct{}

	DeleteErr error
	Deleted   []string

	Roster          string
	RosterErr       error
	RosterUpsertErr error
	RosterUpserts   []string
}

func (f *fakeRemote) Probe(ctx context.Context) error { return f.ProbeErr }

func (f *fakeRemote) ListInvoices(ctx context.Context, userID string) ([]remote.InvoiceRow, error) {
	return f.Rows, f.ListErr
}

func (f *fakeRemote) UpsertInvoice(ctx context.Context, row remote.InvoiceRow) error {
	if f.UpsertGate != nil {
		<-f.UpsertGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpsertErr != nil {
		return f.UpsertErr
	}
	f.Upserts = append(f.Upserts, row)
	return nil
}

func (f *fakeRemote) DeleteInvoice(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *fakeRemote) GetRoster(ctx context.Context) (string, error) {
	if f.RosterErr != nil {
		return "", f.RosterErr
	}
	if f.Roster == "" {
		return "", common.ErrNotFound
	}
	return f.Roster, nil
}

func (f *fakeRemote) UpsertRoster(ctx context.Context, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RosterUpsertErr != nil {
		return f.RosterUpsertErr
	}
	f.RosterUpserts = append(f.RosterUpserts, payload)
	return nil
}

func (f *fakeRemote) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Upserts)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testSession(role models.Role) *models.Session {
	return models.NewSession(models.User{
		ID:       "u1",
		Username: "ana",
		Password: "pw",
		Role:     role,
		Active:   true,
	})
}

func newSyncFixture(t *testing.T) (*SyncService, *mapStore, *fakeRemote, *models.Session) {
	t.Helper()
	store := newMapStore()
	rem := &fakeRemote{}
	svc := NewSyncService(store, rem, testLogger())
	sess := testSession(models.RoleAdmin)
	svc.Start(sess)
	return svc, store, rem, sess
}

func setupVaultDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}
