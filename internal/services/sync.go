// Package services contains the application services of the vault: the sync
// coordinator that reconciles collections across the local and remote
// stores, authentication, and dashboard metrics.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/cryptox"
	"github.com/acuellar/cfdivault/internal/logging"
	"github.com/acuellar/cfdivault/internal/models"
	"github.com/acuellar/cfdivault/internal/store/local"
	"github.com/acuellar/cfdivault/internal/store/remote"
)

// CollectionState tracks the per-collection load lifecycle.
type CollectionState int

const (
	StateUninitialized CollectionState = iota
	StateLoading
	StateReady
)

// SyncService owns the in-memory invoice and user collections for the
// lifetime of one session and reconciles them across the two stores.
//
// Load is remote-first with local fallback and corruption recovery; Save
// writes the local blob unconditionally and pushes unsynced records to the
// remote best-effort. Apart from seal failures during Save, operations
// return usable (possibly empty) results instead of errors; recoveries are
// logged, not raised.
type SyncService struct {
	local  local.Store
	remote remote.Client
	log    logging.Logger

	mu       sync.Mutex
	sess     *models.Session
	invoices []models.Invoice
	users    []models.User
	invState CollectionState
	usrState CollectionState

	// pushes tracks deferred remote writes so tests can wait for them.
	pushes sync.WaitGroup
}

func NewSyncService(localStore local.Store, remoteClient remote.Client, log logging.Logger) *SyncService {
	return &SyncService{local: localStore, remote: remoteClient, log: log}
}

// Start binds the coordinator to a fresh session. Both collections are
// rebuilt from scratch on the next load.
func (s *SyncService) Start(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
	s.invoices = nil
	s.users = nil
	s.invState = StateUninitialized
	s.usrState = StateUninitialized
}

// Stop abandons the session's collections. In-flight pushes finish on their
// own and discard their results once they notice the session is closed.
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	s.invoices = nil
	s.users = nil
	s.invState = StateUninitialized
	s.usrState = StateUninitialized
}

// Invoices returns a copy of the current in-memory invoice collection.
func (s *SyncService) Invoices() []models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Invoice, len(s.invoices))
	copy(out, s.invoices)
	return out
}

// Users returns a copy of the current in-memory roster.
func (s *SyncService) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// Wait blocks until all deferred remote pushes have finished.
func (s *SyncService) Wait() { s.pushes.Wait() }

// replaceCollections swaps in rebuilt collections for a live session.
// Used after re-keying, where both blobs were rewritten wholesale.
func (s *SyncService) replaceCollections(sess *models.Session, invoices []models.Invoice, users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sameSession(sess) {
		return
	}
	s.invoices = invoices
	s.users = users
	s.invState = StateReady
	s.usrState = StateReady
}

func (s *SyncService) reachable(ctx context.Context) bool {
	if err := s.remote.Probe(ctx); err != nil {
		s.log.Warn(ctx, "remote store unreachable, running local-only", "err", err)
		return false
	}
	return true
}

// sameSession reports whether sess is still the coordinator's live session.
func (s *SyncService) sameSession(sess *models.Session) bool {
	return !sess.Closed() && s.sess != nil && s.sess.ID == sess.ID
}

// LoadInvoices loads the invoice collection for sess: remote-first, local
// fallback, corrupt local blob purged. Records obtained remotely are marked
// synced; local-origin records are not and, when the remote is reachable,
// are pushed to it in a deferred best-effort pass. Once the collection is
// Ready subsequent calls return it unchanged.
func (s *SyncService) LoadInvoices(ctx context.Context, sess *models.Session) []models.Invoice {
	s.mu.Lock()
	if !s.sameSession(sess) {
		s.mu.Unlock()
		s.log.Warn(ctx, "load ignored for dead session")
		return nil
	}
	if s.invState == StateReady {
		out := make([]models.Invoice, len(s.invoices))
		copy(out, s.invoices)
		s.mu.Unlock()
		return out
	}
	s.invState = StateLoading
	s.mu.Unlock()

	reachable := s.reachable(ctx)
	pass := sess.Passphrase()

	var loaded []models.Invoice
	fromLocal := false

	if reachable {
		loaded = s.loadRemoteInvoices(ctx, sess.User.ID, pass)
	}

	if len(loaded) == 0 {
		loaded = s.loadLocalInvoices(ctx, pass)
		fromLocal = len(loaded) > 0
	}

	for i := range loaded {
		synced := loaded[i].Synced
		loaded[i] = models.NormalizeInvoice(loaded[i])
		loaded[i].Synced = synced
	}

	s.mu.Lock()
	if !s.sameSession(sess) {
		s.mu.Unlock()
		return nil
	}
	s.invoices = loaded
	s.invState = StateReady
	out := make([]models.Invoice, len(loaded))
	copy(out, loaded)
	s.mu.Unlock()

	if fromLocal && reachable {
		s.schedulePush(ctx, sess, loaded)
	}

	return out
}

func (s *SyncService) loadRemoteInvoices(ctx context.Context, userID string, pass []byte) []models.Invoice {
	rows, err := s.remote.ListInvoices(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "remote invoice read failed", "err", err)
		return nil
	}

	loaded := make([]models.Invoice, 0, len(rows))
	for _, row := range rows {
		if row.Payload == "" {
			continue
		}
		var inv models.Invoice
		if err := cryptox.Open(row.Payload, pass, &inv); err != nil {
			// skip, never abort: one bad envelope must not lose the rest
			s.log.Warn(ctx, "skipping undecryptable remote invoice", "id", row.ID, "err", err)
			continue
		}
		inv.Synced = true
		loaded = append(loaded, inv)
	}
	s.log.Info(ctx, "invoices loaded from remote", "count", len(loaded))
	return loaded
}

func (s *SyncService) loadLocalInvoices(ctx context.Context, pass []byte) []models.Invoice {
	blob, err := s.local.Get(ctx, local.KeyInvoices)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "local invoice read failed", "err", err)
		}
		return nil
	}
	if blob == "" {
		return nil
	}

	var loaded []models.Invoice
	if err := cryptox.Open(blob, pass, &loaded); err != nil {
		// corrupt local data: purge the blob and start from empty
		s.log.Warn(ctx, "corrupt local invoice blob purged", "err", err)
		if rmErr := s.local.Remove(ctx, local.KeyInvoices); rmErr != nil {
			s.log.Error(ctx, "failed to purge corrupt blob", "err", rmErr)
		}
		return nil
	}

	for i := range loaded {
		loaded[i].Synced = false
	}
	s.log.Info(ctx, "invoices loaded from local store", "count", len(loaded))
	return loaded
}

// schedulePush fires a deferred best-effort push of every unsynced record.
// Failures are logged, not retried in this cycle. Results are applied only
// if the session is still live when the push completes.
func (s *SyncService) schedulePush(ctx context.Context, sess *models.Session, invoices []models.Invoice) {
	// capture the passphrase before the goroutine starts so a later
	// re-key of the session cannot race the push
	pass := sess.Passphrase()
	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()
		for _, inv := range invoices {
			if inv.Synced {
				continue
			}
			if err := s.pushInvoice(ctx, sess, inv, pass); err != nil {
				s.log.Warn(ctx, "deferred invoice push failed", "id", inv.ID, "err", err)
			}
		}
	}()
}

// pushInvoice seals and upserts a single record, then marks it synced in the
// in-memory collection if the session is still live.
func (s *SyncService) pushInvoice(ctx context.Context, sess *models.Session, inv models.Invoice, pass []byte) error {
	token, err := cryptox.Seal(inv, pass)
	if err != nil {
		return err
	}
	row := remote.InvoiceRow{ID: inv.ID, UserID: inv.UserID, Payload: token}
	if err := s.remote.UpsertInvoice(ctx, row); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sameSession(sess) {
		return common.ErrSessionClosed
	}
	for i := range s.invoices {
		if s.invoices[i].ID == inv.ID {
			s.invoices[i].Synced = true
			break
		}
	}
	return nil
}

// SaveInvoices normalizes and persists the given collection. The local blob
// is always written first (the durability backstop); remote pushes are then
// attempted per unsynced record when the remote is reachable, and per-record
// failures are independent. The error return covers only seal and local
// write failures.
func (s *SyncService) SaveInvoices(ctx context.Context, sess *models.Session, invoices []models.Invoice) ([]models.Invoice, error) {
	if !s.sameSession(sess) {
		return nil, common.ErrSessionClosed
	}
	pass := sess.Passphrase()

	validated := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		synced := inv.Synced
		n := models.NormalizeInvoice(inv)
		n.Synced = synced
		validated = append(validated, n)
	}

	token, err := cryptox.Seal(validated, pass)
	if err != nil {
		return nil, err
	}
	if err := s.local.Set(ctx, local.KeyInvoices, token); err != nil {
		return nil, err
	}

	if s.reachable(ctx) {
		for i := range validated {
			if validated[i].Synced {
				continue
			}
			rowToken, err := cryptox.Seal(validated[i], pass)
			if err != nil {
				s.log.Error(ctx, "sealing invoice for remote failed", "id", validated[i].ID, "err", err)
				continue
			}
			row := remote.InvoiceRow{ID: validated[i].ID, UserID: validated[i].UserID, Payload: rowToken}
			if err := s.remote.UpsertInvoice(ctx, row); err != nil {
				s.log.Warn(ctx, "invoice push failed", "id", validated[i].ID, "err", err)
				continue
			}
			validated[i].Synced = true
		}
	}

	s.mu.Lock()
	if s.sameSession(sess) {
		s.invoices = validated
		s.invState = StateReady
	}
	s.mu.Unlock()

	return validated, nil
}

// AddInvoice ingests one loosely-typed parsed record: normalizes it, runs
// duplicate detection against the loaded collection, tags collisions, and
// persists the grown collection. The collection is loaded first if this
// session has not done so yet, so the rewrite of the local blob can never
// drop records persisted earlier. Requires upload permission.
func (s *SyncService) AddInvoice(ctx context.Context, sess *models.Session, raw map[string]any) (models.Invoice, *models.Duplicate, error) {
	if !s.sameSession(sess) {
		return models.Invoice{}, nil, common.ErrSessionClosed
	}
	if !sess.User.Role.CanUpload() {
		return models.Invoice{}, nil, common.ErrForbidden
	}

	inv := models.InvoiceFromRaw(raw)
	inv.UserID = sess.User.ID

	current := s.LoadInvoices(ctx, sess)
	dup := models.DetectDuplicate(inv, current)
	if dup != nil {
		inv.Status = models.StatusDuplicate
		inv.DuplicateOf = dup.Existing.ID
		inv.DuplicateKind = dup.Kind
		s.log.Info(ctx, "duplicate invoice detected",
			"folio", inv.Folio, "kind", dup.Kind, "existing", dup.Existing.ID)
	}

	saved, err := s.SaveInvoices(ctx, sess, append(current, inv))
	if err != nil {
		return models.Invoice{}, dup, err
	}
	return saved[len(saved)-1], dup, nil
}

// DeleteInvoices removes the given records from the loaded collection
// (loading it first if needed), persists the shrunk collection, and
// best-effort deletes the remote rows.
func (s *SyncService) DeleteInvoices(ctx context.Context, sess *models.Session, ids []string) error {
	if !s.sameSession(sess) {
		return common.ErrSessionClosed
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := make([]models.Invoice, 0)
	for _, inv := range s.LoadInvoices(ctx, sess) {
		if _, gone := drop[inv.ID]; !gone {
			kept = append(kept, inv)
		}
	}

	if _, err := s.SaveInvoices(ctx, sess, kept); err != nil {
		return err
	}

	if s.reachable(ctx) {
		for _, id := range ids {
			if err := s.remote.DeleteInvoice(ctx, id); err != nil {
				s.log.Warn(ctx, "remote invoice delete failed", "id", id, "err", err)
			}
		}
	}
	return nil
}
