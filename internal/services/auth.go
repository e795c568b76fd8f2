package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/cryptox"
	"github.com/acuellar/cfdivault/internal/dbx"
	"github.com/acuellar/cfdivault/internal/logging"
	"github.com/acuellar/cfdivault/internal/models"
	"github.com/acuellar/cfdivault/internal/store/local"
	"github.com/acuellar/cfdivault/internal/store/remote"
)

// Default bootstrap admin identity, seeded when the roster is empty.
const (
	BootstrapAdminID       = "admin-001"
	BootstrapAdminUsername = "admin"
	BootstrapAdminEmail    = "admin@empresa.com"
	BootstrapAdminPassword = "admin123"
)

// AuthService handles login, the bootstrap admin, and passphrase rotation.
//
// Wrong credentials and a roster that cannot be decrypted are reported
// identically as common.ErrUnauthorized: at login there is no safe fallback,
// so this is the one place a decryption failure surfaces.
type AuthService struct {
	sync   *SyncService
	local  local.Store
	db     *sql.DB
	remote remote.Client
	log    logging.Logger
}

func NewAuthService(syncSvc *SyncService, localStore local.Store, db *sql.DB, remoteClient remote.Client, log logging.Logger) *AuthService {
	return &AuthService{sync: syncSvc, local: localStore, db: db, remote: remoteClient, log: log}
}

// Bootstrap seeds the default admin account when no roster blob exists yet.
// Exactly one admin exists before any other account can be created.
func (a *AuthService) Bootstrap(ctx context.Context) error {
	_, err := a.local.Get(ctx, local.KeyUsers)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("checking roster: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	admin := models.User{
		ID:        BootstrapAdminID,
		Username:  BootstrapAdminUsername,
		Email:     BootstrapAdminEmail,
		Password:  BootstrapAdminPassword,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		LastSeen:  now,
		Active:    true,
	}

	token, err := cryptox.Seal([]models.User{admin}, []byte(admin.Password))
	if err != nil {
		return err
	}
	if err := a.local.Set(ctx, local.KeyUsers, token); err != nil {
		return err
	}

	if a.remote.Probe(ctx) == nil {
		if err := a.remote.UpsertRoster(ctx, token); err != nil {
			a.log.Warn(ctx, "bootstrap roster push failed", "err", err)
		}
	}

	a.log.Info(ctx, "bootstrap admin initialized", "username", admin.Username)
	return nil
}

// Login opens the roster with the presented password (remote-first, local
// fallback) and matches an active account. On success it binds a fresh
// session to the sync coordinator, stamps last access, and re-saves the
// roster. Failure is always common.ErrUnauthorized; the caller cannot tell
// a wrong password from corrupted roster data.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	pass := []byte(password)
	reachable := a.remote.Probe(ctx) == nil

	users, _ := loadRoster(ctx, a.sync, pass, reachable)
	if len(users) == 0 {
		return nil, common.ErrUnauthorized
	}

	idx := -1
	for i, u := range users {
		if u.Username == username &&
			subtle.ConstantTimeCompare([]byte(u.Password), pass) == 1 &&
			u.Active {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, common.ErrUnauthorized
	}

	users[idx].LastSeen = time.Now().Format(time.RFC3339)
	sess := models.NewSession(users[idx])
	a.sync.Start(sess)

	if err := a.sync.SaveUsers(ctx, sess, users); err != nil {
		// the roster is still loadable from where we just read it
		a.log.Warn(ctx, "saving roster after login failed", "err", err)
	}

	a.log.Info(ctx, "login successful", "username", username, "role", users[idx].Role)
	return sess, nil
}

// Logout closes the session and drops the coordinator's collections. Any
// pending remote operation finishes on its own; its result is discarded
// because the session no longer matches.
func (a *AuthService) Logout(sess *models.Session) {
	if sess != nil {
		sess.Close()
	}
	a.sync.Stop()
}

// Rekey re-seals every persisted blob under newPassword, writing both local
// blobs in a single transaction, then re-pushes the remote copies. The
// session keeps working under the new passphrase.
func (a *AuthService) Rekey(ctx context.Context, sess *models.Session, newPassword string) error {
	if sess.Closed() {
		return common.ErrSessionClosed
	}
	if newPassword == "" {
		return fmt.Errorf("%w: empty password", common.ErrInternal)
	}

	// make sure both collections are loaded under the old passphrase first,
	// and let any deferred push still sealing under it finish
	invoices := a.sync.LoadInvoices(ctx, sess)
	users := a.sync.LoadUsers(ctx, sess)
	a.sync.Wait()

	for i := range users {
		if users[i].ID == sess.User.ID {
			users[i].Password = newPassword
		}
	}
	// remote rows are still sealed under the old passphrase
	for i := range invoices {
		invoices[i].Synced = false
	}

	newPass := []byte(newPassword)
	invToken, err := cryptox.Seal(invoices, newPass)
	if err != nil {
		return err
	}
	usrToken, err := cryptox.Seal(users, newPass)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		s := local.NewSQLiteStore(tx)
		if err := s.Set(ctx, local.KeyInvoices, invToken); err != nil {
			return err
		}
		return s.Set(ctx, local.KeyUsers, usrToken)
	})
	if err != nil {
		return fmt.Errorf("rewriting local blobs: %w", err)
	}

	a.sync.mu.Lock()
	sess.User.Password = newPassword
	a.sync.mu.Unlock()

	if a.remote.Probe(ctx) == nil {
		if err := a.remote.UpsertRoster(ctx, usrToken); err != nil {
			a.log.Warn(ctx, "roster push after rekey failed", "err", err)
		}
		for i := range invoices {
			rowToken, err := cryptox.Seal(invoices[i], newPass)
			if err != nil {
				a.log.Error(ctx, "sealing invoice after rekey failed", "id", invoices[i].ID, "err", err)
				continue
			}
			row := remote.InvoiceRow{ID: invoices[i].ID, UserID: invoices[i].UserID, Payload: rowToken}
			if err := a.remote.UpsertInvoice(ctx, row); err != nil {
				a.log.Warn(ctx, "invoice push after rekey failed", "id", invoices[i].ID, "err", err)
				continue
			}
			invoices[i].Synced = true
		}
	}

	a.sync.replaceCollections(sess, invoices, users)
	a.log.Info(ctx, "vault re-keyed", "user", sess.User.Username)
	return nil
}
