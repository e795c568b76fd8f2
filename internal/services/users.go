package services

import (
	"context"
	"errors"
	"time"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/cryptox"
	"github.com/acuellar/cfdivault/internal/models"
	"github.com/acuellar/cfdivault/internal/sanitize"
	"github.com/acuellar/cfdivault/internal/store/local"
)

// Roster operations. Unlike invoices, the roster is small and always
// travels as one sealed blob: a single row remotely, a single key locally.

// LoadUsers loads the roster for sess following the same remote-first,
// local-fallback protocol as invoices. A local-origin roster is pushed back
// to the remote best-effort when it is reachable.
func (s *SyncService) LoadUsers(ctx context.Context, sess *models.Session) []models.User {
	s.mu.Lock()
	if !s.sameSession(sess) {
		s.mu.Unlock()
		s.log.Warn(ctx, "roster load ignored for dead session")
		return nil
	}
	if s.usrState == StateReady {
		out := make([]models.User, len(s.users))
		copy(out, s.users)
		s.mu.Unlock()
		return out
	}
	s.usrState = StateLoading
	s.mu.Unlock()

	reachable := s.reachable(ctx)
	pass := sess.Passphrase()

	users, fromLocal := loadRoster(ctx, s, pass, reachable)

	s.mu.Lock()
	if !s.sameSession(sess) {
		s.mu.Unlock()
		return nil
	}
	s.users = users
	s.usrState = StateReady
	out := make([]models.User, len(users))
	copy(out, users)
	s.mu.Unlock()

	if fromLocal && reachable && len(users) > 0 {
		if token, err := cryptox.Seal(users, pass); err == nil {
			if err := s.remote.UpsertRoster(ctx, token); err != nil {
				s.log.Warn(ctx, "roster push failed", "err", err)
			}
		}
	}

	return out
}

// loadRoster fetches and opens the roster with the given passphrase,
// remote-first. It is shared by the sync coordinator and the login path
// (which runs before any session exists). The second return reports whether
// the roster came from the local store.
func loadRoster(ctx context.Context, s *SyncService, pass []byte, reachable bool) ([]models.User, bool) {
	if reachable {
		token, err := s.remote.GetRoster(ctx)
		switch {
		case errors.Is(err, common.ErrNotFound):
			// no roster row yet, fall through to local
		case err != nil:
			s.log.Warn(ctx, "remote roster read failed", "err", err)
		default:
			var users []models.User
			if err := cryptox.Open(token, pass, &users); err != nil {
				s.log.Warn(ctx, "remote roster not openable with this passphrase", "err", err)
			} else if len(users) > 0 {
				return users, false
			}
		}
	}

	blob, err := s.local.Get(ctx, local.KeyUsers)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "local roster read failed", "err", err)
		}
		return nil, false
	}

	var users []models.User
	if err := cryptox.Open(blob, pass, &users); err != nil {
		s.log.Warn(ctx, "local roster blob not openable", "err", err)
		return nil, false
	}
	return users, true
}

// SaveUsers seals the whole roster, writes the local blob, and upserts the
// remote roster row when reachable. The error return covers only seal and
// local write failures.
func (s *SyncService) SaveUsers(ctx context.Context, sess *models.Session, users []models.User) error {
	if !s.sameSession(sess) {
		return common.ErrSessionClosed
	}
	pass := sess.Passphrase()

	token, err := cryptox.Seal(users, pass)
	if err != nil {
		return err
	}
	if err := s.local.Set(ctx, local.KeyUsers, token); err != nil {
		return err
	}

	if s.reachable(ctx) {
		if err := s.remote.UpsertRoster(ctx, token); err != nil {
			s.log.Warn(ctx, "roster push failed", "err", err)
		}
	}

	s.mu.Lock()
	if s.sameSession(sess) {
		s.users = users
		s.usrState = StateReady
	}
	s.mu.Unlock()
	return nil
}

var errUsernameTaken = errors.New("username already exists")

// CreateUser adds a new account to the roster. Admin only; usernames are
// unique case-insensitively.
func (s *SyncService) CreateUser(ctx context.Context, sess *models.Session, u models.User) error {
	if !s.sameSession(sess) {
		return common.ErrSessionClosed
	}
	if !sess.User.Role.CanManageUsers() {
		return common.ErrForbidden
	}

	users := s.LoadUsers(ctx, sess)
	for _, existing := range users {
		if sanitize.ToLowerText(existing.Username) == sanitize.ToLowerText(u.Username) {
			return errUsernameTaken
		}
	}

	if u.ID == "" {
		u.ID = "user-" + time.Now().Format("20060102150405")
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = time.Now().Format(time.RFC3339)
	u.LastSeen = u.CreatedAt
	u.Active = true

	return s.SaveUsers(ctx, sess, append(users, u))
}

// UpdateUser replaces the roster entry with the same id. Admin only.
func (s *SyncService) UpdateUser(ctx context.Context, sess *models.Session, u models.User) error {
	if !s.sameSession(sess) {
		return common.ErrSessionClosed
	}
	if !sess.User.Role.CanManageUsers() {
		return common.ErrForbidden
	}

	users := s.LoadUsers(ctx, sess)
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			return s.SaveUsers(ctx, sess, users)
		}
	}
	return common.ErrNotFound
}

// DeactivateUser flips the active flag off, keeping the account in the
// roster so its invoices stay attributable. Admin only; admins cannot
// deactivate themselves.
func (s *SyncService) DeactivateUser(ctx context.Context, sess *models.Session, id string) error {
	if !s.sameSession(sess) {
		return common.ErrSessionClosed
	}
	if !sess.User.Role.CanManageUsers() {
		return common.ErrForbidden
	}
	if id == sess.User.ID {
		return common.ErrForbidden
	}

	users := s.LoadUsers(ctx, sess)
	for i := range users {
		if users[i].ID == id {
			users[i].Active = false
			return s.SaveUsers(ctx, sess, users)
		}
	}
	return common.ErrNotFound
}
