package models

import (
	"time"

	"github.com/google/uuid"
)

// Role gates what a logged-in user may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "usuario"
	RoleReadOnly Role = "solo-lectura"
)

// User is one login identity in the roster. The password doubles as the
// encryption passphrase for everything the user stores.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"rol"`
	CreatedAt string `json:"fechaCreacion"`
	LastSeen  string `json:"ultimoAcceso"`
	Active    bool   `json:"activo"`
}

// CanUpload reports whether the role may ingest new invoices.
func (r Role) CanUpload() bool { return r == RoleAdmin || r == RoleUser }

// CanExport reports whether the role may export invoice data.
func (r Role) CanExport() bool { return r == RoleAdmin || r == RoleUser }

// CanManageUsers reports whether the role may edit the roster.
func (r Role) CanManageUsers() bool { return r == RoleAdmin }

// Session is the ephemeral authentication context created on login and
// discarded on logout. It is never persisted.
type Session struct {
	ID           string
	User         User
	LoginAt      time.Time
	LastActivity time.Time

	closed bool
}

// NewSession starts a session for u.
func NewSession(u User) *Session {
	t := now()
	return &Session{ID: uuid.NewString(), User: u, LoginAt: t, LastActivity: t}
}

// Touch records user activity.
func (s *Session) Touch() { s.LastActivity = now() }

// Passphrase returns the encryption passphrase for this session.
func (s *Session) Passphrase() []byte { return []byte(s.User.Password) }

// Close marks the session dead. Late callbacks check Closed before applying
// results so an abandoned session can no longer mutate collections.
func (s *Session) Close() { s.closed = true }

// Closed reports whether the session has been logged out.
func (s *Session) Closed() bool { return s == nil || s.closed }
