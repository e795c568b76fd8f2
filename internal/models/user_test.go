package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleAdmin.CanUpload())
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.True(t, RoleUser.CanUpload())
	assert.False(t, RoleUser.CanManageUsers())
	assert.False(t, RoleReadOnly.CanUpload())
	assert.False(t, RoleReadOnly.CanExport())
}

func TestSessionLifecycle(t *testing.T) {
	u := User{ID: "u1", Username: "ana", Password: "pw"}
	s := NewSession(u)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, []byte("pw"), s.Passphrase())
	assert.False(t, s.Closed())

	s.Close()
	assert.True(t, s.Closed())

	var nilSession *Session
	assert.True(t, nilSession.Closed())
}
