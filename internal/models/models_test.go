package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleToggled(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleUser.Toggled())
	assert.Equal(t, RoleUser, RoleAdmin.Toggled())
	assert.Equal(t, RoleAdmin, Role("").Toggled())
}

func TestPaymentStatusValid(t *testing.T) {
	for _, s := range []PaymentStatus{StatusPending, StatusApproved, StatusDenied} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, PaymentStatus("refunded").Valid())
	assert.False(t, PaymentStatus("").Valid())
}

func TestNewUserDefaultsToUserRole(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u := NewUser(Identity{UID: "u1", Email: "a@b.c", DisplayName: "Ann", PhotoURL: "http://x/p.png"}, now)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "http://x/p.png", u.AvatarURL)
	assert.Equal(t, now, u.CreatedAt)
	assert.False(t, u.IsAdmin())
}
