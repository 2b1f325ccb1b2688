package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/storage"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetUser(ctx, "u1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	created, err := s.CreateUser(ctx, models.User{ID: "u1", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, models.User{ID: "u1"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	updated, err := s.UpdateUserRole(ctx, "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = s.UpdateUserRole(ctx, "nobody", models.RoleAdmin)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.CreateUser(ctx, models.User{ID: "u0"})
	require.NoError(t, err)
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u0", users[0].ID)
}

func TestPaymentsAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	older, err := s.AppendPayment(ctx, models.Payment{UserID: "u1", Status: models.StatusPending, CreatedAt: base})
	require.NoError(t, err)
	newer, err := s.AppendPayment(ctx, models.Payment{UserID: "u2", Status: models.StatusPending, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.NotEmpty(t, older.ID)
	assert.NotEqual(t, older.ID, newer.ID)

	all, err := s.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	mine, err := s.ListPaymentsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, older.ID, mine[0].ID)

	none, err := s.ListPaymentsByUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSetPaymentStatusRecordsTransitions(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return at })

	p, err := s.AppendPayment(ctx, models.Payment{UserID: "u1", Status: models.StatusPending})
	require.NoError(t, err)

	got, changed, err := s.SetPaymentStatus(ctx, p.ID, models.StatusApproved, "admin-1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusApproved, got.Status)

	_, changed, err = s.SetPaymentStatus(ctx, p.ID, models.StatusApproved, "admin-1")
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = s.SetPaymentStatus(ctx, p.ID, models.StatusPending, "admin-2")
	require.NoError(t, err)
	assert.True(t, changed)

	history, err := s.ListStatusHistory(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusPending, history[0].From)
	assert.Equal(t, models.StatusApproved, history[0].To)
	assert.Equal(t, "admin-2", history[1].ActorID)
	assert.Equal(t, at, history[1].CreatedAt)

	_, _, err = s.SetPaymentStatus(ctx, "missing", models.StatusDenied, "admin-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.ListStatusHistory(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
