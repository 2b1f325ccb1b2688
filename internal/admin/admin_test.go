package admin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/notify"
	"github.com/hongminglow/levelup-be/internal/report"
	"github.com/hongminglow/levelup-be/internal/storage"
	"github.com/hongminglow/levelup-be/internal/storage/memory"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// MockNotifier records every email and returns Err.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []notify.PaymentEmail
	Err  error
}

func (m *MockNotifier) PaymentStatusChanged(_ context.Context, email notify.PaymentEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return m.Err
}

func newService(t *testing.T) (*Service, *memory.Store, *MockNotifier) {
	t.Helper()
	store := memory.New()
	notifier := &MockNotifier{}
	svc := NewService(store, store, notifier, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store, notifier
}

func seedPayment(t *testing.T, store *memory.Store, userID string, status models.PaymentStatus, createdAt time.Time) models.Payment {
	t.Helper()
	p, err := store.AppendPayment(context.Background(), models.Payment{
		UserID:          userID,
		UserEmail:       userID + "@example.com",
		ReferenceNumber: "REF-" + userID,
		Amount:          100,
		Status:          status,
		CreatedAt:       createdAt,
	})
	require.NoError(t, err)
	return p
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterAll, "all": FilterAll, " Pending ": "pending", "approved": "approved", "denied": "denied"} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFilter("refunded")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestListPaymentsFilters(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	seedPayment(t, store, "a", models.StatusPending, now)
	seedPayment(t, store, "b", models.StatusApproved, now.Add(-time.Hour))
	seedPayment(t, store, "c", models.StatusDenied, now.Add(-2*time.Hour))

	all, err := svc.ListPayments(ctx, FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := svc.ListPayments(ctx, Filter(models.StatusPending))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].UserID)

	byUser := FilterPayments(all, FilterAll)
	assert.Equal(t, all, byUser)
}

func TestSetStatusNotifiesAfterWrite(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()
	p := seedPayment(t, store, "ann", models.StatusPending, now)

	got, err := svc.SetStatus(ctx, "admin-1", p.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	require.Len(t, notifier.Sent, 1)
	assert.Equal(t, notify.PaymentEmail{UserEmail: "ann@example.com", Action: "approved", ReferenceNumber: "REF-ann", Amount: 100}, notifier.Sent[0])

	_, err = svc.SetStatus(ctx, "admin-1", p.ID, models.StatusPending)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, "admin-1", p.ID, models.StatusDenied)
	require.NoError(t, err)
	require.Len(t, notifier.Sent, 3)
	assert.Equal(t, "set to pending", notifier.Sent[1].Action)
	assert.Equal(t, "denied", notifier.Sent[2].Action)

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.StatusApproved, history[1].From)
	assert.Equal(t, models.StatusPending, history[1].To)
}

func TestSetStatusIsIdempotent(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()
	p := seedPayment(t, store, "ann", models.StatusPending, now)

	once, err := svc.SetStatus(ctx, "admin-1", p.ID, models.StatusApproved)
	require.NoError(t, err)
	twice, err := svc.SetStatus(ctx, "admin-1", p.ID, models.StatusApproved)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	stored, err := store.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, once, stored)
	assert.Len(t, notifier.Sent, 1)

	history, err := svc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSetStatusKeepsWriteWhenNotificationFails(t *testing.T) {
	svc, store, notifier := newService(t)
	notifier.Err = errors.New("mailer down")
	ctx := context.Background()
	p := seedPayment(t, store, "ann", models.StatusPending, now)

	got, err := svc.SetStatus(ctx, "admin-1", p.ID, models.StatusDenied)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, got.Status)

	stored, err := store.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, stored.Status)
}

func TestSetStatusValidation(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()
	p := seedPayment(t, store, "ann", models.StatusPending, now)

	_, err := svc.SetStatus(ctx, "admin-1", p.ID, "refunded")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(ctx, "admin-1", "missing", models.StatusApproved)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, notifier.Sent)
}

func TestToggleRole(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	_, err := store.CreateUser(ctx, models.User{ID: "u1", Role: models.RoleUser})
	require.NoError(t, err)

	u, err := svc.ToggleRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	u, err = svc.ToggleRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.ToggleRole(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "1", DisplayName: "Ann Lee", Email: "ann@example.com"},
		{ID: "2", DisplayName: "Bob", Email: "bob@School.edu"},
		{ID: "3", DisplayName: "", Email: ""},
	} {
		_, err := store.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	all, err := svc.SearchUsers(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.SearchUsers(ctx, "school")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID)

	found, err = svc.SearchUsers(ctx, "LEE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)
}

func TestComputeMetrics(t *testing.T) {
	payments := []models.Payment{
		{ID: "1", Amount: 100, Status: models.StatusApproved, CreatedAt: now},
		{ID: "2", Amount: 100, Status: models.StatusApproved, CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "3", Amount: 100, Status: models.StatusApproved, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "4", Amount: 100, Status: models.StatusApproved, CreatedAt: now.AddDate(-1, 0, 0)},
		{ID: "5", Amount: 100, Status: models.StatusPending, CreatedAt: now},
		{ID: "6", Amount: 100, Status: models.StatusDenied, CreatedAt: now},
	}
	m := ComputeMetrics(payments, now, time.UTC)
	assert.Equal(t, 1, m.PendingCount)
	assert.Equal(t, int64(400), m.Revenue)
	assert.Equal(t, int64(100), m.Daily)
	assert.Equal(t, int64(200), m.Monthly)
	assert.Equal(t, int64(300), m.Yearly)
	assert.InDelta(t, 0.4, m.MonthlyProgress, 1e-9)

	// approved -> denied drops revenue by that amount and leaves pending alone
	payments[1].Status = models.StatusDenied
	after := ComputeMetrics(payments, now, time.UTC)
	assert.Equal(t, m.Revenue-100, after.Revenue)
	assert.Equal(t, m.PendingCount, after.PendingCount)
}

func TestComputeMetricsCapsProgress(t *testing.T) {
	payments := []models.Payment{{Amount: 60000, Status: models.StatusApproved, CreatedAt: now}}
	assert.Equal(t, float64(100), ComputeMetrics(payments, now, time.UTC).MonthlyProgress)
}

func TestDashboardAndReports(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	_, err := svc.FullReport(ctx)
	require.ErrorIs(t, err, report.ErrEmpty)

	_, err = store.CreateUser(ctx, models.User{ID: "ann", Email: "ann@example.com", DisplayName: "Ann"})
	require.NoError(t, err)
	seedPayment(t, store, "ann", models.StatusApproved, now)
	seedPayment(t, store, "ann", models.StatusPending, now)

	m, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalUsers)
	assert.Equal(t, 1, m.PendingCount)
	assert.Equal(t, int64(100), m.Revenue)

	full, err := svc.FullReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin_report_1749988800000.csv", full.Name)

	daily, err := svc.RevenueReport(ctx, report.Daily)
	require.NoError(t, err)
	assert.Equal(t, "daily_revenue_report_2025-06-15.csv", daily.Name)
	assert.Contains(t, string(daily.Content), "ann@example.com,2025-06-15,100,approved")
}
