// Package admin implements the review console: payment decisions, role
// management, dashboard figures and CSV exports.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/notify"
	"github.com/hongminglow/levelup-be/internal/report"
	"github.com/hongminglow/levelup-be/internal/storage"
)

var (
	ErrInvalidStatus = errors.New("status must be pending, approved or denied")
	ErrInvalidFilter = errors.New("filter must be all, pending, approved or denied")
)

// Filter selects payments by status.
type Filter string

const FilterAll Filter = "all"

// ParseFilter accepts "", "all" or a payment status.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if !models.PaymentStatus(s).Valid() {
		return "", ErrInvalidFilter
	}
	return Filter(s), nil
}

// FilterPayments keeps the payments matching f, preserving order.
func FilterPayments(payments []models.Payment, f Filter) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if f == FilterAll || string(p.Status) == string(f) {
			out = append(out, p)
		}
	}
	return out
}

// Service performs admin actions. Callers are expected to have checked the
// admin role already.
type Service struct {
	users    storage.UserStore
	payments storage.PaymentStore
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewService wires the admin service.
func NewService(users storage.UserStore, payments storage.PaymentStore, notifier notify.Notifier, loc *time.Location) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{users: users, payments: payments, notifier: notifier, loc: loc, now: time.Now}
}

// ListPayments returns the live payment set filtered by status, newest first.
func (s *Service) ListPayments(ctx context.Context, f Filter) ([]models.Payment, error) {
	all, err := s.payments.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return FilterPayments(all, f), nil
}

// SetStatus writes the new status, then tells the mailer. The store write is
// the source of truth: a failed notification is logged and not retried.
// Re-applying the current status is a no-op and sends nothing.
func (s *Service) SetStatus(ctx context.Context, actorID, paymentID string, status models.PaymentStatus) (models.Payment, error) {
	if !status.Valid() {
		return models.Payment{}, ErrInvalidStatus
	}
	p, changed, err := s.payments.SetPaymentStatus(ctx, paymentID, status, actorID)
	if err != nil {
		return models.Payment{}, fmt.Errorf("set payment %s status: %w", paymentID, err)
	}
	if !changed {
		return p, nil
	}

	email := notify.PaymentEmail{
		UserEmail:       p.UserEmail,
		Action:          action(status),
		ReferenceNumber: p.ReferenceNumber,
		Amount:          p.Amount,
	}
	if err := s.notifier.PaymentStatusChanged(context.WithoutCancel(ctx), email); err != nil {
		log.Printf("notify payment %s %s: %v", p.ID, email.Action, err)
	}
	return p, nil
}

func action(status models.PaymentStatus) string {
	switch status {
	case models.StatusApproved:
		return notify.ActionApproved
	case models.StatusDenied:
		return notify.ActionDenied
	}
	return notify.ActionSetPending
}

// History returns the review trail of a payment.
func (s *Service) History(ctx context.Context, paymentID string) ([]models.StatusChange, error) {
	return s.payments.ListStatusHistory(ctx, paymentID)
}

// ToggleRole flips a user between user and admin. Concurrent toggles race;
// the last write wins.
func (s *Service) ToggleRole(ctx context.Context, uid string) (models.User, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return models.User{}, err
	}
	updated, err := s.users.UpdateUserRole(ctx, uid, u.Role.Toggled())
	if err != nil {
		return models.User{}, fmt.Errorf("update role of %s: %w", uid, err)
	}
	return updated, nil
}

// SearchUsers matches term against name or email, case-insensitively.
// An empty term returns everyone.
func (s *Service) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users, nil
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.DisplayName), term) || strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Dashboard computes the current metrics including the user count.
func (s *Service) Dashboard(ctx context.Context) (Metrics, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("list users: %w", err)
	}
	payments, err := s.payments.ListPayments(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("list payments: %w", err)
	}
	m := ComputeMetrics(payments, s.now(), s.loc)
	m.TotalUsers = len(users)
	return m, nil
}

// FullReport exports every user and payment.
func (s *Service) FullReport(ctx context.Context) (report.File, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return report.File{}, fmt.Errorf("list users: %w", err)
	}
	payments, err := s.payments.ListPayments(ctx)
	if err != nil {
		return report.File{}, fmt.Errorf("list payments: %w", err)
	}
	return report.Full(users, payments, s.now())
}

// RevenueReport exports approved payments in period.
func (s *Service) RevenueReport(ctx context.Context, period report.Period) (report.File, error) {
	payments, err := s.payments.ListPayments(ctx)
	if err != nil {
		return report.File{}, fmt.Errorf("list payments: %w", err)
	}
	return report.Revenue(payments, period, s.now(), s.loc)
}
