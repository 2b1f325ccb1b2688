// Package payments implements the user side of the manual payment workflow:
// submitting a reference number and waiting for an admin to review it.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/hongminglow/levelup-be/internal/feed"
	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/session"
	"github.com/hongminglow/levelup-be/internal/storage"
)

var (
	ErrNotAuthenticated = errors.New("please login first")
	ErrEmptyReference   = errors.New("please enter the reference number")
	ErrSubmissionClosed = errors.New("a payment is already pending or approved")
)

// DefaultAmount is the price of the game.
const DefaultAmount int64 = 100

// State is what the submission flow shows the user.
type State string

const (
	StateInput    State = "input"
	StatePending  State = "pending"
	StateApproved State = "approved"
)

// Decide derives the flow state from a user's payments. An approved payment
// wins over a pending one.
func Decide(payments []models.Payment) State {
	state := StateInput
	for _, p := range payments {
		switch p.Status {
		case models.StatusApproved:
			return StateApproved
		case models.StatusPending:
			state = StatePending
		}
	}
	return state
}

// Checkout is shown when the user opens the payment dialog.
type Checkout struct {
	// DisplayReference is a client-facing code only. It is never stored
	// and never matched against submitted reference numbers.
	DisplayReference string `json:"displayReference"`
	Amount           int64  `json:"amount"`
}

// Service handles payment submission for signed-in users.
type Service struct {
	store  storage.PaymentStore
	broker feed.Broker
	amount int64
	now    func() time.Time
	intN   func(n int) int
}

// NewService wires the service. amount <= 0 falls back to DefaultAmount.
func NewService(store storage.PaymentStore, broker feed.Broker, amount int64) *Service {
	if amount <= 0 {
		amount = DefaultAmount
	}
	return &Service{
		store:  store,
		broker: broker,
		amount: amount,
		now:    time.Now,
		intN:   rand.IntN,
	}
}

// StartPayment opens the payment dialog for the signed-in user.
func (s *Service) StartPayment(holder *session.Holder) (Checkout, error) {
	if _, ok := holder.Current(); !ok {
		return Checkout{}, ErrNotAuthenticated
	}
	return Checkout{
		DisplayReference: fmt.Sprintf("REF-%06d", 100000+s.intN(900000)),
		Amount:           s.amount,
	}, nil
}

// SubmitReference records a pending payment for the signed-in user.
//
// The "one open payment per user" rule is checked here against a read of
// the user's payments. Two concurrent submissions can both pass the check.
func (s *Service) SubmitReference(ctx context.Context, holder *session.Holder, text string) (models.Payment, error) {
	id, ok := holder.Current()
	if !ok {
		return models.Payment{}, ErrNotAuthenticated
	}
	ref := strings.TrimSpace(text)
	if ref == "" {
		return models.Payment{}, ErrEmptyReference
	}

	existing, err := s.store.ListPaymentsByUser(ctx, id.UID)
	if err != nil {
		return models.Payment{}, fmt.Errorf("load payments: %w", err)
	}
	if Decide(existing) != StateInput {
		return models.Payment{}, ErrSubmissionClosed
	}

	created, err := s.store.AppendPayment(ctx, models.Payment{
		UserID:          id.UID,
		UserEmail:       id.Email,
		ReferenceNumber: ref,
		Amount:          s.amount,
		Status:          models.StatusPending,
		CreatedAt:       s.now(),
	})
	if err != nil {
		return models.Payment{}, fmt.Errorf("append payment: %w", err)
	}
	return created, nil
}

// ListMine returns the user's payments, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Payment, error) {
	return s.store.ListPaymentsByUser(ctx, userID)
}

// WatchMine streams the user's payments after every change to the payment set.
func (s *Service) WatchMine(ctx context.Context, userID string) (*feed.Snapshots[[]models.Payment], error) {
	return feed.Watch(ctx, s.broker, feed.TopicPayments, func(ctx context.Context) ([]models.Payment, error) {
		return s.store.ListPaymentsByUser(ctx, userID)
	})
}
