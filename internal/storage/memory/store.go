package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store keeps users and payments in process memory. It backs
// STORE_DRIVER=memory and the package tests.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	payments map[string]models.Payment
	history  []models.StatusChange
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		payments: make(map[string]models.Payment),
		now:      time.Now,
	}
}

// WithClock overrides the time source used for audit rows.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) UpdateUserRole(_ context.Context, id string, role models.Role) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AppendPayment(_ context.Context, p models.Payment) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) SetPaymentStatus(_ context.Context, id string, status models.PaymentStatus, actorID string) (models.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, false, storage.ErrNotFound
	}
	if p.Status == status {
		return p, false, nil
	}
	s.history = append(s.history, models.StatusChange{
		ID:        int64(len(s.history) + 1),
		PaymentID: id,
		From:      p.Status,
		To:        status,
		ActorID:   actorID,
		CreatedAt: s.now(),
	})
	p.Status = status
	s.payments[id] = p
	return p, true, nil
}

func (s *Store) ListPayments(_ context.Context) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(models.Payment) bool { return true }), nil
}

func (s *Store) ListPaymentsByUser(_ context.Context, userID string) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p models.Payment) bool { return p.UserID == userID }), nil
}

func (s *Store) ListStatusHistory(_ context.Context, paymentID string) ([]models.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.payments[paymentID]; !ok {
		return nil, storage.ErrNotFound
	}
	var out []models.StatusChange
	for _, c := range s.history {
		if c.PaymentID == paymentID {
			out = append(out, c)
		}
	}
	return out, nil
}

// collect returns matching payments newest first, ties broken by id.
func (s *Store) collect(keep func(models.Payment) bool) []models.Payment {
	out := make([]models.Payment, 0)
	for _, p := range s.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
