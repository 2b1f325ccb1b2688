package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/levelup-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations on users/{uid}.
type UserStore interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// PaymentStore captures persistence operations on payments/{id}.
type PaymentStore interface {
	// AppendPayment stores p under a freshly generated id.
	AppendPayment(ctx context.Context, p models.Payment) (models.Payment, error)
	GetPayment(ctx context.Context, id string) (models.Payment, error)
	// SetPaymentStatus updates only the status field and records the
	// transition. Setting the current status again changes nothing and
	// returns changed=false.
	SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus, actorID string) (p models.Payment, changed bool, err error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)
	ListStatusHistory(ctx context.Context, paymentID string) ([]models.StatusChange, error)
}

// Store is the full remote data store.
type Store interface {
	UserStore
	PaymentStore
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	Close()
}
