package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users and payments.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Ping checks that a pooled connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_email TEXT NOT NULL DEFAULT '',
			reference_number TEXT NOT NULL,
			amount BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS payments_user_id_idx ON payments (user_id);`,
		`CREATE INDEX IF NOT EXISTS payments_status_idx ON payments (status);`,
		`CREATE TABLE IF NOT EXISTS payment_status_history (
			id BIGSERIAL PRIMARY KEY,
			payment_id TEXT NOT NULL REFERENCES payments(id),
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			actor_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS payment_status_history_payment_idx ON payment_status_history (payment_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const userColumns = `id, email, display_name, avatar_url, role, created_at`

const paymentColumns = `id, user_id, user_email, reference_number, amount, status, created_at`

// GetUser fetches users/{id}.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	const query = `
		INSERT INTO users (id, email, display_name, avatar_url, role, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING ` + userColumns
	var createdAt any
	if !user.CreatedAt.IsZero() {
		createdAt = user.CreatedAt
	}
	row := s.pool.QueryRow(ctx, query, user.ID, user.Email, user.DisplayName, user.AvatarURL, string(user.Role), createdAt)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// UpdateUserRole merges a new role into users/{id}.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	row := s.pool.QueryRow(ctx, `UPDATE users SET role = $2 WHERE id = $1 RETURNING `+userColumns, id, string(role))
	return scanUser(row)
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AppendPayment inserts p under a generated key.
func (s *Store) AppendPayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	const query = `
		INSERT INTO payments (id, user_id, user_email, reference_number, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		RETURNING ` + paymentColumns
	var createdAt any
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt
	}
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), p.UserID, p.UserEmail, p.ReferenceNumber, p.Amount, string(p.Status), createdAt)
	return scanPayment(row)
}

// GetPayment fetches payments/{id}.
func (s *Store) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

// SetPaymentStatus writes status and its audit row in one transaction.
// Concurrent reviewers serialise on the row lock; the last write wins.
func (s *Store) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus, actorID string) (models.Payment, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Payment{}, false, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return models.Payment{}, false, err
	}
	if current.Status == status {
		return current, false, nil
	}

	updated, err := scanPayment(tx.QueryRow(ctx, `UPDATE payments SET status = $2 WHERE id = $1 RETURNING `+paymentColumns, id, string(status)))
	if err != nil {
		return models.Payment{}, false, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO payment_status_history (payment_id, from_status, to_status, actor_id)
		VALUES ($1, $2, $3, $4)`, id, string(current.Status), string(status), actorID); err != nil {
		return models.Payment{}, false, fmt.Errorf("record status change: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Payment{}, false, fmt.Errorf("commit status update: %w", err)
	}
	return updated, true, nil
}

// ListPayments returns every payment, newest first.
func (s *Store) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC, id`)
}

// ListPaymentsByUser returns the payments submitted by userID, newest first.
func (s *Store) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	return s.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

// ListStatusHistory returns the audit trail for a payment, oldest first.
func (s *Store) ListStatusHistory(ctx context.Context, paymentID string) ([]models.StatusChange, error) {
	if _, err := s.GetPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, payment_id, from_status, to_status, actor_id, created_at
		FROM payment_status_history
		WHERE payment_id = $1
		ORDER BY id`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var out []models.StatusChange
	for rows.Next() {
		var c models.StatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.PaymentID, &from, &to, &c.ActorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.From, c.To = models.PaymentStatus(from), models.PaymentStatus(to)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.AvatarURL, &role, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.Role = models.Role(role)
	return user, nil
}

func scanPayment(row pgx.Row) (models.Payment, error) {
	var p models.Payment
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &p.UserEmail, &p.ReferenceNumber, &p.Amount, &status, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Payment{}, storage.ErrNotFound
		}
		return models.Payment{}, err
	}
	p.Status = models.PaymentStatus(status)
	return p, nil
}
