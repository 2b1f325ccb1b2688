package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongminglow/levelup-be/internal/models"
)

// EnsureUser returns users/{id.UID}, creating it with the default role on
// first sign-in. Existing records are returned untouched so an admin role
// granted earlier survives later sign-ins.
func EnsureUser(ctx context.Context, users UserStore, id models.Identity, now time.Time) (models.User, error) {
	u, err := users.GetUser(ctx, id.UID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, fmt.Errorf("load user %s: %w", id.UID, err)
	}

	created, err := users.CreateUser(ctx, models.NewUser(id, now))
	if errors.Is(err, ErrAlreadyExists) {
		// lost a race with a concurrent first sign-in
		return users.GetUser(ctx, id.UID)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user %s: %w", id.UID, err)
	}
	return created, nil
}
