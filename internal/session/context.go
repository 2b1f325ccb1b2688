package session

import (
	"context"

	"github.com/hongminglow/levelup-be/internal/models"
)

type ctxKey struct{}

// WithIdentity returns a context carrying an authenticated identity.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom extracts the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(models.Identity)
	return id, ok
}

// HolderFrom builds a request-scoped holder from ctx.
func HolderFrom(ctx context.Context) *Holder {
	if id, ok := IdentityFrom(ctx); ok {
		return SignedIn(id)
	}
	return NewHolder()
}
