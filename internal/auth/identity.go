package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongminglow/levelup-be/internal/models"
)

// ErrInvalidCredential is returned when the identity provider's assertion
// cannot be verified.
var ErrInvalidCredential = errors.New("invalid identity credential")

// IdentityProvider turns the credential produced by the provider's
// interactive sign-in into a verified identity.
type IdentityProvider interface {
	Verify(ctx context.Context, credential string) (models.Identity, error)
}

// AssertionVerifier accepts HS256 assertions signed by the identity provider
// with a shared secret.
type AssertionVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewAssertionVerifier returns a verifier. An empty issuer is not checked.
func NewAssertionVerifier(secret, issuer string) *AssertionVerifier {
	return &AssertionVerifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Verify implements IdentityProvider.
func (v *AssertionVerifier) Verify(_ context.Context, credential string) (models.Identity, error) {
	claims, err := verify(v.secret, v.issuer, credential, v.now)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return claims.identity(), nil
}

// SignAssertion mints an assertion the way the provider does. Used for local
// development and tests.
func SignAssertion(secret, issuer string, id models.Identity, ttl time.Duration) (string, error) {
	return sign([]byte(secret), issuer, id, time.Now(), ttl)
}
