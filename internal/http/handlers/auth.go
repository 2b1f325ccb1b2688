package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/levelup-be/internal/auth"
	"github.com/hongminglow/levelup-be/internal/http/respond"
	"github.com/hongminglow/levelup-be/internal/models/dto"
	"github.com/hongminglow/levelup-be/internal/session"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// AuthHandler exchanges identity provider credentials for session tokens.
type AuthHandler struct {
	users  storage.UserStore
	idp    auth.IdentityProvider
	tokens *auth.TokenManager
	now    func() time.Time
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, idp auth.IdentityProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, idp: idp, tokens: tokens, now: time.Now}
}

// Register attaches the public sign-in routes.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/sign-in", h.handleSignIn)
	r.Post("/auth/sign-out", h.handleSignOut)
}

// RegisterSession attaches routes that need an authenticated session.
func (h *AuthHandler) RegisterSession(r chi.Router) {
	r.Get("/me", h.handleMe)
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Credential) == "" {
		respond.Error(w, http.StatusBadRequest, "credential is required")
		return
	}
	id, err := h.idp.Verify(r.Context(), strings.TrimSpace(req.Credential))
	if err != nil {
		log.Printf("sign-in failed: %v", err)
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	user, err := storage.EnsureUser(r.Context(), h.users, id, h.now())
	if err != nil {
		log.Printf("sign-in: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	token, err := h.tokens.Generate(id)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.SignInResponse{Token: token, User: user})
}

// Session tokens are stateless; the client forgets its token.
func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "please login first")
		return
	}
	user, err := h.users.GetUser(r.Context(), id.UID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("me: load user %s: %v", id.UID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}
