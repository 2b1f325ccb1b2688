package models

import "time"

// Role is the coarse access marker stored on a user record.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Toggled flips user<->admin. Unknown roles are treated as user.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// User captures the stored profile of a signed-in identity.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may enter the admin console.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is what the identity provider vouches for after sign-in.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// NewUser builds the record created on first sign-in.
func NewUser(id Identity, now time.Time) User {
	return User{
		ID:          id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		AvatarURL:   id.PhotoURL,
		Role:        RoleUser,
		CreatedAt:   now,
	}
}
