package model

import (
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser    Role = "user"
	RoleProUser Role = "pro_user"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProUser, RoleAdmin:
		return true
	}
	return false
}

// Provider identifies how an account authenticates.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderLocal, ProviderGoogle:
		return true
	}
	return false
}

type Account struct {
	ID             string   `db:"id"`
	Email          string   `db:"email"`
	Name           string   `db:"name"`
	FirstName      string   `db:"first_name"`
	LastName       string   `db:"last_name"`
	HashedPassword string   `db:"hashed_password"` // Empty for federated accounts
	AuthProvider   Provider `db:"auth_provider"`
	Role           Role     `db:"role"`
	IsVerified     bool     `db:"is_verified"`
	IsActive       bool     `db:"is_active"`

	// Cached session credentials; empty/NULL when no session
	AccessToken           string     `db:"access_token"`
	RefreshToken          string     `db:"refresh_token"`
	AccessTokenExpiresAt  *time.Time `db:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `db:"refresh_token_expires_at"`

	CreatedAt time.Time `db:"created_at"`
}

func (a *Account) HasPassword() bool {
	return a.HashedPassword != ""
}

// AccountUpdate is a partial update. A nil field is left untouched; a
// non-nil pointer to an empty value overwrites with the empty value.
type AccountUpdate struct {
	Email     *string
	Name      *string
	FirstName *string
	LastName  *string

	HashedPassword *string
	AuthProvider   *Provider
	IsVerified     *bool
}

// IsZero reports whether the update carries no fields at all.
func (u AccountUpdate) IsZero() bool {
	return u.Email == nil && u.Name == nil && u.FirstName == nil && u.LastName == nil &&
		u.HashedPassword == nil && u.AuthProvider == nil && u.IsVerified == nil
}
