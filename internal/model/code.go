package model

import (
	"time"
)

// CodePurpose scopes a one-time code to the flow that requested it.
type CodePurpose string

const (
	PurposeRegistration CodePurpose = "registration"
	PurposeLogin        CodePurpose = "login"
)

func (p CodePurpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposeLogin:
		return true
	}
	return false
}

// OneTimeCode is a short-lived numeric code delivered by email, scoped to
// (email, purpose) and consumable at most once.
type OneTimeCode struct {
	ID        string      `db:"id"`
	Email     string      `db:"email"`
	Purpose   CodePurpose `db:"purpose"`
	Code      string      `db:"code"`
	ExpiresAt time.Time   `db:"expires_at"`
	UsedAt    *time.Time  `db:"used_at"`
	CreatedAt time.Time   `db:"created_at"`
}

func (c *OneTimeCode) IsExpired() bool {
	return time.Now().UTC().After(c.ExpiresAt)
}

func (c *OneTimeCode) IsUsed() bool {
	return c.UsedAt != nil
}
