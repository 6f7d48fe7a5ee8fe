package model

import (
	"time"
)

// TokenKind distinguishes the two bearer credential types carried in the
// JWT "kind" claim.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// TokenPair is what every successful issuance or refresh returns.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}
