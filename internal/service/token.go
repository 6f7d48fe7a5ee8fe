package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidAccessToken  = errors.New("invalid or expired access token")
)

// TokenService mints and rotates the access/refresh bearer pair cached on
// the account record. Refresh tokens are validated by signature AND by
// store-side possession, so clearing or re-issuing tokens unilaterally
// invalidates a refresh token before its cryptographic expiry.
type TokenService struct {
	accounts      repository.AccountRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(accounts repository.AccountRepository, jwtSecret string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		accounts:      accounts,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *TokenService) sign(subject, kind string, now time.Time, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"kind": kind,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// verify checks the signature and the kind claim and returns the subject.
func (s *TokenService) verify(tokenString, kind string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims["kind"] != kind {
		return "", fmt.Errorf("wrong token kind: %v", claims["kind"])
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", errors.New("missing subject")
	}

	return subject, nil
}

// VerifyAccess validates an access-kind token and returns the account id
// it was issued for.
func (s *TokenService) VerifyAccess(tokenString string) (string, error) {
	subject, err := s.verify(tokenString, model.TokenKindAccess)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}
	return subject, nil
}

// IssuePair mints a fresh access/refresh pair and persists both tokens and
// both absolute expiries against the account record, replacing any prior
// session.
func (s *TokenService) IssuePair(ctx context.Context, accountID string) (*model.TokenPair, error) {
	now := time.Now().UTC()
	accessExpires := now.Add(s.accessExpiry)
	refreshExpires := now.Add(s.refreshExpiry)

	accessToken, err := s.sign(accountID, model.TokenKindAccess, now, accessExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(accountID, model.TokenKindRefresh, now, refreshExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	err = s.accounts.UpdateTokens(ctx, accountID, accessToken, refreshToken, accessExpires, refreshExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}

	return &model.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshTokenExpiresAt: refreshExpires,
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is retained unchanged. Every failed check collapses to
// ErrInvalidRefreshToken so the caller cannot tell which one tripped; the
// distinction is logged for operability.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	subject, err := s.verify(refreshToken, model.TokenKindRefresh)
	if err != nil {
		slog.Warn("refresh rejected: signature or kind check failed", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.accounts.ByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			slog.Warn("refresh rejected: token not on record", "subject", subject)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if account.ID != subject {
		slog.Warn("refresh rejected: subject mismatch", "subject", subject, "account_id", account.ID)
		return nil, ErrInvalidRefreshToken
	}

	if !account.IsActive {
		slog.Warn("refresh rejected: account inactive", "account_id", account.ID)
		return nil, ErrInvalidRefreshToken
	}

	now := time.Now().UTC()
	if account.RefreshTokenExpiresAt == nil || !account.RefreshTokenExpiresAt.After(now) {
		slog.Warn("refresh rejected: stored expiry missing or passed", "account_id", account.ID)
		return nil, ErrInvalidRefreshToken
	}

	accessExpires := now.Add(s.accessExpiry)
	accessToken, err := s.sign(account.ID, model.TokenKindAccess, now, accessExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	err = s.accounts.UpdateAccessToken(ctx, account.ID, accessToken, accessExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to persist access token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshTokenExpiresAt: *account.RefreshTokenExpiresAt,
	}, nil
}

// Clear drops the cached session. Logging out an account with no session
// succeeds; logout is idempotent.
func (s *TokenService) Clear(ctx context.Context, accountID string) error {
	err := s.accounts.ClearTokens(ctx, accountID)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}
