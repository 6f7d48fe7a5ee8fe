package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/liberandum/api/internal/model"
)

func newTestTokenService(repo *fakeAccountRepo) *TokenService {
	return NewTokenService(repo, "test-secret", 15*time.Minute, 30*24*time.Hour)
}

func activeAccount(repo *fakeAccountRepo) *model.Account {
	return repo.add(&model.Account{
		Email:        "alice@example.com",
		Name:         "alice",
		AuthProvider: model.ProviderLocal,
		Role:         model.RoleUser,
		IsVerified:   true,
		IsActive:     true,
	})
}

func TestIssuePairPersistsTokens(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	stored, err := repo.ByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if stored.AccessToken != pair.AccessToken || stored.RefreshToken != pair.RefreshToken {
		t.Fatal("issued tokens not persisted on account record")
	}
	if stored.RefreshTokenExpiresAt == nil || !stored.RefreshTokenExpiresAt.Equal(pair.RefreshTokenExpiresAt) {
		t.Fatal("refresh expiry not persisted")
	}
}

func TestVerifyAccessRoundTrip(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	subject, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if subject != account.ID {
		t.Fatalf("expected subject %s, got %s", account.ID, subject)
	}

	// A refresh token must never pass the access check.
	_, err = svc.VerifyAccess(pair.RefreshToken)
	if !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken for refresh token, got %v", err)
	}
}

func TestRefreshMintsNewAccessKeepsRefresh(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // ensure a later iat so the token differs

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.RefreshToken != pair.RefreshToken {
		t.Fatal("refresh token must be retained unchanged")
	}
	if refreshed.AccessToken == pair.AccessToken {
		t.Fatal("expected a new access token")
	}
	if !refreshed.RefreshTokenExpiresAt.Equal(pair.RefreshTokenExpiresAt) {
		t.Fatal("refresh expiry must not move on refresh")
	}

	stored, _ := repo.ByID(context.Background(), account.ID)
	if stored.AccessToken != refreshed.AccessToken {
		t.Fatal("new access token not persisted")
	}
}

func TestRefreshRejectsAccessKindToken(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestReissueInvalidatesPriorRefreshToken(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	first, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("first IssuePair failed: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // later iat, distinct pair

	second, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("second IssuePair failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a distinct refresh token on re-issue")
	}

	// The overwritten refresh token is gone from the record and must be
	// refused despite its valid signature.
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for overwritten token, got %v", err)
	}

	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	if err != nil {
		t.Fatalf("current refresh token must still work: %v", err)
	}
}

func TestRefreshRejectsTokenNotOnRecord(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	// Logout drops the stored token; the JWT is still cryptographically
	// valid but must be refused.
	err = svc.Clear(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after clear, got %v", err)
	}
}

func TestRefreshRejectsInactiveAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	err = repo.SetActive(context.Background(), account.ID, false)
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for inactive account, got %v", err)
	}
}

func TestRefreshRejectsStoredExpiryPassed(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	pair, err := svc.IssuePair(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	// Backdate the stored expiry; the JWT's own exp is still in the future.
	past := time.Now().UTC().Add(-time.Minute)
	err = repo.mutate(account.ID, func(a *model.Account) {
		a.RefreshTokenExpiresAt = &past
	})
	if err != nil {
		t.Fatalf("mutate failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for passed stored expiry, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestTokenService(repo)
	account := activeAccount(repo)

	for i := 0; i < 2; i++ {
		err := svc.Clear(context.Background(), account.ID)
		if err != nil {
			t.Fatalf("Clear run %d failed: %v", i+1, err)
		}
	}

	// Unknown account is also not an error.
	err := svc.Clear(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Clear for unknown account failed: %v", err)
	}
}
