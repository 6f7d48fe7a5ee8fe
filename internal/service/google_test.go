package service

import (
	"context"
	"testing"

	"github.com/liberandum/api/internal/model"
)

func newTestGoogleService(repo *fakeAccountRepo) *GoogleService {
	tokens := newTestTokenService(repo)
	return NewGoogleService(repo, tokens, "client-id", "client-secret", "http://localhost:8000/auth/oauth/google/callback")
}

func TestGoogleAuthenticateCreatesVerifiedAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestGoogleService(repo)

	account, pair, err := svc.Authenticate(context.Background(), &GoogleIdentity{
		Email:      "Carol@Example.com",
		Name:       "Carol D",
		GivenName:  "Carol",
		FamilyName: "D",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if account.Email != "carol@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if account.AuthProvider != model.ProviderGoogle {
		t.Fatalf("expected google provider, got %s", account.AuthProvider)
	}
	if !account.IsVerified || !account.IsActive {
		t.Fatal("federated account must start verified and active")
	}
	if account.HasPassword() {
		t.Fatal("federated account must have no password")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
}

func TestGoogleAuthenticateNameFallsBackToLocalPart(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestGoogleService(repo)

	account, _, err := svc.Authenticate(context.Background(), &GoogleIdentity{
		Email: "dave@example.com",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if account.Name != "dave" {
		t.Fatalf("expected name fallback to local part, got %q", account.Name)
	}
}

func TestGoogleAuthenticateMergesLocalAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestGoogleService(repo)
	existing := repo.add(&model.Account{
		Email: "carol@example.com", Name: "carol",
		HashedPassword: "some-bcrypt-hash",
		AuthProvider:   model.ProviderLocal, Role: model.RoleProUser,
		IsVerified: false, IsActive: true,
	})

	account, _, err := svc.Authenticate(context.Background(), &GoogleIdentity{
		Email:      "carol@example.com",
		Name:       "Carol D",
		GivenName:  "Carol",
		FamilyName: "D",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if account.ID != existing.ID {
		t.Fatal("merge must keep the existing account id")
	}
	if account.AuthProvider != model.ProviderGoogle {
		t.Fatal("merge must force the provider to google")
	}
	if !account.IsVerified {
		t.Fatal("merge must force verified")
	}
	if account.Role != model.RoleProUser {
		t.Fatal("merge must not touch the role")
	}
	if account.Name != "Carol D" {
		t.Fatalf("merge must refresh the profile, got name %q", account.Name)
	}
}

func TestGoogleAuthenticateMergeKeepsNameOnCollision(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestGoogleService(repo)
	repo.add(&model.Account{
		Email: "other@example.com", Name: "Carol D",
		AuthProvider: model.ProviderLocal, Role: model.RoleUser,
		IsVerified: true, IsActive: true,
	})
	existing := repo.add(&model.Account{
		Email: "carol@example.com", Name: "carol",
		AuthProvider: model.ProviderLocal, Role: model.RoleUser,
		IsVerified: false, IsActive: true,
	})

	// The asserted display name belongs to another account; the merge keeps
	// the old name rather than failing.
	account, _, err := svc.Authenticate(context.Background(), &GoogleIdentity{
		Email: "carol@example.com",
		Name:  "Carol D",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if account.ID != existing.ID {
		t.Fatal("merge must keep the existing account id")
	}
	if account.Name != "carol" {
		t.Fatalf("expected retained name, got %q", account.Name)
	}
	if account.AuthProvider != model.ProviderGoogle {
		t.Fatal("merge must still force the provider to google")
	}
}
