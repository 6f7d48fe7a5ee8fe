package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
	"github.com/liberandum/api/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyVerified = errors.New("account already verified")
	ErrInvalidRole     = errors.New("invalid role")
)

// AccountService owns the account lifecycle transitions: verification,
// activation, role assignment, profile and password mutation.
type AccountService struct {
	accounts repository.AccountRepository
}

func NewAccountService(accounts repository.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

func (s *AccountService) ByID(ctx context.Context, id string) (*model.Account, error) {
	return s.accounts.ByID(ctx, id)
}

func (s *AccountService) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.accounts.ByEmail(ctx, email)
}

// VerifyEmail transitions unverified → verified. The transition is one-way;
// verifying an already-verified account is rejected.
func (s *AccountService) VerifyEmail(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.IsVerified {
		return nil, ErrAlreadyVerified
	}

	err = s.accounts.SetVerified(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify account: %w", err)
	}

	slog.Info("account verified", "account_id", id, "email", account.Email)
	return s.accounts.ByID(ctx, id)
}

func (s *AccountService) Activate(ctx context.Context, id string) error {
	return s.accounts.SetActive(ctx, id, true)
}

// Deactivate suspends the account. An inactive account fails every
// authentication check regardless of credential validity.
func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	return s.accounts.SetActive(ctx, id, false)
}

// ChangeRole validates the role against the closed set before touching the
// store.
func (s *AccountService) ChangeRole(ctx context.Context, id string, role model.Role) (*model.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	err := s.accounts.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	slog.Info("account role changed", "account_id", id, "role", role)
	return s.accounts.ByID(ctx, id)
}

// ProfileUpdate carries optional profile mutations. A nil field is not
// touched; a non-nil empty string overwrites with empty.
type ProfileUpdate struct {
	Name      *string
	FirstName *string
	LastName  *string
}

func (s *AccountService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*model.Account, error) {
	if update.Name != nil {
		err := validation.ValidateName(*update.Name)
		if err != nil {
			return nil, err
		}
	}

	return s.accounts.Update(ctx, id, model.AccountUpdate{
		Name:      update.Name,
		FirstName: update.FirstName,
		LastName:  update.LastName,
	})
}

// ChangePassword re-hashes and stores the password. Existing tokens stay
// valid; password change does not revoke sessions.
func (s *AccountService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	account, err := s.accounts.ByID(ctx, id)
	if err != nil {
		return err
	}

	if !account.HasPassword() {
		return fmt.Errorf("account has no password set: %w", ErrInvalidCredentials)
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(currentPassword))
	if err != nil {
		return ErrInvalidCredentials
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hashedStr := string(hashed)
	_, err = s.accounts.Update(ctx, id, model.AccountUpdate{HashedPassword: &hashedStr})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", "account_id", id)
	return nil
}

func (s *AccountService) ListByProvider(ctx context.Context, provider model.Provider) ([]model.Account, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("invalid provider: %q", provider)
	}
	return s.accounts.ListByProvider(ctx, provider)
}

func (s *AccountService) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return s.accounts.ListByRole(ctx, role)
}

func (s *AccountService) ListActive(ctx context.Context) ([]model.Account, error) {
	return s.accounts.ListActive(ctx)
}
