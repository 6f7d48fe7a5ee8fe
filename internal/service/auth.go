package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
	"github.com/liberandum/api/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrNameAlreadyExists  = errors.New("name already exists")
	ErrNotVerified        = errors.New("email not verified")
	ErrCodeDispatch       = errors.New("failed to send verification code")
)

// AuthService orchestrates the two-step registration and login flows. Both
// are gated by a one-time code; credentials alone never yield a session.
type AuthService struct {
	accounts       repository.AccountRepository
	accountService *AccountService
	otp            *OTPService
	tokens         *TokenService
}

func NewAuthService(accounts repository.AccountRepository, accountService *AccountService, otp *OTPService, tokens *TokenService) *AuthService {
	return &AuthService{
		accounts:       accounts,
		accountService: accountService,
		otp:            otp,
		tokens:         tokens,
	}
}

type RegisterInput struct {
	Email     string
	Name      string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an unverified local account and dispatches a
// registration code. Duplicate email and name are rejected before any
// write. If code dispatch fails the account row deliberately stays in
// place unverified; a later resend is the recovery path.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	err := validation.ValidateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateName(in.Name)
	if err != nil {
		return nil, err
	}
	err = validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}

	_, err = s.accounts.ByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	_, err = s.accounts.ByName(ctx, in.Name)
	if err == nil {
		return nil, ErrNameAlreadyExists
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check name: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Email:          in.Email,
		Name:           in.Name,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		HashedPassword: string(hashed),
		AuthProvider:   model.ProviderLocal,
		Role:           model.RoleUser,
		IsVerified:     false,
		IsActive:       true,
	}
	err = s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			// Concurrent registration lost the race at the storage boundary.
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account registered", "account_id", account.ID, "email", account.Email)

	err = s.otp.Send(ctx, account.Email, model.PurposeRegistration)
	if err != nil {
		// The unverified row stays; the caller can request a resend.
		slog.Error("registration code dispatch failed", "error", err, "email", account.Email)
		return account, fmt.Errorf("%w: %v", ErrCodeDispatch, err)
	}

	return account, nil
}

// VerifyRegistration completes registration: the account must exist and
// still be unverified, and the code must validate for the registration
// purpose. Success marks the account verified and issues a token pair.
func (s *AuthService) VerifyRegistration(ctx context.Context, email, code string) (*model.Account, *model.TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if account.IsVerified {
		return nil, nil, ErrAlreadyVerified
	}

	err = s.otp.Verify(ctx, email, code, model.PurposeRegistration)
	if err != nil {
		return nil, nil, err
	}

	account, err = s.accountService.VerifyEmail(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("registration verified", "account_id", account.ID, "email", account.Email)
	return account, pair, nil
}

// Login runs the password step of the two-factor flow. Unknown email, a
// missing password hash, a mismatch, and an inactive account all collapse
// to ErrInvalidCredentials at the boundary; each is logged distinctly.
// A verified account is required before any code is dispatched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if !account.IsVerified {
		slog.Info("login rejected: account not verified", "email", email)
		return nil, ErrNotVerified
	}

	err = s.otp.Send(ctx, account.Email, model.PurposeLogin)
	if err != nil {
		slog.Error("login code dispatch failed", "error", err, "email", account.Email)
		return nil, fmt.Errorf("%w: %v", ErrCodeDispatch, err)
	}

	return account, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			slog.Info("login rejected: unknown email", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.HasPassword() {
		slog.Info("login rejected: no password set, likely federated account", "email", email)
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(password))
	if err != nil {
		slog.Info("login rejected: password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		slog.Info("login rejected: account inactive", "email", email)
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// VerifyLogin completes the login flow: the account must exist and be
// verified, and the code must validate for the login purpose. Success
// issues a fresh token pair, replacing any prior session.
func (s *AuthService) VerifyLogin(ctx context.Context, email, code string) (*model.Account, *model.TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, ErrNotVerified
		}
		return nil, nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.IsVerified {
		return nil, nil, ErrNotVerified
	}

	err = s.otp.Verify(ctx, email, code, model.PurposeLogin)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("login verified", "account_id", account.ID, "email", account.Email)
	return account, pair, nil
}

// ResendCode re-dispatches a one-time code for a pending registration or
// login, discarding any prior unconsumed code for the same purpose.
func (s *AuthService) ResendCode(ctx context.Context, email string, purpose model.CodePurpose) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !purpose.Valid() {
		return fmt.Errorf("invalid code purpose: %q", purpose)
	}

	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		return err
	}

	switch purpose {
	case model.PurposeRegistration:
		if account.IsVerified {
			return ErrAlreadyVerified
		}
	case model.PurposeLogin:
		if !account.IsVerified {
			return ErrNotVerified
		}
	}

	err = s.otp.Send(ctx, account.Email, purpose)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodeDispatch, err)
	}
	return nil
}

// Logout clears the cached session; it succeeds even when no session
// exists.
func (s *AuthService) Logout(ctx context.Context, accountID string) error {
	err := s.tokens.Clear(ctx, accountID)
	if err != nil {
		return err
	}
	slog.Info("logged out", "account_id", accountID)
	return nil
}
