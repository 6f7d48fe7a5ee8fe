package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
)

var ErrInvalidCode = errors.New("invalid or expired verification code")

// OTPService issues and verifies short-lived numeric codes scoped to
// (email, purpose). A code is consumable at most once; re-sending discards
// any unconsumed prior codes for the same pair.
type OTPService struct {
	codes  repository.CodeRepository
	email  *EmailService
	expiry time.Duration
}

func NewOTPService(codes repository.CodeRepository, email *EmailService, expiry time.Duration) *OTPService {
	return &OTPService{
		codes:  codes,
		email:  email,
		expiry: expiry,
	}
}

// Send generates, stores, and dispatches a fresh code. Dispatch failure is
// surfaced to the caller; the flow treats it as a dependency fault.
func (s *OTPService) Send(ctx context.Context, email string, purpose model.CodePurpose) error {
	err := s.codes.InvalidateByEmailAndPurpose(ctx, email, purpose)
	if err != nil {
		slog.Warn("failed to invalidate prior codes", "error", err, "email", email, "purpose", purpose)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	record := &model.OneTimeCode{
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.expiry),
	}
	err = s.codes.Create(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	err = s.email.SendCode(ctx, email, code, purpose)
	if err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}

	return nil
}

// Verify consumes the code. An unknown, expired, or already-used code all
// report the same failure.
func (s *OTPService) Verify(ctx context.Context, email, code string, purpose model.CodePurpose) error {
	_, err := s.codes.Consume(ctx, email, code, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to verify code: %w", err)
	}
	return nil
}

// generateCode returns a uniformly random 6-digit code.
func generateCode() (string, error) {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
