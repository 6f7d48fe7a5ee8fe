package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/liberandum/api/internal/model"
)

var ErrCodeNotFound = errors.New("code not found")

type CodeRepository interface {
	Create(ctx context.Context, code *model.OneTimeCode) error
	Consume(ctx context.Context, email, code string, purpose model.CodePurpose) (*model.OneTimeCode, error)
	InvalidateByEmailAndPurpose(ctx context.Context, email string, purpose model.CodePurpose) error
}

type codeRepository struct {
	db *sqlx.DB
}

func NewCodeRepository(db *sqlx.DB) CodeRepository {
	return &codeRepository{db: db}
}

func (r *codeRepository) Create(ctx context.Context, code *model.OneTimeCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO one_time_codes (id, email, purpose, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		code.ID, code.Email, code.Purpose, code.Code, code.ExpiresAt, code.CreatedAt,
	)
	return err
}

// Consume atomically marks the code as used and returns it. Only the first
// request for a given (email, code, purpose) can succeed; an expired or
// already-used code behaves exactly like an unknown one.
func (r *codeRepository) Consume(ctx context.Context, email, code string, purpose model.CodePurpose) (*model.OneTimeCode, error) {
	var c model.OneTimeCode
	now := time.Now().UTC()

	query := `
		UPDATE one_time_codes
		SET used_at = $1
		WHERE email = $2
		AND code = $3
		AND purpose = $4
		AND used_at IS NULL
		AND expires_at > $5
		RETURNING *
	`

	err := r.db.GetContext(ctx, &c, query, now, email, code, purpose, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// InvalidateByEmailAndPurpose discards unconsumed codes so a re-send leaves
// only the newest code valid.
func (r *codeRepository) InvalidateByEmailAndPurpose(ctx context.Context, email string, purpose model.CodePurpose) error {
	query := `DELETE FROM one_time_codes WHERE email = $1 AND purpose = $2 AND used_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, email, purpose)
	return err
}
