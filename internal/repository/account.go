package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/liberandum/api/internal/model"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("email or name already exists")
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	ByID(ctx context.Context, id string) (*model.Account, error)
	ByEmail(ctx context.Context, email string) (*model.Account, error)
	ByName(ctx context.Context, name string) (*model.Account, error)
	ByRefreshToken(ctx context.Context, refreshToken string) (*model.Account, error)
	Update(ctx context.Context, id string, update model.AccountUpdate) (*model.Account, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, accessExpires, refreshExpires time.Time) error
	UpdateAccessToken(ctx context.Context, id, accessToken string, accessExpires time.Time) error
	ClearTokens(ctx context.Context, id string) error
	SetVerified(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateRole(ctx context.Context, id string, role model.Role) error
	ListByProvider(ctx context.Context, provider model.Provider) ([]model.Account, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	ListActive(ctx context.Context) ([]model.Account, error)
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts the account, assigning an id and defaults for any
// credential-state fields the caller left unset. Uniqueness of email and
// name is enforced by the storage schema, not application checks.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.AuthProvider == "" {
		account.AuthProvider = model.ProviderLocal
	}
	if account.Role == "" {
		account.Role = model.RoleUser
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO accounts (
			id, email, name, first_name, last_name, hashed_password,
			auth_provider, role, is_verified, is_active,
			access_token, refresh_token, access_token_expires_at, refresh_token_expires_at,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Email, account.Name, account.FirstName, account.LastName,
		account.HashedPassword, account.AuthProvider, account.Role,
		account.IsVerified, account.IsActive,
		account.AccessToken, account.RefreshToken,
		account.AccessTokenExpiresAt, account.RefreshTokenExpiresAt,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccount
		}
		return err
	}

	return nil
}

func (r *accountRepository) ByID(ctx context.Context, id string) (*model.Account, error) {
	return r.one(ctx, `SELECT * FROM accounts WHERE id = $1`, id)
}

func (r *accountRepository) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.one(ctx, `SELECT * FROM accounts WHERE email = $1`, email)
}

func (r *accountRepository) ByName(ctx context.Context, name string) (*model.Account, error) {
	return r.one(ctx, `SELECT * FROM accounts WHERE name = $1`, name)
}

// ByRefreshToken is the reverse lookup used by token refresh: the exact
// token string must still be on record for the session to be honored.
func (r *accountRepository) ByRefreshToken(ctx context.Context, refreshToken string) (*model.Account, error) {
	return r.one(ctx, `SELECT * FROM accounts WHERE refresh_token = $1 AND refresh_token != ''`, refreshToken)
}

func (r *accountRepository) one(ctx context.Context, query string, arg any) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.GetContext(ctx, account, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Update merges only the supplied fields. A nil pointer means "leave
// untouched"; a pointer to an empty value overwrites with the empty value.
func (r *accountRepository) Update(ctx context.Context, id string, update model.AccountUpdate) (*model.Account, error) {
	if update.IsZero() {
		return r.ByID(ctx, id)
	}

	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.FirstName != nil {
		add("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		add("last_name", *update.LastName)
	}
	if update.HashedPassword != nil {
		add("hashed_password", *update.HashedPassword)
	}
	if update.AuthProvider != nil {
		add("auth_provider", *update.AuthProvider)
	}
	if update.IsVerified != nil {
		add("is_verified", *update.IsVerified)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAccountNotFound
	}

	return r.ByID(ctx, id)
}

func (r *accountRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, accessExpires, refreshExpires time.Time) error {
	query := `
		UPDATE accounts
		SET access_token = $1, refresh_token = $2,
		    access_token_expires_at = $3, refresh_token_expires_at = $4
		WHERE id = $5
	`
	return r.exec(ctx, query, accessToken, refreshToken, accessExpires, refreshExpires, id)
}

func (r *accountRepository) UpdateAccessToken(ctx context.Context, id, accessToken string, accessExpires time.Time) error {
	query := `UPDATE accounts SET access_token = $1, access_token_expires_at = $2 WHERE id = $3`
	return r.exec(ctx, query, accessToken, accessExpires, id)
}

// ClearTokens empties all four session fields. Clearing an account that
// holds no session is not an error.
func (r *accountRepository) ClearTokens(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET access_token = '', refresh_token = '',
		    access_token_expires_at = NULL, refresh_token_expires_at = NULL
		WHERE id = $1
	`
	return r.exec(ctx, query, id)
}

func (r *accountRepository) SetVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE accounts SET is_verified = $1 WHERE id = $2`, true, id)
}

func (r *accountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE accounts SET is_active = $1 WHERE id = $2`, active, id)
}

func (r *accountRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	return r.exec(ctx, `UPDATE accounts SET role = $1 WHERE id = $2`, role, id)
}

func (r *accountRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) ListByProvider(ctx context.Context, provider model.Provider) ([]model.Account, error) {
	return r.list(ctx, `SELECT * FROM accounts WHERE auth_provider = $1 ORDER BY created_at`, provider)
}

func (r *accountRepository) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	return r.list(ctx, `SELECT * FROM accounts WHERE role = $1 ORDER BY created_at`, role)
}

func (r *accountRepository) ListActive(ctx context.Context) ([]model.Account, error) {
	return r.list(ctx, `SELECT * FROM accounts WHERE is_active = $1 ORDER BY created_at`, true)
}

func (r *accountRepository) list(ctx context.Context, query string, args ...any) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.SelectContext(ctx, &accounts, query, args...)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// isUniqueViolation detects unique constraint errors for both SQLite and
// PostgreSQL drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
