package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
)

// fakeAccountRepo is an in-memory AccountRepository for service tests.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	nextID   int

	createCalls int
	updateCalls int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*model.Account{}}
}

func (r *fakeAccountRepo) add(a *model.Account) *model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		r.nextID++
		a.ID = "acct-" + strconv.Itoa(r.nextID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	clone := *a
	r.accounts[a.ID] = &clone
	return a
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	r.createCalls++
	for _, existing := range r.accounts {
		if existing.Email == account.Email || existing.Name == account.Name {
			r.mu.Unlock()
			return repository.ErrDuplicateAccount
		}
	}
	r.mu.Unlock()

	if account.AuthProvider == "" {
		account.AuthProvider = model.ProviderLocal
	}
	if account.Role == "" {
		account.Role = model.RoleUser
	}
	r.add(account)
	return nil
}

func (r *fakeAccountRepo) ByID(ctx context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAccountRepo) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.find(func(a *model.Account) bool { return a.Email == email })
}

func (r *fakeAccountRepo) ByName(ctx context.Context, name string) (*model.Account, error) {
	return r.find(func(a *model.Account) bool { return a.Name == name })
}

func (r *fakeAccountRepo) ByRefreshToken(ctx context.Context, refreshToken string) (*model.Account, error) {
	return r.find(func(a *model.Account) bool {
		return a.RefreshToken != "" && a.RefreshToken == refreshToken
	})
}

func (r *fakeAccountRepo) find(match func(*model.Account) bool) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if match(a) {
			clone := *a
			return &clone, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepo) Update(ctx context.Context, id string, update model.AccountUpdate) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++

	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	if update.Email != nil || update.Name != nil {
		for otherID, other := range r.accounts {
			if otherID == id {
				continue
			}
			if update.Email != nil && other.Email == *update.Email {
				return nil, repository.ErrDuplicateAccount
			}
			if update.Name != nil && other.Name == *update.Name {
				return nil, repository.ErrDuplicateAccount
			}
		}
	}

	if update.Email != nil {
		a.Email = *update.Email
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.FirstName != nil {
		a.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		a.LastName = *update.LastName
	}
	if update.HashedPassword != nil {
		a.HashedPassword = *update.HashedPassword
	}
	if update.AuthProvider != nil {
		a.AuthProvider = *update.AuthProvider
	}
	if update.IsVerified != nil {
		a.IsVerified = *update.IsVerified
	}

	clone := *a
	return &clone, nil
}

func (r *fakeAccountRepo) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, accessExpires, refreshExpires time.Time) error {
	return r.mutate(id, func(a *model.Account) {
		a.AccessToken = accessToken
		a.RefreshToken = refreshToken
		a.AccessTokenExpiresAt = &accessExpires
		a.RefreshTokenExpiresAt = &refreshExpires
	})
}

func (r *fakeAccountRepo) UpdateAccessToken(ctx context.Context, id, accessToken string, accessExpires time.Time) error {
	return r.mutate(id, func(a *model.Account) {
		a.AccessToken = accessToken
		a.AccessTokenExpiresAt = &accessExpires
	})
}

func (r *fakeAccountRepo) ClearTokens(ctx context.Context, id string) error {
	return r.mutate(id, func(a *model.Account) {
		a.AccessToken = ""
		a.RefreshToken = ""
		a.AccessTokenExpiresAt = nil
		a.RefreshTokenExpiresAt = nil
	})
}

func (r *fakeAccountRepo) SetVerified(ctx context.Context, id string) error {
	return r.mutate(id, func(a *model.Account) { a.IsVerified = true })
}

func (r *fakeAccountRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.mutate(id, func(a *model.Account) { a.IsActive = active })
}

func (r *fakeAccountRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	return r.mutate(id, func(a *model.Account) { a.Role = role })
}

func (r *fakeAccountRepo) mutate(id string, fn func(*model.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	fn(a)
	return nil
}

func (r *fakeAccountRepo) ListByProvider(ctx context.Context, provider model.Provider) ([]model.Account, error) {
	return r.filter(func(a *model.Account) bool { return a.AuthProvider == provider }), nil
}

func (r *fakeAccountRepo) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	return r.filter(func(a *model.Account) bool { return a.Role == role }), nil
}

func (r *fakeAccountRepo) ListActive(ctx context.Context) ([]model.Account, error) {
	return r.filter(func(a *model.Account) bool { return a.IsActive }), nil
}

func (r *fakeAccountRepo) filter(match func(*model.Account) bool) []model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Account
	for _, a := range r.accounts {
		if match(a) {
			out = append(out, *a)
		}
	}
	return out
}

// fakeCodeRepo is an in-memory CodeRepository mirroring the atomic
// consume-once semantics of the real one.
type fakeCodeRepo struct {
	mu     sync.Mutex
	codes  []*model.OneTimeCode
	nextID int
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{}
}

func (r *fakeCodeRepo) Create(ctx context.Context, code *model.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if code.ID == "" {
		code.ID = "code-" + strconv.Itoa(r.nextID)
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	clone := *code
	r.codes = append(r.codes, &clone)
	return nil
}

func (r *fakeCodeRepo) Consume(ctx context.Context, email, code string, purpose model.CodePurpose) (*model.OneTimeCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, c := range r.codes {
		if c.Email == email && c.Code == code && c.Purpose == purpose && c.UsedAt == nil && c.ExpiresAt.After(now) {
			c.UsedAt = &now
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrCodeNotFound
}

func (r *fakeCodeRepo) InvalidateByEmailAndPurpose(ctx context.Context, email string, purpose model.CodePurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.codes[:0]
	for _, c := range r.codes {
		if c.Email == email && c.Purpose == purpose && c.UsedAt == nil {
			continue
		}
		kept = append(kept, c)
	}
	r.codes = kept
	return nil
}

// latestCode returns the newest unconsumed code for (email, purpose), or ""
// when none is pending.
func (r *fakeCodeRepo) latestCode(email string, purpose model.CodePurpose) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if c.Email == email && c.Purpose == purpose && c.UsedAt == nil {
			return c.Code
		}
	}
	return ""
}

func (r *fakeCodeRepo) pendingCount(email string, purpose model.CodePurpose) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.codes {
		if c.Email == email && c.Purpose == purpose && c.UsedAt == nil {
			n++
		}
	}
	return n
}
