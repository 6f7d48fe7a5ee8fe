package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrGoogleAuthFailed = errors.New("google authentication failed")

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

// GoogleIdentity is the verified assertion obtained from the provider.
type GoogleIdentity struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// GoogleService reconciles Google identities into local accounts and
// delegates session issuance to the TokenService. No account mutation
// happens before the identity is fully verified.
type GoogleService struct {
	accounts   repository.AccountRepository
	tokens     *TokenService
	oauth      *oauth2.Config
	httpClient *http.Client
}

func NewGoogleService(accounts repository.AccountRepository, tokens *TokenService, clientID, clientSecret, redirectURL string) *GoogleService {
	return &GoogleService{
		accounts: accounts,
		tokens:   tokens,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether Google OAuth credentials are configured.
func (s *GoogleService) Enabled() bool {
	return s.oauth.ClientID != ""
}

// AuthCodeURL builds the consent-screen redirect URL.
func (s *GoogleService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades an authorization code for the provider's access
// token and fetches the identity assertion behind it.
func (s *GoogleService) ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Warn("google token exchange failed", "error", err)
		return nil, ErrGoogleAuthFailed
	}

	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		slog.Warn("google userinfo request failed", "error", err)
		return nil, ErrGoogleAuthFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("google userinfo request rejected", "status", resp.StatusCode)
		return nil, ErrGoogleAuthFailed
	}

	var identity GoogleIdentity
	err = json.NewDecoder(resp.Body).Decode(&identity)
	if err != nil || identity.Email == "" {
		slog.Warn("google userinfo decode failed", "error", err)
		return nil, ErrGoogleAuthFailed
	}

	return &identity, nil
}

// VerifyCredential validates a signed ID token against Google's tokeninfo
// endpoint and checks the audience.
func (s *GoogleService) VerifyCredential(ctx context.Context, credential string) (*GoogleIdentity, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, ErrGoogleAuthFailed
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Warn("google tokeninfo request failed", "error", err)
		return nil, ErrGoogleAuthFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("google tokeninfo rejected credential", "status", resp.StatusCode)
		return nil, ErrGoogleAuthFailed
	}

	var claims struct {
		GoogleIdentity
		Audience string `json:"aud"`
	}
	err = json.NewDecoder(resp.Body).Decode(&claims)
	if err != nil || claims.Email == "" {
		slog.Warn("google tokeninfo decode failed", "error", err)
		return nil, ErrGoogleAuthFailed
	}

	if claims.Audience != s.oauth.ClientID {
		slog.Warn("google credential audience mismatch", "aud", claims.Audience)
		return nil, ErrGoogleAuthFailed
	}

	return &claims.GoogleIdentity, nil
}

// Authenticate reconciles the verified identity with the account store and
// issues a token pair. An unknown email creates a verified federated
// account; a known email is merged — profile refreshed, provider forced to
// google, verified forced true, id untouched. This merge-by-email upgrade
// of local accounts is deliberate.
func (s *GoogleService) Authenticate(ctx context.Context, identity *GoogleIdentity) (*model.Account, *model.TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(identity.Email))

	account, err := s.accounts.ByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, fmt.Errorf("failed to look up account: %w", err)
		}

		name := identity.Name
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}

		account = &model.Account{
			Email:        email,
			Name:         name,
			FirstName:    identity.GivenName,
			LastName:     identity.FamilyName,
			AuthProvider: model.ProviderGoogle,
			Role:         model.RoleUser,
			IsVerified:   true,
			IsActive:     true,
		}
		err = s.accounts.Create(ctx, account)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("federated account created", "account_id", account.ID, "email", email)
	} else {
		id := account.ID
		update := model.AccountUpdate{
			FirstName:    &identity.GivenName,
			LastName:     &identity.FamilyName,
			AuthProvider: ptr(model.ProviderGoogle),
			IsVerified:   ptr(true),
		}
		if identity.Name != "" {
			update.Name = &identity.Name
		}

		account, err = s.accounts.Update(ctx, id, update)
		if errors.Is(err, repository.ErrDuplicateAccount) {
			// The asserted display name collides with another account;
			// retry keeping the existing name.
			update.Name = nil
			account, err = s.accounts.Update(ctx, id, update)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to update account: %w", err)
		}
		slog.Info("federated account merged", "account_id", account.ID, "email", email)
	}

	pair, err := s.tokens.IssuePair(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	return account, pair, nil
}

func ptr[T any](v T) *T {
	return &v
}
