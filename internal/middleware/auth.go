package middleware

import (
	"net/http"
	"strings"

	"github.com/liberandum/api/internal/ctxkeys"
	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/service"
)

// AuthMiddleware checks for a Bearer access token and adds the account to
// the context if valid. Requests without a token continue unauthenticated;
// RequireAuth decides whether that matters.
func AuthMiddleware(tokenService *service.TokenService, accountService *service.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				// No token, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			accountID, err := tokenService.VerifyAccess(token)
			if err != nil {
				// Invalid token, continue unauthenticated
				next.ServeHTTP(w, r)
				return
			}

			account, err := accountService.ByID(r.Context(), accountID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Security: credential state never travels in the context
			account.HashedPassword = ""

			ctx := ctxkeys.WithAccount(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth ensures the caller presented a valid token for an active
// account.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := ctxkeys.Account(r.Context())
		if account == nil {
			unauthorized(w, "not authenticated")
			return
		}
		if !account.IsActive {
			forbidden(w, "account is deactivated")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin ensures the caller is an authenticated active admin.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		account := ctxkeys.Account(r.Context())
		if account.Role != model.RoleAdmin {
			forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"detail":"` + message + `"}`))
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"detail":"` + message + `"}`))
}
