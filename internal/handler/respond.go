package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
	"github.com/liberandum/api/internal/service"
	"github.com/liberandum/api/internal/validation"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondServiceError maps the service error taxonomy onto HTTP status
// classes. Unmapped errors are server faults; their detail is logged, not
// leaked.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrNameAlreadyExists),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, service.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrInvalidAccessToken),
		errors.Is(err, service.ErrGoogleAuthFailed):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotVerified):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound),
		errors.Is(err, repository.ErrAssetNotFound),
		errors.Is(err, repository.ErrExchangeNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCodeDispatch):
		slog.Error("code dispatch failure", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to send verification code")
	default:
		slog.Error("internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// accountResponse is the account shape returned to callers. Credential
// state and cached tokens never leave the server.
type accountResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	AuthProvider model.Provider `json:"auth_provider"`
	Role         model.Role     `json:"role"`
	IsVerified   bool           `json:"is_verified"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    string         `json:"created_at"`
}

func newAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		AuthProvider: a.AuthProvider,
		Role:         a.Role,
		IsVerified:   a.IsVerified,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newAccountListResponse(accounts []model.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, newAccountResponse(&accounts[i]))
	}
	return out
}
