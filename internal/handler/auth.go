package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/liberandum/api/internal/ctxkeys"
	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
	"github.com/liberandum/api/internal/service"
)

type authHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
}

func NewAuthHandler(authService *service.AuthService, tokenService *service.TokenService) *authHandler {
	return &authHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

type tokenResponse struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	AccessTokenExpiresAt  string `json:"access_token_expires_at"`
	RefreshTokenExpiresAt string `json:"refresh_token_expires_at"`
}

func newTokenResponse(pair *model.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt.UTC().Format(time.RFC3339),
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt.UTC().Format(time.RFC3339),
	}
}

// Register starts the two-step registration flow: the account is created
// unverified and a confirmation code is dispatched.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Name      string `json:"name"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":               "account registered, check your email for a confirmation code",
		"email":                 account.Email,
		"requires_verification": true,
	})
}

// VerifyRegistration completes registration with the emailed code and
// returns the first token pair.
func (h *authHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"otp_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	_, pair, err := h.authService.VerifyRegistration(r.Context(), req.Email, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// Login runs the password step. Every credential failure collapses to one
// generic message; success dispatches a login code.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "confirmation code sent to email",
		"email":   account.Email,
	})
}

// VerifyLogin completes the login flow and returns a fresh token pair.
func (h *authHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"otp_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	_, pair, err := h.authService.VerifyLogin(r.Context(), req.Email, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// Refresh mints a new access token from a valid refresh token.
func (h *authHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.tokenService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// ResendCode re-dispatches a one-time code for a pending registration or
// login.
func (h *authHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Purpose string `json:"purpose"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.ResendCode(r.Context(), req.Email, model.CodePurpose(req.Purpose))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Don't reveal which emails exist; report success anyway.
			slog.Info("code resend for unknown email", "email", req.Email)
		} else {
			respondServiceError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "confirmation code sent to email",
		"email":   req.Email,
	})
}

// Logout clears the cached session for the authenticated account.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	err := h.authService.Logout(r.Context(), account.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
		"email":   account.Email,
	})
}

// Health reports liveness of the auth subsystem.
func (h *authHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
