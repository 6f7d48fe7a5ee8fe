package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/liberandum/api/internal/service"
)

const oauthStateCookie = "oauth_state"

type oauthHandler struct {
	googleService *service.GoogleService
}

func NewOAuthHandler(googleService *service.GoogleService) *oauthHandler {
	return &oauthHandler{googleService: googleService}
}

// GoogleLogin redirects to the Google consent screen with a random state
// bound to a short-lived cookie.
func (h *oauthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.googleService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "google authentication is not configured")
		return
	}

	state, err := randomState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/oauth/google",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.googleService.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the redirect flow: the state must match the
// cookie, then the code is exchanged and a session issued.
func (h *oauthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.googleService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "google authentication is not configured")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respondError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	// State is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth/oauth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	identity, err := h.googleService.ExchangeCode(r.Context(), code)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	_, pair, err := h.googleService.Authenticate(r.Context(), identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// GoogleAuth authenticates without the redirect dance: the caller posts
// either an authorization code or a signed ID token credential.
func (h *oauthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	if !h.googleService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "google authentication is not configured")
		return
	}

	var req struct {
		Code       string `json:"code"`
		Credential string `json:"credential"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var identity *service.GoogleIdentity
	var err error
	switch {
	case req.Credential != "":
		identity, err = h.googleService.VerifyCredential(r.Context(), req.Credential)
	case req.Code != "":
		identity, err = h.googleService.ExchangeCode(r.Context(), req.Code)
	default:
		respondError(w, http.StatusBadRequest, "code or credential is required")
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	_, pair, err := h.googleService.Authenticate(r.Context(), identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

// GoogleStatus reports whether federated login is available.
func (h *oauthHandler) GoogleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		"enabled": h.googleService.Enabled(),
	})
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
