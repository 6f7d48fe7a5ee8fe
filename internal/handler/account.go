package handler

import (
	"net/http"

	"github.com/liberandum/api/internal/ctxkeys"
	"github.com/liberandum/api/internal/service"
)

type accountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *accountHandler {
	return &accountHandler{accountService: accountService}
}

// Me returns the authenticated account.
func (h *accountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())
	respondJSON(w, http.StatusOK, newAccountResponse(account))
}

// UpdateMe applies a partial profile update. Absent fields are untouched;
// present empty strings overwrite.
func (h *accountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var req struct {
		Name      *string `json:"name"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.accountService.UpdateProfile(r.Context(), account.ID, service.ProfileUpdate{
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountResponse(updated))
}

// ChangePassword verifies the current password before storing the new one.
func (h *accountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.accountService.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
