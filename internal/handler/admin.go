package handler

import (
	"net/http"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
	"github.com/liberandum/api/internal/service"
)

// adminHandler exposes the operator surface: account lifecycle control and
// market reference data CRUD.
type adminHandler struct {
	accountService *service.AccountService
	assets         repository.AssetRepository
	exchanges      repository.ExchangeRepository
}

func NewAdminHandler(accountService *service.AccountService, assets repository.AssetRepository, exchanges repository.ExchangeRepository) *adminHandler {
	return &adminHandler{
		accountService: accountService,
		assets:         assets,
		exchanges:      exchanges,
	}
}

// ListAccounts filters by provider, role, or active status. Exactly one
// filter applies; active wins if several are given, then provider, then
// role.
func (h *adminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		accounts []model.Account
		err      error
	)
	switch {
	case q.Get("active") == "true":
		accounts, err = h.accountService.ListActive(r.Context())
	case q.Get("provider") != "":
		accounts, err = h.accountService.ListByProvider(r.Context(), model.Provider(q.Get("provider")))
	case q.Get("role") != "":
		accounts, err = h.accountService.ListByRole(r.Context(), model.Role(q.Get("role")))
	default:
		accounts, err = h.accountService.ListActive(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountListResponse(accounts))
}

func (h *adminHandler) AccountByID(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *adminHandler) ChangeAccountRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountService.ChangeRole(r.Context(), r.PathValue("id"), model.Role(req.Role))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *adminHandler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	err := h.accountService.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "account activated"})
}

func (h *adminHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	err := h.accountService.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "account deactivated"})
}

type assetRequest struct {
	CoingeckoID string  `json:"coingecko_id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	PriceUSD    float64 `json:"price_usd"`
	MarketCap   float64 `json:"market_cap"`
	Volume24h   float64 `json:"volume_24h"`
}

func (h *adminHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CoingeckoID == "" || req.Symbol == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "coingecko_id, symbol and name are required")
		return
	}

	asset := &model.Asset{
		CoingeckoID: req.CoingeckoID,
		Symbol:      req.Symbol,
		Name:        req.Name,
		PriceUSD:    req.PriceUSD,
		MarketCap:   req.MarketCap,
		Volume24h:   req.Volume24h,
	}
	err := h.assets.Create(r.Context(), asset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}

func (h *adminHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	asset := &model.Asset{
		ID:          r.PathValue("id"),
		CoingeckoID: req.CoingeckoID,
		Symbol:      req.Symbol,
		Name:        req.Name,
		PriceUSD:    req.PriceUSD,
		MarketCap:   req.MarketCap,
		Volume24h:   req.Volume24h,
	}
	err := h.assets.Update(r.Context(), asset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

func (h *adminHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	err := h.assets.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

type exchangeRequest struct {
	CoingeckoID  string  `json:"coingecko_id"`
	Name         string  `json:"name"`
	TrustScore   int     `json:"trust_score"`
	Volume24hBTC float64 `json:"volume_24h_btc"`
}

func (h *adminHandler) CreateExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CoingeckoID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "coingecko_id and name are required")
		return
	}

	exchange := &model.Exchange{
		CoingeckoID:  req.CoingeckoID,
		Name:         req.Name,
		TrustScore:   req.TrustScore,
		Volume24hBTC: req.Volume24hBTC,
	}
	err := h.exchanges.Create(r.Context(), exchange)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, exchange)
}

func (h *adminHandler) UpdateExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	exchange := &model.Exchange{
		ID:           r.PathValue("id"),
		CoingeckoID:  req.CoingeckoID,
		Name:         req.Name,
		TrustScore:   req.TrustScore,
		Volume24hBTC: req.Volume24hBTC,
	}
	err := h.exchanges.Update(r.Context(), exchange)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, exchange)
}

func (h *adminHandler) DeleteExchange(w http.ResponseWriter, r *http.Request) {
	err := h.exchanges.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "exchange deleted"})
}
