package handler

import (
	"net/http"
	"strconv"

	"github.com/liberandum/api/internal/service"
)

type marketHandler struct {
	marketService *service.MarketService
}

func NewMarketHandler(marketService *service.MarketService) *marketHandler {
	return &marketHandler{marketService: marketService}
}

// ListAssets returns a page of assets, optionally ordered by market_cap or
// volume.
func (h *marketHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)
	sort := r.URL.Query().Get("sort")

	assets, err := h.marketService.ListAssets(r.Context(), page, limit, sort)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

func (h *marketHandler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", 0)

	assets, err := h.marketService.SearchAssets(r.Context(), query, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

func (h *marketHandler) AssetByID(w http.ResponseWriter, r *http.Request) {
	asset, err := h.marketService.AssetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

func (h *marketHandler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	exchanges, err := h.marketService.ListExchanges(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, exchanges)
}

func (h *marketHandler) SearchExchanges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", 0)

	exchanges, err := h.marketService.SearchExchanges(r.Context(), query, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, exchanges)
}

func (h *marketHandler) ExchangeByID(w http.ResponseWriter, r *http.Request) {
	exchange, err := h.marketService.ExchangeByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, exchange)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
