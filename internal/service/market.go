package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liberandum/api/internal/model"
	"github.com/liberandum/api/internal/repository"
)

var (
	ErrInvalidSort = errors.New("invalid sort field, available: market_cap, volume")
	ErrEmptyQuery  = errors.New("search query is required")
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 250
	maxSearchLimit   = 100
)

// MarketService serves aggregated market listings. Thin repository calls;
// no stateful protocol.
type MarketService struct {
	assets    repository.AssetRepository
	exchanges repository.ExchangeRepository
}

func NewMarketService(assets repository.AssetRepository, exchanges repository.ExchangeRepository) *MarketService {
	return &MarketService{assets: assets, exchanges: exchanges}
}

func (s *MarketService) ListAssets(ctx context.Context, page, limit int, sort string) ([]model.Asset, error) {
	if sort != "" && sort != repository.AssetSortMarketCap && sort != repository.AssetSortVolume {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	return s.assets.List(ctx, (page-1)*limit, limit, sort)
}

func (s *MarketService) SearchAssets(ctx context.Context, query string, limit int) ([]model.Asset, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 || limit > maxSearchLimit {
		limit = 20
	}

	return s.assets.Search(ctx, query, limit)
}

func (s *MarketService) AssetByID(ctx context.Context, id string) (*model.Asset, error) {
	return s.assets.ByID(ctx, id)
}

func (s *MarketService) ListExchanges(ctx context.Context) ([]model.Exchange, error) {
	return s.exchanges.List(ctx, defaultPageLimit)
}

func (s *MarketService) SearchExchanges(ctx context.Context, query string, limit int) ([]model.Exchange, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 || limit > maxSearchLimit {
		limit = 20
	}

	return s.exchanges.Search(ctx, query, limit)
}

func (s *MarketService) ExchangeByID(ctx context.Context, id string) (*model.Exchange, error) {
	return s.exchanges.ByID(ctx, id)
}
