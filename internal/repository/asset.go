package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/liberandum/api/internal/model"
)

var ErrAssetNotFound = errors.New("asset not found")

// AssetSort names the columns asset listings may be ordered by.
const (
	AssetSortMarketCap = "market_cap"
	AssetSortVolume    = "volume"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	ByID(ctx context.Context, id string) (*model.Asset, error)
	List(ctx context.Context, offset, limit int, sort string) ([]model.Asset, error)
	Search(ctx context.Context, query string, limit int) ([]model.Asset, error)
	Update(ctx context.Context, asset *model.Asset) error
	Delete(ctx context.Context, id string) error
}

type assetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO assets (id, coingecko_id, symbol, name, price_usd, market_cap, volume_24h, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.CoingeckoID, asset.Symbol, asset.Name,
		asset.PriceUSD, asset.MarketCap, asset.Volume24h, asset.UpdatedAt,
	)
	return err
}

func (r *assetRepository) ByID(ctx context.Context, id string) (*model.Asset, error) {
	asset := &model.Asset{}
	err := r.db.GetContext(ctx, asset, `SELECT * FROM assets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (r *assetRepository) List(ctx context.Context, offset, limit int, sort string) ([]model.Asset, error) {
	order := "market_cap DESC"
	if sort == AssetSortVolume {
		order = "volume_24h DESC"
	}

	var assets []model.Asset
	query := `SELECT * FROM assets ORDER BY ` + order + ` LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &assets, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Search(ctx context.Context, query string, limit int) ([]model.Asset, error) {
	var assets []model.Asset
	pattern := "%" + query + "%"
	q := `
		SELECT * FROM assets
		WHERE LOWER(name) LIKE LOWER($1) OR LOWER(symbol) LIKE LOWER($2) OR LOWER(coingecko_id) LIKE LOWER($3)
		ORDER BY market_cap DESC
		LIMIT $4
	`
	err := r.db.SelectContext(ctx, &assets, q, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset *model.Asset) error {
	asset.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE assets
		SET coingecko_id = $1, symbol = $2, name = $3, price_usd = $4,
		    market_cap = $5, volume_24h = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		asset.CoingeckoID, asset.Symbol, asset.Name, asset.PriceUSD,
		asset.MarketCap, asset.Volume24h, asset.UpdatedAt, asset.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAssetNotFound
	}
	return nil
}
