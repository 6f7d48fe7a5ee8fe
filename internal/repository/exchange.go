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

var ErrExchangeNotFound = errors.New("exchange not found")

type ExchangeRepository interface {
	Create(ctx context.Context, exchange *model.Exchange) error
	ByID(ctx context.Context, id string) (*model.Exchange, error)
	List(ctx context.Context, limit int) ([]model.Exchange, error)
	Search(ctx context.Context, query string, limit int) ([]model.Exchange, error)
	Update(ctx context.Context, exchange *model.Exchange) error
	Delete(ctx context.Context, id string) error
}

type exchangeRepository struct {
	db *sqlx.DB
}

func NewExchangeRepository(db *sqlx.DB) ExchangeRepository {
	return &exchangeRepository{db: db}
}

func (r *exchangeRepository) Create(ctx context.Context, exchange *model.Exchange) error {
	if exchange.ID == "" {
		exchange.ID = uuid.New().String()
	}
	if exchange.UpdatedAt.IsZero() {
		exchange.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO exchanges (id, coingecko_id, name, trust_score, volume_24h_btc, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		exchange.ID, exchange.CoingeckoID, exchange.Name,
		exchange.TrustScore, exchange.Volume24hBTC, exchange.UpdatedAt,
	)
	return err
}

func (r *exchangeRepository) ByID(ctx context.Context, id string) (*model.Exchange, error) {
	exchange := &model.Exchange{}
	err := r.db.GetContext(ctx, exchange, `SELECT * FROM exchanges WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExchangeNotFound
	}
	if err != nil {
		return nil, err
	}
	return exchange, nil
}

func (r *exchangeRepository) List(ctx context.Context, limit int) ([]model.Exchange, error) {
	var exchanges []model.Exchange
	query := `SELECT * FROM exchanges ORDER BY volume_24h_btc DESC LIMIT $1`
	err := r.db.SelectContext(ctx, &exchanges, query, limit)
	if err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) Search(ctx context.Context, query string, limit int) ([]model.Exchange, error) {
	var exchanges []model.Exchange
	pattern := "%" + query + "%"
	q := `
		SELECT * FROM exchanges
		WHERE LOWER(name) LIKE LOWER($1) OR LOWER(coingecko_id) LIKE LOWER($2)
		ORDER BY volume_24h_btc DESC
		LIMIT $3
	`
	err := r.db.SelectContext(ctx, &exchanges, q, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) Update(ctx context.Context, exchange *model.Exchange) error {
	exchange.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE exchanges
		SET coingecko_id = $1, name = $2, trust_score = $3, volume_24h_btc = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		exchange.CoingeckoID, exchange.Name, exchange.TrustScore,
		exchange.Volume24hBTC, exchange.UpdatedAt, exchange.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExchangeNotFound
	}
	return nil
}

func (r *exchangeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exchanges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExchangeNotFound
	}
	return nil
}
