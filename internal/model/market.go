package model

import (
	"time"
)

// Asset is an aggregated market listing for a single token.
type Asset struct {
	ID          string    `db:"id" json:"id"`
	CoingeckoID string    `db:"coingecko_id" json:"coingecko_id"`
	Symbol      string    `db:"symbol" json:"symbol"`
	Name        string    `db:"name" json:"name"`
	PriceUSD    float64   `db:"price_usd" json:"price_usd"`
	MarketCap   float64   `db:"market_cap" json:"market_cap"`
	Volume24h   float64   `db:"volume_24h" json:"volume_24h"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Exchange is an aggregated market listing for a trading venue.
type Exchange struct {
	ID           string    `db:"id" json:"id"`
	CoingeckoID  string    `db:"coingecko_id" json:"coingecko_id"`
	Name         string    `db:"name" json:"name"`
	TrustScore   int       `db:"trust_score" json:"trust_score"`
	Volume24hBTC float64   `db:"volume_24h_btc" json:"volume_24h_btc"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
