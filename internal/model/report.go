package model

import "time"

type ValuationReport struct {
	Username    string
	GeneratedAt time.Time
	Valuation   PortfolioValuation
	Watchlist   []WatchlistItem
}
