package model

import "github.com/shopspring/decimal"

type PortfolioLine struct {
	Symbol   string
	Quantity decimal.Decimal
	BuyPrice decimal.Decimal
}

type PositionValuation struct {
	Symbol       string
	Quantity     decimal.Decimal
	BuyPrice     decimal.Decimal
	Invested     decimal.Decimal
	CurrentValue decimal.Decimal
	ProfitLoss   decimal.Decimal
}

// PortfolioValuation aggregates only positions with an available price.
// Symbols whose price could not be resolved end up in Skipped and contribute
// nothing to the totals.
type PortfolioValuation struct {
	Positions       []PositionValuation
	Skipped         []string
	TotalInvested   decimal.Decimal
	TotalCurrent    decimal.Decimal
	TotalProfitLoss decimal.Decimal
}

type WatchlistItem struct {
	Symbol      string
	LatestClose *decimal.Decimal
}
