package dbModel

import "github.com/shopspring/decimal"

type PortfolioLine struct {
	Username string          `db:"username"`
	Symbol   string          `db:"stock"`
	Quantity decimal.Decimal `db:"quantity"`
	BuyPrice decimal.Decimal `db:"buy_price"`
}
