// Package valuationEngine computes investment performance for a set of
// portfolio lines against latest close prices. It is a pure computation: the
// caller supplies the lines and a price lookup, nothing is fetched or stored
// here.
package valuationEngine

import (
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/shopspring/decimal"
)

// PriceLookup resolves the latest close for a symbol. ok=false means the
// price is unavailable (delisted, fetch failure, unknown symbol).
type PriceLookup func(symbol string) (price decimal.Decimal, ok bool)

// Evaluate walks the lines in order and produces a per-line valuation plus
// aggregate totals. A line whose price is unavailable contributes nothing:
// it is left out of Positions and out of every total, and its symbol is
// recorded in Skipped. Multiple lines for the same symbol stay separate.
func Evaluate(lines []model.PortfolioLine, latestClose PriceLookup) model.PortfolioValuation {
	valuation := model.PortfolioValuation{
		Positions: make([]model.PositionValuation, 0, len(lines)),
	}

	for _, line := range lines {
		price, ok := latestClose(line.Symbol)
		if !ok {
			valuation.Skipped = append(valuation.Skipped, line.Symbol)
			continue
		}

		invested := line.Quantity.Mul(line.BuyPrice)
		currentValue := line.Quantity.Mul(price)

		valuation.Positions = append(valuation.Positions, model.PositionValuation{
			Symbol:       line.Symbol,
			Quantity:     line.Quantity,
			BuyPrice:     line.BuyPrice,
			Invested:     invested,
			CurrentValue: currentValue,
			ProfitLoss:   currentValue.Sub(invested),
		})

		valuation.TotalInvested = valuation.TotalInvested.Add(invested)
		valuation.TotalCurrent = valuation.TotalCurrent.Add(currentValue)
	}

	valuation.TotalProfitLoss = valuation.TotalCurrent.Sub(valuation.TotalInvested)

	return valuation
}
