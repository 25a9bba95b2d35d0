package valuationEngine

import (
	"testing"

	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(symbol string, quantity, buyPrice string) model.PortfolioLine {
	return model.PortfolioLine{
		Symbol:   symbol,
		Quantity: decimal.RequireFromString(quantity),
		BuyPrice: decimal.RequireFromString(buyPrice),
	}
}

func pricesFromMap(prices map[string]string) PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		p, ok := prices[symbol]
		if !ok {
			return decimal.Zero, false
		}
		return decimal.RequireFromString(p), true
	}
}

func TestEvaluate(t *testing.T) {
	lines := []model.PortfolioLine{
		line("AAPL", "10", "100"),
		line("MSFT", "2", "300"),
	}
	lookup := pricesFromMap(map[string]string{"AAPL": "150", "MSFT": "250"})

	v := Evaluate(lines, lookup)

	require.Len(t, v.Positions, 2)
	assert.Empty(t, v.Skipped)

	assert.Equal(t, "AAPL", v.Positions[0].Symbol)
	assert.True(t, v.Positions[0].Invested.Equal(decimal.RequireFromString("1000")))
	assert.True(t, v.Positions[0].CurrentValue.Equal(decimal.RequireFromString("1500")))
	assert.True(t, v.Positions[0].ProfitLoss.Equal(decimal.RequireFromString("500")))

	assert.Equal(t, "MSFT", v.Positions[1].Symbol)
	assert.True(t, v.Positions[1].ProfitLoss.Equal(decimal.RequireFromString("-100")))

	assert.True(t, v.TotalInvested.Equal(decimal.RequireFromString("1600")))
	assert.True(t, v.TotalCurrent.Equal(decimal.RequireFromString("2000")))
	assert.True(t, v.TotalProfitLoss.Equal(decimal.RequireFromString("400")))
}

func TestEvaluateMissingPriceExcludedEverywhere(t *testing.T) {
	lines := []model.PortfolioLine{
		line("AAPL", "10", "100"),
		line("GONE", "5", "50"),
		line("MSFT", "2", "300"),
	}
	lookup := pricesFromMap(map[string]string{"AAPL": "150", "MSFT": "250"})

	v := Evaluate(lines, lookup)

	require.Len(t, v.Positions, 2)
	assert.Equal(t, []string{"GONE"}, v.Skipped)

	// skipped line contributes nothing, not zero
	assert.True(t, v.TotalInvested.Equal(decimal.RequireFromString("1600")))
	assert.True(t, v.TotalCurrent.Equal(decimal.RequireFromString("2000")))
	assert.True(t, v.TotalProfitLoss.Equal(v.TotalCurrent.Sub(v.TotalInvested)))
}

func TestEvaluateEmptyInput(t *testing.T) {
	v := Evaluate(nil, pricesFromMap(nil))

	assert.Empty(t, v.Positions)
	assert.Empty(t, v.Skipped)
	assert.True(t, v.TotalInvested.IsZero())
	assert.True(t, v.TotalCurrent.IsZero())
	assert.True(t, v.TotalProfitLoss.IsZero())
}

func TestEvaluateKeepsInputOrder(t *testing.T) {
	lines := []model.PortfolioLine{
		line("ZZZ", "1", "1"),
		line("AAA", "1", "1"),
		line("MMM", "1", "1"),
		line("AAA", "2", "3"),
	}
	lookup := pricesFromMap(map[string]string{"ZZZ": "1", "AAA": "1", "MMM": "1"})

	v := Evaluate(lines, lookup)

	require.Len(t, v.Positions, 4)
	got := make([]string, 0, len(v.Positions))
	for _, p := range v.Positions {
		got = append(got, p.Symbol)
	}
	// same order as input, duplicate symbols kept additive not merged
	assert.Equal(t, []string{"ZZZ", "AAA", "MMM", "AAA"}, got)
}

func TestEvaluateAllPricesMissing(t *testing.T) {
	lines := []model.PortfolioLine{
		line("AAPL", "10", "100"),
		line("MSFT", "2", "300"),
	}

	v := Evaluate(lines, pricesFromMap(nil))

	assert.Empty(t, v.Positions)
	assert.Equal(t, []string{"AAPL", "MSFT"}, v.Skipped)
	assert.True(t, v.TotalInvested.IsZero())
	assert.True(t, v.TotalCurrent.IsZero())
	assert.True(t, v.TotalProfitLoss.IsZero())
}
