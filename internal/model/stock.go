package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PricePoint struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// StockQuote holds instrument metadata from the market data provider.
// The provider omits fields for some instrument types (funds have no P/E,
// fresh listings have no 52w range), so everything beyond symbol, currency
// and current price is nullable with an accessor defining the fallback.
type StockQuote struct {
	Symbol           string
	Currency         string
	CurrentPrice     decimal.Decimal
	PreviousClose    *decimal.Decimal
	MarketCap        *int64
	TrailingPE       *float64
	TrailingEPS      *float64
	FiftyTwoWeekHigh *decimal.Decimal
	FiftyTwoWeekLow  *decimal.Decimal
	Volume           *int64
}

// PreviousCloseValue falls back to the current price, making DayChange zero
// when the provider sent no previous close.
func (q StockQuote) PreviousCloseValue() decimal.Decimal {
	if q.PreviousClose == nil {
		return q.CurrentPrice
	}
	return *q.PreviousClose
}

func (q StockQuote) DayChange() decimal.Decimal {
	return q.CurrentPrice.Sub(q.PreviousCloseValue())
}

func (q StockQuote) MarketCapValue() int64 {
	if q.MarketCap == nil {
		return 0
	}
	return *q.MarketCap
}

func (q StockQuote) TrailingPEValue() float64 {
	if q.TrailingPE == nil {
		return 0
	}
	return *q.TrailingPE
}

func (q StockQuote) TrailingEPSValue() float64 {
	if q.TrailingEPS == nil {
		return 0
	}
	return *q.TrailingEPS
}

func (q StockQuote) FiftyTwoWeekHighValue() decimal.Decimal {
	if q.FiftyTwoWeekHigh == nil {
		return decimal.Zero
	}
	return *q.FiftyTwoWeekHigh
}

func (q StockQuote) FiftyTwoWeekLowValue() decimal.Decimal {
	if q.FiftyTwoWeekLow == nil {
		return decimal.Zero
	}
	return *q.FiftyTwoWeekLow
}

func (q StockQuote) VolumeValue() int64 {
	if q.Volume == nil {
		return 0
	}
	return *q.Volume
}

type StockOverview struct {
	Quote       StockQuote
	History     []PricePoint
	InWatchlist bool
}

type Comparison struct {
	FirstSymbol  string
	SecondSymbol string
	First        []PricePoint
	Second       []PricePoint
}
