package restConverter

import (
	"time"

	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/shopspring/decimal"
)

type PricePointResponse struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

type QuoteResponse struct {
	Symbol           string          `json:"symbol"`
	Currency         string          `json:"currency"`
	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	PreviousClose    decimal.Decimal `json:"previousClose"`
	DayChange        decimal.Decimal `json:"dayChange"`
	MarketCap        int64           `json:"marketCap,omitempty"`
	TrailingPE       float64         `json:"trailingPE,omitempty"`
	TrailingEPS      float64         `json:"trailingEps,omitempty"`
	FiftyTwoWeekHigh decimal.Decimal `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  decimal.Decimal `json:"fiftyTwoWeekLow"`
	Volume           int64           `json:"volume,omitempty"`
}

type StockOverviewResponse struct {
	Quote       QuoteResponse        `json:"quote"`
	History     []PricePointResponse `json:"history"`
	InWatchlist bool                 `json:"inWatchlist"`
}

type WatchlistItemResponse struct {
	Symbol      string           `json:"symbol"`
	LatestClose *decimal.Decimal `json:"latestClose"`
}

type PositionResponse struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	BuyPrice     decimal.Decimal `json:"buyPrice"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	ProfitLoss   decimal.Decimal `json:"profitLoss"`
}

type ValuationResponse struct {
	Positions       []PositionResponse `json:"positions"`
	Skipped         []string           `json:"skipped"`
	TotalInvested   decimal.Decimal    `json:"totalInvested"`
	TotalCurrent    decimal.Decimal    `json:"totalCurrent"`
	TotalProfitLoss decimal.Decimal    `json:"totalProfitLoss"`
}

type PredictionPointResponse struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type PredictionResponse struct {
	Symbol    string                    `json:"symbol"`
	Horizon   int                       `json:"horizon"`
	Slope     float64                   `json:"slope"`
	Intercept float64                   `json:"intercept"`
	Points    []PredictionPointResponse `json:"points"`
}

type ComparisonResponse struct {
	FirstSymbol  string               `json:"firstSymbol"`
	SecondSymbol string               `json:"secondSymbol"`
	First        []PricePointResponse `json:"first"`
	Second       []PricePointResponse `json:"second"`
}

func PricePoints(points []model.PricePoint) []PricePointResponse {
	resp := make([]PricePointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, PricePointResponse{
			Date:   p.Date.Format(time.DateOnly),
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		})
	}
	return resp
}

func Quote(quote model.StockQuote) QuoteResponse {
	return QuoteResponse{
		Symbol:           quote.Symbol,
		Currency:         quote.Currency,
		CurrentPrice:     quote.CurrentPrice,
		PreviousClose:    quote.PreviousCloseValue(),
		DayChange:        quote.DayChange(),
		MarketCap:        quote.MarketCapValue(),
		TrailingPE:       quote.TrailingPEValue(),
		TrailingEPS:      quote.TrailingEPSValue(),
		FiftyTwoWeekHigh: quote.FiftyTwoWeekHighValue(),
		FiftyTwoWeekLow:  quote.FiftyTwoWeekLowValue(),
		Volume:           quote.VolumeValue(),
	}
}

func StockOverview(overview model.StockOverview) StockOverviewResponse {
	return StockOverviewResponse{
		Quote:       Quote(overview.Quote),
		History:     PricePoints(overview.History),
		InWatchlist: overview.InWatchlist,
	}
}

func Watchlist(items []model.WatchlistItem) []WatchlistItemResponse {
	resp := make([]WatchlistItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, WatchlistItemResponse{
			Symbol:      item.Symbol,
			LatestClose: item.LatestClose,
		})
	}
	return resp
}

func Valuation(valuation model.PortfolioValuation) ValuationResponse {
	positions := make([]PositionResponse, 0, len(valuation.Positions))
	for _, p := range valuation.Positions {
		positions = append(positions, PositionResponse{
			Symbol:       p.Symbol,
			Quantity:     p.Quantity,
			BuyPrice:     p.BuyPrice,
			Invested:     p.Invested,
			CurrentValue: p.CurrentValue,
			ProfitLoss:   p.ProfitLoss,
		})
	}

	skipped := valuation.Skipped
	if skipped == nil {
		skipped = []string{}
	}

	return ValuationResponse{
		Positions:       positions,
		Skipped:         skipped,
		TotalInvested:   valuation.TotalInvested,
		TotalCurrent:    valuation.TotalCurrent,
		TotalProfitLoss: valuation.TotalProfitLoss,
	}
}

func Prediction(prediction model.StockPrediction) PredictionResponse {
	points := make([]PredictionPointResponse, 0, len(prediction.Points))
	for _, p := range prediction.Points {
		points = append(points, PredictionPointResponse{
			Date:  p.Date.Format(time.DateOnly),
			Close: p.Close,
		})
	}

	return PredictionResponse{
		Symbol:    prediction.Symbol,
		Horizon:   prediction.Horizon,
		Slope:     prediction.Slope,
		Intercept: prediction.Intercept,
		Points:    points,
	}
}

func Comparison(comparison model.Comparison) ComparisonResponse {
	return ComparisonResponse{
		FirstSymbol:  comparison.FirstSymbol,
		SecondSymbol: comparison.SecondSymbol,
		First:        PricePoints(comparison.First),
		Second:       PricePoints(comparison.Second),
	}
}
