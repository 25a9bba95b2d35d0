package yahooApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/internal/externalApi"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/internal/model/yahooModel"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", "stock-analyser/1.0")
	return &YahooApi{client: client}
}

// GetChart fetches daily OHLCV candles for the lookback window (e.g. "6mo").
// Returns externalApi.ErrNotFound when the symbol resolves to no candles.
func (a *YahooApi) GetChart(ctx context.Context, symbol, lookback string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := fmt.Sprintf("/v8/finance/chart/%s", symbol)
	params := map[string]string{
		"interval": "1d",
		"range":    lookback,
	}

	slog.Debug("YahooApi.GetChart start", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("lookback", lookback))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		SetContext(ctx).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	rawChart := yahooModel.RawChart{}
	err = json.Unmarshal(resp.Body(), &rawChart)
	if err != nil {
		slog.Error("can't unmarshal response into yahooModel.RawChart", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	points, err := a.parseRawChart(rawChart)
	if err != nil {
		if !errors.Is(err, externalApi.ErrNotFound) {
			slog.Error("can't parse raw chart", slog.String("err", err.Error()), slog.String("rqID", rqID))
		}
		return nil, err
	}

	slog.Debug("YahooApi.GetChart completed", slog.String("rqID", rqID), slog.Int("points", len(points)))

	return points, nil
}

// GetQuote fetches current price and optional instrument metadata.
func (a *YahooApi) GetQuote(ctx context.Context, symbol string) (model.StockQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v7/finance/quote"
	params := map[string]string{
		"symbols": symbol,
	}

	slog.Debug("YahooApi.GetQuote start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		SetContext(ctx).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.StockQuote{}, err
	}

	rawQuote := yahooModel.RawQuote{}
	err = json.Unmarshal(resp.Body(), &rawQuote)
	if err != nil {
		slog.Error("can't unmarshal response into yahooModel.RawQuote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.StockQuote{}, err
	}

	quote, err := a.parseRawQuote(rawQuote)
	if err != nil {
		if !errors.Is(err, externalApi.ErrNotFound) {
			slog.Error("can't parse raw quote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		}
		return model.StockQuote{}, err
	}

	slog.Debug("YahooApi.GetQuote completed", slog.String("rqID", rqID))

	return quote, nil
}

func (a *YahooApi) parseRawChart(rawChart yahooModel.RawChart) ([]model.PricePoint, error) {
	if len(rawChart.Chart.Result) == 0 {
		return nil, externalApi.ErrNotFound
	}

	result := rawChart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, externalApi.ErrNotFound
	}

	bars := result.Indicators.Quote[0]
	if len(bars.Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("timestamps and closes length mismatch: %d != %d", len(result.Timestamp), len(bars.Close))
	}

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// null candles appear on half-days, the provider sends zeroes
		if bars.Close[i] == 0 {
			continue
		}

		point := model.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: decimal.NewFromFloat(bars.Close[i]),
		}

		if i < len(bars.Open) {
			point.Open = decimal.NewFromFloat(bars.Open[i])
		}
		if i < len(bars.High) {
			point.High = decimal.NewFromFloat(bars.High[i])
		}
		if i < len(bars.Low) {
			point.Low = decimal.NewFromFloat(bars.Low[i])
		}
		if i < len(bars.Volume) {
			point.Volume = bars.Volume[i]
		}

		points = append(points, point)
	}

	if len(points) == 0 {
		return nil, externalApi.ErrNotFound
	}

	return points, nil
}

func (a *YahooApi) parseRawQuote(rawQuote yahooModel.RawQuote) (model.StockQuote, error) {
	if len(rawQuote.QuoteResponse.Result) == 0 {
		return model.StockQuote{}, externalApi.ErrNotFound
	}

	res := rawQuote.QuoteResponse.Result[0]
	if res.RegularMarketPrice == nil {
		return model.StockQuote{}, externalApi.ErrNotFound
	}

	quote := model.StockQuote{
		Symbol:       res.Symbol,
		Currency:     res.Currency,
		CurrentPrice: decimal.NewFromFloat(*res.RegularMarketPrice),
		MarketCap:    res.MarketCap,
		TrailingPE:   res.TrailingPE,
		TrailingEPS:  res.EpsTrailingTwelveMonths,
		Volume:       res.RegularMarketVolume,
	}

	if res.RegularMarketPreviousClose != nil {
		prev := decimal.NewFromFloat(*res.RegularMarketPreviousClose)
		quote.PreviousClose = &prev
	}
	if res.FiftyTwoWeekHigh != nil {
		high := decimal.NewFromFloat(*res.FiftyTwoWeekHigh)
		quote.FiftyTwoWeekHigh = &high
	}
	if res.FiftyTwoWeekLow != nil {
		low := decimal.NewFromFloat(*res.FiftyTwoWeekLow)
		quote.FiftyTwoWeekLow = &low
	}

	return quote, nil
}
