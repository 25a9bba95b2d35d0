package yahooApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/internal/externalApi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *YahooApi {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.YahooApi.Url = srv.URL

	return New(cfg)
}

func TestGetChart(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "6mo", r.URL.Query().Get("range"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"chart": {
				"result": [{
					"meta": {"currency": "USD", "symbol": "AAPL"},
					"timestamp": [1717372800, 1717459200],
					"indicators": {"quote": [{
						"open": [100.5, 102.0],
						"high": [103.0, 104.0],
						"low": [99.0, 101.0],
						"close": [102.0, 103.5],
						"volume": [1000, 2000]
					}]}
				}],
				"error": null
			}
		}`))
	})

	points, err := api.GetChart(context.Background(), "AAPL", "6mo")
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1717372800, 0).UTC(), points[0].Date)
	assert.Equal(t, "102", points[0].Close.String())
	assert.Equal(t, int64(1000), points[0].Volume)
	assert.Equal(t, "103.5", points[1].Close.String())
	assert.True(t, points[0].Date.Before(points[1].Date))
}

func TestGetChartUnknownSymbol(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart": {"result": [], "error": {"code": "Not Found"}}}`))
	})

	_, err := api.GetChart(context.Background(), "NOPE", "6mo")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"quoteResponse": {
				"result": [{
					"symbol": "AAPL",
					"currency": "USD",
					"regularMarketPrice": 195.5,
					"regularMarketPreviousClose": 193.0,
					"marketCap": 3000000000000,
					"trailingPE": 32.5,
					"epsTrailingTwelveMonths": 6.01,
					"fiftyTwoWeekHigh": 199.62,
					"fiftyTwoWeekLow": 164.08,
					"regularMarketVolume": 52000000
				}],
				"error": null
			}
		}`))
	})

	quote, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, "195.5", quote.CurrentPrice.String())
	assert.Equal(t, "2.5", quote.DayChange().String())
	assert.Equal(t, int64(3000000000000), quote.MarketCapValue())
	assert.InDelta(t, 32.5, quote.TrailingPEValue(), 1e-9)
	assert.Equal(t, "199.62", quote.FiftyTwoWeekHighValue().String())
	assert.Equal(t, int64(52000000), quote.VolumeValue())
}

// Funds and fresh listings come back without P/E, EPS or a 52w range; the
// accessors must fall back instead of failing.
func TestGetQuotePartialMetadata(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"quoteResponse": {
				"result": [{
					"symbol": "NEWIPO",
					"currency": "USD",
					"regularMarketPrice": 42.0
				}],
				"error": null
			}
		}`))
	})

	quote, err := api.GetQuote(context.Background(), "NEWIPO")
	require.NoError(t, err)

	assert.Nil(t, quote.PreviousClose)
	assert.True(t, quote.DayChange().IsZero())
	assert.Equal(t, int64(0), quote.MarketCapValue())
	assert.Equal(t, float64(0), quote.TrailingPEValue())
	assert.True(t, quote.FiftyTwoWeekLowValue().IsZero())
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse": {"result": [], "error": null}}`))
	})

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}
