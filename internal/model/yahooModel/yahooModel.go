package yahooModel

// Shapes of the Yahoo Finance v8 chart and v7 quote responses, trimmed to the
// columns this service reads.

type RawChart struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  any           `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []ChartBars `json:"quote"`
	} `json:"indicators"`
}

type ChartMeta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
}

type ChartBars struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []int64   `json:"volume"`
}

type RawQuote struct {
	QuoteResponse struct {
		Result []QuoteResult `json:"result"`
		Error  any           `json:"error"`
	} `json:"quoteResponse"`
}

// Optional metadata stays as pointers: absent fields must be distinguishable
// from zero values downstream.
type QuoteResult struct {
	Symbol                     string   `json:"symbol"`
	Currency                   string   `json:"currency"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	MarketCap                  *int64   `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
	EpsTrailingTwelveMonths    *float64 `json:"epsTrailingTwelveMonths"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
}
