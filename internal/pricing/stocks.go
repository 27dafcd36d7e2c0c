package pricing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portfolyo/internal/models"
)

const (
	yahooChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// yahooChartResponse is the Yahoo Finance chart API response, reduced to the
// meta fields the source needs.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// StockSource fetches stock quotes from Yahoo Finance one symbol at a time
// (the chart endpoint has no batch form) and converts each quote from its
// native currency to the settlement currency.
type StockSource struct {
	httpClient *http.Client
	rates      *RateService
	baseURL    string // overridable for tests
	timeout    time.Duration
}

// NewStockSource creates a stock price source backed by Yahoo Finance.
func NewStockSource(httpClient *http.Client, rates *RateService, timeout time.Duration) *StockSource {
	return &StockSource{
		httpClient: httpClient,
		rates:      rates,
		baseURL:    yahooChartBaseURL,
		timeout:    timeout,
	}
}

// Name returns the source's display name.
func (s *StockSource) Name() string { return "Yahoo Finance" }

// Supports returns true for the stock asset class only.
func (s *StockSource) Supports(assetType models.AssetType) bool {
	return assetType == models.AssetTypeStock
}

// Fetch queries each symbol individually; one symbol failing never blocks the rest.
func (s *StockSource) Fetch(ctx context.Context, assets []models.Asset) (map[uint]Quote, []FetchError) {
	quotes := make(map[uint]Quote, len(assets))
	var fetchErrors []FetchError

	for _, asset := range assets {
		price, err := s.fetchQuote(ctx, asset.Symbol)
		if err != nil {
			fetchErrors = append(fetchErrors, FetchError{AssetID: asset.ID, Symbol: asset.Symbol, Err: err})
			continue
		}
		quotes[asset.ID] = Quote{Price: price, Source: s.Name()}
	}

	return quotes, fetchErrors
}

// fetchQuote fetches one symbol's market price converted to the settlement currency.
func (s *StockSource) fetchQuote(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", s.baseURL, symbol)
	headers := map[string]string{"User-Agent": yahooUserAgent}

	var resp yahooChartResponse
	if err := fetchJSON(ctx, s.httpClient, s.timeout, url, s.Name(), headers, &resp); err != nil {
		return 0, err
	}

	if resp.Chart.Error != nil {
		return 0, fmt.Errorf("chart error for %s: %s: %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return 0, fmt.Errorf("no quote results for %s", symbol)
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("zero price for %s", symbol)
	}

	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}
	converted, err := s.rates.Convert(ctx, meta.RegularMarketPrice, currency)
	if err != nil {
		return 0, fmt.Errorf("converting %s quote: %w", symbol, err)
	}
	return converted, nil
}
