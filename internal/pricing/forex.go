package pricing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const erAPIBaseURL = "https://open.er-api.com/v6/latest/USD"

// RateService fetches a USD-based exchange-rate table and derives cross rates
// arithmetically instead of querying each pair: the settlement price of one
// unit of CODE is rate(base)/rate(CODE). The table is cached until Reset is
// called, so one refresh cycle performs at most one rate query.
type RateService struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	base       string // settlement currency, e.g. "TRY"
	timeout    time.Duration

	mu    sync.Mutex
	rates map[string]float64 // units of currency per 1 USD
}

// NewRateService creates a RateService converting into the given settlement currency.
func NewRateService(httpClient *http.Client, base string, timeout time.Duration) *RateService {
	return &RateService{
		httpClient: httpClient,
		baseURL:    erAPIBaseURL,
		base:       strings.ToUpper(base),
		timeout:    timeout,
	}
}

// Base returns the settlement currency code.
func (r *RateService) Base() string { return r.base }

// Reset drops the cached rate table. Call at the start of each refresh cycle.
func (r *RateService) Reset() {
	r.mu.Lock()
	r.rates = nil
	r.mu.Unlock()
}

type erAPIResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// load fetches the USD rate table if it is not already cached.
func (r *RateService) load(ctx context.Context) (map[string]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rates != nil {
		return r.rates, nil
	}

	var resp erAPIResponse
	if err := fetchJSON(ctx, r.httpClient, r.timeout, r.baseURL, "exchange rates", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result != "success" || len(resp.Rates) == 0 {
		return nil, fmt.Errorf("exchange-rate response not usable (result %q)", resp.Result)
	}

	r.rates = resp.Rates
	return r.rates, nil
}

// PricePer returns the settlement-currency price of one unit of the given
// currency, derived as rate(base)/rate(code) from the USD table.
func (r *RateService) PricePer(ctx context.Context, code string) (float64, error) {
	code = strings.ToUpper(code)
	if code == r.base {
		return 1.0, nil
	}

	rates, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	baseRate, ok := rates[r.base]
	if !ok || baseRate <= 0 {
		return 0, fmt.Errorf("no exchange rate for %s", r.base)
	}
	codeRate, ok := rates[code]
	if !ok || codeRate <= 0 {
		return 0, fmt.Errorf("no exchange rate for %s", code)
	}

	return baseRate / codeRate, nil
}

// Convert converts an amount denominated in fromCurrency into the settlement currency.
func (r *RateService) Convert(ctx context.Context, amount float64, fromCurrency string) (float64, error) {
	rate, err := r.PricePer(ctx, fromCurrency)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
