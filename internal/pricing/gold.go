package pricing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portfolyo/internal/models"
)

// GramsPerOunce is the fixed troy-ounce-to-gram conversion used for spot gold.
const GramsPerOunce = 31.1035

const (
	goldSpotBaseURL  = "https://api.gold-api.com/price/XAU"
	goldAPIv1BaseURL = "https://www.goldapi.io/api/XAU/USD"
)

// GoldSource prices gold-class assets from an ordered list of spot-price
// sources: a free spot source first, then a keyed provider when an API key is
// configured. The ounce-denominated USD spot price is converted to the
// settlement currency's per-gram price.
type GoldSource struct {
	httpClient *http.Client
	rates      *RateService
	apiKey     string
	timeout    time.Duration

	spotURL  string // overridable for tests
	keyedURL string // overridable for tests
}

// NewGoldSource creates a gold price source. apiKey may be empty, in which
// case only the free spot source is tried.
func NewGoldSource(httpClient *http.Client, rates *RateService, apiKey string, timeout time.Duration) *GoldSource {
	return &GoldSource{
		httpClient: httpClient,
		rates:      rates,
		apiKey:     apiKey,
		timeout:    timeout,
		spotURL:    goldSpotBaseURL,
		keyedURL:   goldAPIv1BaseURL,
	}
}

// Name returns the source's display name.
func (s *GoldSource) Name() string { return "Gold Spot" }

// Supports returns true for the gold asset class only.
func (s *GoldSource) Supports(assetType models.AssetType) bool {
	return assetType == models.AssetTypeGold
}

type goldSpotResponse struct {
	Price float64 `json:"price"`
}

// Fetch tries each configured spot source in order and applies the same
// per-gram settlement price to every gold asset in the batch.
func (s *GoldSource) Fetch(ctx context.Context, assets []models.Asset) (map[uint]Quote, []FetchError) {
	pricePerGram, sourceName, err := s.spotPricePerGram(ctx)
	if err != nil {
		fetchErrors := make([]FetchError, len(assets))
		for i, asset := range assets {
			fetchErrors[i] = FetchError{AssetID: asset.ID, Symbol: asset.Symbol, Err: err}
		}
		return nil, fetchErrors
	}

	quotes := make(map[uint]Quote, len(assets))
	for _, asset := range assets {
		quotes[asset.ID] = Quote{Price: pricePerGram, Source: sourceName}
	}
	return quotes, nil
}

// spotPricePerGram walks the source chain and returns the settlement-currency
// price of one gram of gold plus the name of the source that supplied it.
func (s *GoldSource) spotPricePerGram(ctx context.Context) (float64, string, error) {
	usdPerOunce, sourceName, err := s.spotPriceUSD(ctx)
	if err != nil {
		return 0, "", err
	}

	usdPerGram := usdPerOunce / GramsPerOunce
	converted, err := s.rates.Convert(ctx, usdPerGram, "USD")
	if err != nil {
		return 0, "", fmt.Errorf("converting gold price: %w", err)
	}
	return converted, sourceName, nil
}

func (s *GoldSource) spotPriceUSD(ctx context.Context) (float64, string, error) {
	var spot goldSpotResponse
	spotErr := fetchJSON(ctx, s.httpClient, s.timeout, s.spotURL, "gold spot", nil, &spot)
	if spotErr == nil && spot.Price > 0 {
		return spot.Price, "Gold Spot", nil
	}

	if s.apiKey == "" {
		if spotErr != nil {
			return 0, "", spotErr
		}
		return 0, "", fmt.Errorf("gold spot returned no usable price")
	}

	headers := map[string]string{"x-access-token": s.apiKey}
	var keyed goldSpotResponse
	if err := fetchJSON(ctx, s.httpClient, s.timeout, s.keyedURL, "GoldAPI", headers, &keyed); err != nil {
		return 0, "", fmt.Errorf("all gold sources failed: %w", err)
	}
	if keyed.Price <= 0 {
		return 0, "", fmt.Errorf("GoldAPI returned no usable price")
	}
	return keyed.Price, "GoldAPI", nil
}
