package pricing

import (
	"context"
	"fmt"

	"portfolyo/internal/models"
)

// CurrencySource prices currency-class assets off the shared exchange-rate
// table. Symbols with no entry in the table are skipped, not failed.
type CurrencySource struct {
	rates *RateService
}

// NewCurrencySource creates a currency price source backed by the given rates.
func NewCurrencySource(rates *RateService) *CurrencySource {
	return &CurrencySource{rates: rates}
}

// Name returns the source's display name.
func (s *CurrencySource) Name() string { return "Exchange Rates" }

// Supports returns true for the currency asset class only.
func (s *CurrencySource) Supports(assetType models.AssetType) bool {
	return assetType == models.AssetTypeCurrency
}

// Fetch resolves each currency symbol against the cached USD rate table.
func (s *CurrencySource) Fetch(ctx context.Context, assets []models.Asset) (map[uint]Quote, []FetchError) {
	quotes := make(map[uint]Quote, len(assets))
	var fetchErrors []FetchError

	for _, asset := range assets {
		if asset.Symbol == s.rates.Base() {
			// An asset held in the settlement currency is always worth 1.
			quotes[asset.ID] = Quote{Price: 1.0, Source: s.Name()}
			continue
		}

		price, err := s.rates.PricePer(ctx, asset.Symbol)
		if err != nil {
			fetchErrors = append(fetchErrors, FetchError{
				AssetID: asset.ID,
				Symbol:  asset.Symbol,
				Err:     fmt.Errorf("resolving %s rate: %w", asset.Symbol, err),
			})
			continue
		}
		quotes[asset.ID] = Quote{Price: price, Source: s.Name()}
	}

	return quotes, fetchErrors
}
