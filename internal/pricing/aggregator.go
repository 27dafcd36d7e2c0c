package pricing

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"portfolyo/internal/models"
)

// Refresh outcome statuses for a single asset.
const (
	StatusUpdated = "updated"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// UpdateFunc persists one asset's new price. The aggregator knows nothing
// about the storage layer; callers inject the persistence step.
type UpdateFunc func(ctx context.Context, assetID uint, price float64, source string) error

// AssetDetail describes the refresh outcome for one asset.
type AssetDetail struct {
	AssetID  uint    `json:"asset_id"`
	Symbol   string  `json:"symbol"`
	Status   string  `json:"status"`
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price,omitempty"`
	Source   string  `json:"source,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// RefreshResult summarizes a whole refresh cycle. Skipped means no usable
// price was obtained; failed means an error occurred while applying an
// obtained price.
type RefreshResult struct {
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"-"`
	Details  []AssetDetail `json:"details"`
}

// Aggregator fans a batch of assets out to class-specific sources and applies
// the fetched prices one asset at a time through the injected update callback.
// Failures are isolated per asset; the batch itself never fails.
type Aggregator struct {
	sources []Source
	rates   *RateService
	logger  *zap.SugaredLogger
}

// NewAggregator creates an Aggregator over the given sources. rates may be
// nil when no source shares the exchange-rate table.
func NewAggregator(sources []Source, rates *RateService, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{sources: sources, rates: rates, logger: logger}
}

// Refresh fetches current prices for all assets and persists them via update.
func (a *Aggregator) Refresh(ctx context.Context, assets []models.Asset, update UpdateFunc) *RefreshResult {
	start := time.Now()
	result := &RefreshResult{}
	if len(assets) == 0 {
		return result
	}

	if a.rates != nil {
		a.rates.Reset()
	}

	// Group assets by the first source that supports their class.
	groups := make(map[int][]models.Asset)
	for _, asset := range assets {
		matched := false
		for i, source := range a.sources {
			if source.Supports(asset.Type) {
				groups[i] = append(groups[i], asset)
				matched = true
				break
			}
		}
		if !matched {
			a.logger.Warnw("no source supports asset class", "symbol", asset.Symbol, "type", asset.Type)
		}
	}

	// Fetch from each source concurrently.
	var mu sync.Mutex
	quotes := make(map[uint]Quote)
	reasons := make(map[uint]string)

	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func(source Source, group []models.Asset) {
			defer wg.Done()
			a.logger.Infow("fetching prices", "source", source.Name(), "count", len(group))
			fetched, fetchErrors := source.Fetch(ctx, group)
			mu.Lock()
			for id, quote := range fetched {
				quotes[id] = quote
			}
			for _, fetchErr := range fetchErrors {
				reasons[fetchErr.AssetID] = fetchErr.Err.Error()
			}
			mu.Unlock()
		}(a.sources[i], group)
	}
	wg.Wait()

	// Apply results one asset at a time, in the input order.
	for _, asset := range assets {
		detail := AssetDetail{
			AssetID:  asset.ID,
			Symbol:   asset.Symbol,
			OldPrice: asset.CurrentPrice,
		}

		quote, ok := quotes[asset.ID]
		if !ok {
			detail.Status = StatusSkipped
			detail.Reason = reasons[asset.ID]
			result.Skipped++
			result.Details = append(result.Details, detail)
			continue
		}

		if err := update(ctx, asset.ID, quote.Price, quote.Source); err != nil {
			a.logger.Errorw("price update failed", "symbol", asset.Symbol, "error", err)
			detail.Status = StatusFailed
			detail.Reason = err.Error()
			result.Failed++
			result.Details = append(result.Details, detail)
			continue
		}

		detail.Status = StatusUpdated
		detail.NewPrice = quote.Price
		detail.Source = quote.Source
		result.Updated++
		result.Details = append(result.Details, detail)
	}

	result.Duration = time.Since(start)
	a.logger.Infow("price refresh completed",
		"updated", result.Updated,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", result.Duration.String(),
	)
	return result
}

// DefaultSources builds the standard source set for the given settlement
// currency and optional gold API key.
func DefaultSources(httpClient *http.Client, rates *RateService, goldAPIKey string, timeout time.Duration) []Source {
	return []Source{
		NewCoinGeckoSource(httpClient, rates.Base(), timeout),
		NewCurrencySource(rates),
		NewGoldSource(httpClient, rates, goldAPIKey, timeout),
		NewStockSource(httpClient, rates, timeout),
	}
}
