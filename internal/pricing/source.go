// Package pricing fetches current market prices from class-specific external
// sources with timeout, retry, and fallback, and aggregates the results
// without ever failing a whole batch because of one asset.
package pricing

import (
	"context"
	"fmt"

	"portfolyo/internal/models"
)

// Quote is a successfully fetched settlement-currency price for one asset.
type Quote struct {
	Price  float64
	Source string
}

// FetchError records why no price could be obtained for a specific asset.
// Fetch failures are absorbed: the aggregator reports the asset as skipped,
// never as a hard error of the batch.
type FetchError struct {
	AssetID uint
	Symbol  string
	Err     error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("no price for %s (ID %d): %v", e.Symbol, e.AssetID, e.Err)
}

// RateLimitError signals an HTTP 429 from a source. The retry layer waits
// 2^attempt seconds before the next attempt instead of the normal backoff.
type RateLimitError struct {
	Source string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited the request", e.Source)
}

// Source fetches current prices for a batch of assets of the classes it
// supports. It returns as many quotes as possible; assets it could not price
// appear in the error list instead.
type Source interface {
	// Name returns the source's display name (e.g. "CoinGecko").
	Name() string

	// Supports returns true if this source can price the given asset class.
	Supports(assetType models.AssetType) bool

	// Fetch fetches current prices for the given assets, keyed by asset ID.
	Fetch(ctx context.Context, assets []models.Asset) (map[uint]Quote, []FetchError)
}
