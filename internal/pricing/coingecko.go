package pricing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"portfolyo/internal/models"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// coinIDs maps exchange symbols to canonical CoinGecko coin identifiers.
// Symbols without a mapping are silently skipped by the fetch.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"USDC":  "usd-coin",
	"ADA":   "cardano",
	"SOL":   "solana",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"TRX":   "tron",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
	"LINK":  "chainlink",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
	"SHIB":  "shiba-inu",
	"UNI":   "uniswap",
	"XMR":   "monero",
}

// CoinGeckoSource fetches crypto prices from CoinGecko with a single batch
// query per refresh cycle.
type CoinGeckoSource struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	vsCurrency string // lowercase settlement currency, e.g. "try"
	timeout    time.Duration
}

// NewCoinGeckoSource creates a CoinGecko price source quoting in the given
// settlement currency.
func NewCoinGeckoSource(httpClient *http.Client, baseCurrency string, timeout time.Duration) *CoinGeckoSource {
	return &CoinGeckoSource{
		httpClient: httpClient,
		baseURL:    coinGeckoBaseURL,
		vsCurrency: strings.ToLower(baseCurrency),
		timeout:    timeout,
	}
}

// Name returns the source's display name.
func (s *CoinGeckoSource) Name() string { return "CoinGecko" }

// Supports returns true for the crypto asset class only.
func (s *CoinGeckoSource) Supports(assetType models.AssetType) bool {
	return assetType == models.AssetTypeCrypto
}

// Fetch batch-queries CoinGecko for all mappable symbols. Symbols with no
// coin-id mapping are left out of both the quote map and the error list so
// the aggregator counts them as skipped.
func (s *CoinGeckoSource) Fetch(ctx context.Context, assets []models.Asset) (map[uint]Quote, []FetchError) {
	idToAssets := make(map[string][]models.Asset)
	ids := make([]string, 0, len(assets))
	for _, asset := range assets {
		coinID, ok := coinIDs[strings.ToUpper(asset.Symbol)]
		if !ok {
			continue
		}
		if _, seen := idToAssets[coinID]; !seen {
			ids = append(ids, coinID)
		}
		idToAssets[coinID] = append(idToAssets[coinID], asset)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	url := s.baseURL + "?ids=" + strings.Join(ids, ",") + "&vs_currencies=" + s.vsCurrency

	var resp map[string]map[string]float64
	if err := fetchJSON(ctx, s.httpClient, s.timeout, url, s.Name(), nil, &resp); err != nil {
		var fetchErrors []FetchError
		for _, group := range idToAssets {
			for _, asset := range group {
				fetchErrors = append(fetchErrors, FetchError{AssetID: asset.ID, Symbol: asset.Symbol, Err: err})
			}
		}
		return nil, fetchErrors
	}

	quotes := make(map[uint]Quote)
	var fetchErrors []FetchError
	for coinID, group := range idToAssets {
		price, ok := resp[coinID][s.vsCurrency]
		for _, asset := range group {
			if !ok || price <= 0 {
				fetchErrors = append(fetchErrors, FetchError{
					AssetID: asset.ID,
					Symbol:  asset.Symbol,
					Err:     &missingPriceError{coinID},
				})
				continue
			}
			quotes[asset.ID] = Quote{Price: price, Source: s.Name()}
		}
	}

	return quotes, fetchErrors
}

type missingPriceError struct {
	coinID string
}

func (e *missingPriceError) Error() string {
	return "no usable price for " + e.coinID + " in response"
}
