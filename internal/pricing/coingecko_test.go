package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolyo/internal/models"
)

func TestCoinGeckoFetch(t *testing.T) {
	t.Run("batch_query_returns_quotes", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"bitcoin":{"try":2000000},"ethereum":{"try":120000}}`))
		}))
		defer server.Close()

		source := NewCoinGeckoSource(server.Client(), "TRY", testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "BTC", Type: models.AssetTypeCrypto},
			{Base: models.Base{ID: 2}, Symbol: "ETH", Type: models.AssetTypeCrypto},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		if len(quotes) != 2 {
			t.Fatalf("expected 2 quotes, got %d", len(quotes))
		}
		if quotes[1].Price != 2000000 {
			t.Errorf("expected BTC at 2000000, got %v", quotes[1].Price)
		}
		if quotes[1].Source != "CoinGecko" {
			t.Errorf("expected CoinGecko source, got %q", quotes[1].Source)
		}
		if gotQuery == "" || gotQuery != "ids=bitcoin,ethereum&vs_currencies=try" {
			t.Errorf("unexpected upstream query: %q", gotQuery)
		}
	})

	t.Run("unmapped_symbol_is_left_out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"bitcoin":{"try":2000000}}`))
		}))
		defer server.Close()

		source := NewCoinGeckoSource(server.Client(), "TRY", testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "BTC", Type: models.AssetTypeCrypto},
			{Base: models.Base{ID: 2}, Symbol: "NOPE", Type: models.AssetTypeCrypto},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 1 {
			t.Fatalf("expected 1 quote, got %d", len(quotes))
		}
		// Unmapped symbols carry no error either; the aggregator counts
		// them as skipped.
		if len(fetchErrors) != 0 {
			t.Errorf("expected no fetch errors, got %v", fetchErrors)
		}
	})

	t.Run("missing_price_in_response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"bitcoin":{"try":2000000}}`))
		}))
		defer server.Close()

		source := NewCoinGeckoSource(server.Client(), "TRY", testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "BTC", Type: models.AssetTypeCrypto},
			{Base: models.Base{ID: 2}, Symbol: "ETH", Type: models.AssetTypeCrypto},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 1 {
			t.Fatalf("expected 1 quote, got %d", len(quotes))
		}
		if len(fetchErrors) != 1 || fetchErrors[0].AssetID != 2 {
			t.Fatalf("expected a fetch error for ETH, got %v", fetchErrors)
		}
	})

	t.Run("server_error_fails_all_mapped_assets", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		source := NewCoinGeckoSource(server.Client(), "TRY", testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "BTC", Type: models.AssetTypeCrypto},
			{Base: models.Base{ID: 2}, Symbol: "ETH", Type: models.AssetTypeCrypto},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 0 {
			t.Errorf("expected no quotes, got %d", len(quotes))
		}
		if len(fetchErrors) != 2 {
			t.Errorf("expected errors for both assets, got %d", len(fetchErrors))
		}
	})

	t.Run("supports_crypto_only", func(t *testing.T) {
		source := NewCoinGeckoSource(http.DefaultClient, "TRY", testTimeout)
		if !source.Supports(models.AssetTypeCrypto) {
			t.Error("expected crypto support")
		}
		if source.Supports(models.AssetTypeStock) || source.Supports(models.AssetTypeGold) {
			t.Error("expected crypto-only support")
		}
	})
}
