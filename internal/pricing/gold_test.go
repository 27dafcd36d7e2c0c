package pricing

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolyo/internal/models"
)

func testRates(t *testing.T) (*RateService, func()) {
	t.Helper()
	server := newRateServer(t, nil)
	rates := NewRateService(server.Client(), "TRY", testTimeout)
	rates.baseURL = server.URL
	return rates, server.Close
}

func TestGoldFetch(t *testing.T) {
	t.Run("converts_ounce_spot_to_gram_settlement_price", func(t *testing.T) {
		spot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"price":2488.28}`))
		}))
		defer spot.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewGoldSource(spot.Client(), rates, "", testTimeout)
		source.spotURL = spot.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "GA", Type: models.AssetTypeGold},
			{Base: models.Base{ID: 2}, Symbol: "GB", Type: models.AssetTypeGold},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		want := 2488.28 / GramsPerOunce * 41.0
		for id, quote := range quotes {
			if math.Abs(quote.Price-want) > 1e-9 {
				t.Errorf("asset %d: expected %v per gram, got %v", id, want, quote.Price)
			}
			if quote.Source != "Gold Spot" {
				t.Errorf("expected Gold Spot source, got %q", quote.Source)
			}
		}
	})

	t.Run("falls_back_to_keyed_source", func(t *testing.T) {
		spot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer spot.Close()

		var gotToken string
		keyed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("x-access-token")
			_, _ = w.Write([]byte(`{"price":2500}`))
		}))
		defer keyed.Close()

		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewGoldSource(http.DefaultClient, rates, "secret-key", testTimeout)
		source.spotURL = spot.URL
		source.keyedURL = keyed.URL

		assets := []models.Asset{{Base: models.Base{ID: 1}, Symbol: "GA", Type: models.AssetTypeGold}}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		if gotToken != "secret-key" {
			t.Errorf("expected API key header, got %q", gotToken)
		}
		if quotes[1].Source != "GoldAPI" {
			t.Errorf("expected GoldAPI source, got %q", quotes[1].Source)
		}
	})

	t.Run("no_key_means_no_fallback", func(t *testing.T) {
		spot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer spot.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewGoldSource(spot.Client(), rates, "", testTimeout)
		source.spotURL = spot.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "GA", Type: models.AssetTypeGold},
			{Base: models.Base{ID: 2}, Symbol: "GB", Type: models.AssetTypeGold},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 0 {
			t.Errorf("expected no quotes, got %d", len(quotes))
		}
		if len(fetchErrors) != len(assets) {
			t.Errorf("expected an error per asset, got %d", len(fetchErrors))
		}
	})

	t.Run("all_sources_exhausted", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer failing.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewGoldSource(http.DefaultClient, rates, "key", testTimeout)
		source.spotURL = failing.URL
		source.keyedURL = failing.URL

		assets := []models.Asset{{Base: models.Base{ID: 1}, Symbol: "GA", Type: models.AssetTypeGold}}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 0 || len(fetchErrors) != 1 {
			t.Fatalf("expected a single fetch error, got %d quotes and %d errors", len(quotes), len(fetchErrors))
		}
	})
}

func TestGoldSupports(t *testing.T) {
	source := NewGoldSource(http.DefaultClient, nil, "", testTimeout)
	if !source.Supports(models.AssetTypeGold) {
		t.Error("expected gold support")
	}
	for _, other := range []models.AssetType{models.AssetTypeCrypto, models.AssetTypeStock, models.AssetTypeCurrency} {
		if source.Supports(other) {
			t.Errorf("unexpected support for %s", other)
		}
	}
}
