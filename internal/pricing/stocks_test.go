package pricing

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolyo/internal/models"
)

func yahooBody(price float64, currency string) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%g,"currency":%q}}],"error":null}}`, price, currency)
}

func TestStockFetch(t *testing.T) {
	t.Run("converts_native_currency_to_settlement", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.Contains(r.URL.Path, "AAPL"):
				_, _ = w.Write([]byte(yahooBody(230.5, "USD")))
			case strings.Contains(r.URL.Path, "THYAO.IS"):
				_, _ = w.Write([]byte(yahooBody(300, "TRY")))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewStockSource(server.Client(), rates, testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "AAPL", Type: models.AssetTypeStock},
			{Base: models.Base{ID: 2}, Symbol: "THYAO.IS", Type: models.AssetTypeStock},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		if math.Abs(quotes[1].Price-230.5*41.0) > 1e-9 {
			t.Errorf("expected USD quote converted at 41, got %v", quotes[1].Price)
		}
		// Already in the settlement currency
		if quotes[2].Price != 300 {
			t.Errorf("expected TRY quote unchanged, got %v", quotes[2].Price)
		}
	})

	t.Run("one_symbol_failing_never_blocks_the_rest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "BAD") {
				_, _ = w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
				return
			}
			_, _ = w.Write([]byte(yahooBody(100, "TRY")))
		}))
		defer server.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewStockSource(server.Client(), rates, testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{
			{Base: models.Base{ID: 1}, Symbol: "GOOD", Type: models.AssetTypeStock},
			{Base: models.Base{ID: 2}, Symbol: "BAD", Type: models.AssetTypeStock},
		}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 1 || quotes[1].Price != 100 {
			t.Errorf("expected the good symbol to be priced, got %v", quotes)
		}
		if len(fetchErrors) != 1 || fetchErrors[0].AssetID != 2 {
			t.Errorf("expected one fetch error for BAD, got %v", fetchErrors)
		}
	})

	t.Run("missing_currency_defaults_to_usd", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":10}}],"error":null}}`))
		}))
		defer server.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewStockSource(server.Client(), rates, testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{{Base: models.Base{ID: 1}, Symbol: "X", Type: models.AssetTypeStock}}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		if math.Abs(quotes[1].Price-410.0) > 1e-9 {
			t.Errorf("expected USD conversion, got %v", quotes[1].Price)
		}
	})

	t.Run("zero_price_is_an_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(yahooBody(0, "USD")))
		}))
		defer server.Close()
		rates, closeRates := testRates(t)
		defer closeRates()

		source := NewStockSource(server.Client(), rates, testTimeout)
		source.baseURL = server.URL

		assets := []models.Asset{{Base: models.Base{ID: 1}, Symbol: "X", Type: models.AssetTypeStock}}
		quotes, fetchErrors := source.Fetch(context.Background(), assets)

		if len(quotes) != 0 || len(fetchErrors) != 1 {
			t.Errorf("expected a fetch error for zero price, got %v / %v", quotes, fetchErrors)
		}
	})
}
