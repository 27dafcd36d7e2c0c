package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"portfolyo/internal/models"
	"portfolyo/internal/pricing"
	"portfolyo/internal/testutil"
)

func TestUpdateAssetPrice(t *testing.T) {
	t.Run("updates_price_and_records_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPriceService(db, nil, NewAssetLocks())
		asset := testutil.CreateTestHolding(t, db, 1, 100, 100)

		err := svc.UpdateAssetPrice(context.Background(), asset.ID, 123.45, "CoinGecko")
		testutil.AssertNoError(t, err)

		var updated models.Asset
		testutil.AssertNoError(t, db.First(&updated, asset.ID).Error)
		testutil.AssertFloatEquals(t, 123.45, updated.CurrentPrice, "current price")

		var points []models.PricePoint
		testutil.AssertNoError(t, db.Where("asset_id = ?", asset.ID).Find(&points).Error)
		if len(points) != 1 {
			t.Fatalf("expected 1 price point, got %d", len(points))
		}
		if points[0].Source != "CoinGecko" {
			t.Errorf("expected source recorded, got %q", points[0].Source)
		}
	})

	t.Run("unknown_asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPriceService(db, nil, NewAssetLocks())

		err := svc.UpdateAssetPrice(context.Background(), 9999, 100, "test")
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})

	t.Run("history_accumulates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPriceService(db, nil, NewAssetLocks())
		asset := testutil.CreateTestAsset(t, db)

		for _, price := range []float64{100, 110, 90} {
			testutil.AssertNoError(t, svc.UpdateAssetPrice(context.Background(), asset.ID, price, "test"))
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.PricePoint{}).Where("asset_id = ?", asset.ID).Count(&count).Error)
		if count != 3 {
			t.Errorf("expected 3 price points, got %d", count)
		}
	})
}

// stubSource prices every asset of its class at a fixed value.
type stubSource struct {
	class models.AssetType
	price float64
}

func (s *stubSource) Name() string                     { return "stub" }
func (s *stubSource) Supports(t models.AssetType) bool { return t == s.class }
func (s *stubSource) Fetch(ctx context.Context, assets []models.Asset) (map[uint]pricing.Quote, []pricing.FetchError) {
	quotes := make(map[uint]pricing.Quote, len(assets))
	for _, a := range assets {
		quotes[a.ID] = pricing.Quote{Price: s.price, Source: s.Name()}
	}
	return quotes, nil
}

func TestRefreshAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	agg := pricing.NewAggregator([]pricing.Source{&stubSource{class: models.AssetTypeCrypto, price: 777}}, nil, zap.NewNop().Sugar())
	svc := NewPriceService(db, agg, NewAssetLocks())

	crypto := testutil.CreateTestAssetWithSymbol(t, db, "BTC", models.AssetTypeCrypto)
	stock := testutil.CreateTestAssetWithSymbol(t, db, "AAPL", models.AssetTypeStock)

	result, err := svc.RefreshAll(context.Background())
	testutil.AssertNoError(t, err)

	if result.Updated != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 updated and 1 skipped, got %d/%d", result.Updated, result.Skipped)
	}

	var updated models.Asset
	testutil.AssertNoError(t, db.First(&updated, crypto.ID).Error)
	testutil.AssertFloatEquals(t, 777, updated.CurrentPrice, "crypto price")

	updated = models.Asset{}
	testutil.AssertNoError(t, db.First(&updated, stock.ID).Error)
	testutil.AssertFloatEquals(t, 0, updated.CurrentPrice, "stock price untouched")
}
