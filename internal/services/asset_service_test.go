package services

import (
	"testing"
	"time"

	"portfolyo/internal/models"
	"portfolyo/internal/testutil"
)

func TestCreateAsset(t *testing.T) {
	t.Run("creates_with_normalized_symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		asset, err := svc.CreateAsset(CreateAssetInput{
			Name:   "Bitcoin",
			Symbol: " btc ",
			Type:   models.AssetTypeCrypto,
		})
		testutil.AssertNoError(t, err)

		if asset.Symbol != "BTC" {
			t.Errorf("expected normalized symbol BTC, got %q", asset.Symbol)
		}
		if asset.Currency != "TRY" {
			t.Errorf("expected default currency TRY, got %q", asset.Currency)
		}
	})

	t.Run("duplicate_symbol_and_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		_, err := svc.CreateAsset(CreateAssetInput{Name: "Bitcoin", Symbol: "BTC", Type: models.AssetTypeCrypto})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAsset(CreateAssetInput{Name: "Bitcoin Again", Symbol: "btc", Type: models.AssetTypeCrypto})
		testutil.AssertAppError(t, err, "DUPLICATE_ASSET")
	})

	t.Run("same_symbol_different_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		_, err := svc.CreateAsset(CreateAssetInput{Name: "Gold Grams", Symbol: "XAU", Type: models.AssetTypeGold})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAsset(CreateAssetInput{Name: "Gold ETF", Symbol: "XAU", Type: models.AssetTypeStock})
		testutil.AssertNoError(t, err)
	})

	t.Run("negative_quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		_, err := svc.CreateAsset(CreateAssetInput{Name: "Bad", Symbol: "BAD", Type: models.AssetTypeCrypto, Quantity: -1})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetAssetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAssetService(db)
	asset := testutil.CreateTestAsset(t, db)

	got, err := svc.GetAssetByID(asset.ID)
	testutil.AssertNoError(t, err)
	if got.Symbol != asset.Symbol {
		t.Errorf("expected symbol %q, got %q", asset.Symbol, got.Symbol)
	}

	_, err = svc.GetAssetByID(9999)
	testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
}

func TestListAssets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAssetService(db)
	testutil.CreateTestAssetWithSymbol(t, db, "BTC", models.AssetTypeCrypto)
	testutil.CreateTestAssetWithSymbol(t, db, "AAPL", models.AssetTypeStock)
	testutil.CreateTestAssetWithSymbol(t, db, "USD", models.AssetTypeCurrency)

	t.Run("all_sorted_by_symbol", func(t *testing.T) {
		assets, err := svc.ListAssets("")
		testutil.AssertNoError(t, err)
		if len(assets) != 3 {
			t.Fatalf("expected 3 assets, got %d", len(assets))
		}
		if assets[0].Symbol != "AAPL" {
			t.Errorf("expected AAPL first, got %q", assets[0].Symbol)
		}
	})

	t.Run("filtered_by_type", func(t *testing.T) {
		assets, err := svc.ListAssets("crypto")
		testutil.AssertNoError(t, err)
		if len(assets) != 1 || assets[0].Symbol != "BTC" {
			t.Errorf("expected only BTC, got %v", assets)
		}
	})
}

func TestUpdateAsset(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)
		asset := testutil.CreateTestHolding(t, db, 2, 100, 50)

		name := "Renamed"
		price := 75.0
		updated, err := svc.UpdateAsset(asset.ID, UpdateAssetInput{Name: &name, CurrentPrice: &price})
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" {
			t.Errorf("expected renamed asset, got %q", updated.Name)
		}
		testutil.AssertFloatEquals(t, 75, updated.CurrentPrice, "current price")
		testutil.AssertFloatEquals(t, 2, updated.Quantity, "quantity untouched")
	})

	t.Run("rejects_invalid_quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)
		asset := testutil.CreateTestAsset(t, db)

		bad := -5.0
		_, err := svc.UpdateAsset(asset.ID, UpdateAssetInput{Quantity: &bad})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		name := "x"
		_, err := svc.UpdateAsset(9999, UpdateAssetInput{Name: &name})
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})
}

func TestDeleteAsset(t *testing.T) {
	t.Run("cascades_transactions_and_price_points", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)
		asset := testutil.CreateTestAsset(t, db)
		testutil.CreateTestTransaction(t, db, asset.ID, models.TransactionTypeBuy, 1, 100, time.Now())
		testutil.CreateTestPricePoint(t, db, asset.ID, 110, time.Now())

		testutil.AssertNoError(t, svc.DeleteAsset(asset.ID))

		var txCount, ppCount int64
		testutil.AssertNoError(t, db.Model(&models.Transaction{}).Where("asset_id = ?", asset.ID).Count(&txCount).Error)
		testutil.AssertNoError(t, db.Model(&models.PricePoint{}).Where("asset_id = ?", asset.ID).Count(&ppCount).Error)
		if txCount != 0 || ppCount != 0 {
			t.Errorf("expected cascaded delete, got %d transactions and %d price points", txCount, ppCount)
		}

		_, err := svc.GetAssetByID(asset.ID)
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})

	t.Run("unknown_asset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAssetService(db)

		err := svc.DeleteAsset(9999)
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})
}
