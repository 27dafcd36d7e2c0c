package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"portfolyo/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAsset creates a crypto asset with a unique symbol and no holdings.
func CreateTestAsset(t *testing.T, db *gorm.DB) *models.Asset {
	t.Helper()
	symbol := fmt.Sprintf("TST%d", nextID())
	return CreateTestAssetWithSymbol(t, db, symbol, models.AssetTypeCrypto)
}

// CreateTestAssetWithSymbol creates an asset with the given symbol and type.
func CreateTestAssetWithSymbol(t *testing.T, db *gorm.DB, symbol string, assetType models.AssetType) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		Name:     symbol + " Test Asset",
		Symbol:   symbol,
		Type:     assetType,
		Currency: "TRY",
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestHolding creates an asset with an established position.
func CreateTestHolding(t *testing.T, db *gorm.DB, quantity, avgCost, currentPrice float64) *models.Asset {
	t.Helper()

	asset := CreateTestAsset(t, db)
	asset.Quantity = quantity
	asset.AvgCost = avgCost
	asset.CurrentPrice = currentPrice
	if err := db.Save(asset).Error; err != nil {
		t.Fatalf("failed to update test asset: %v", err)
	}
	return asset
}

// CreateTestTransaction records a raw transaction row without touching the
// asset's quantity or average cost.
func CreateTestTransaction(t *testing.T, db *gorm.DB, assetID uint, txType models.TransactionType, quantity, price float64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AssetID:  assetID,
		Type:     txType,
		Quantity: quantity,
		Price:    price,
		Total:    quantity * price,
		Date:     date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestPricePoint records a historical price entry for an asset.
func CreateTestPricePoint(t *testing.T, db *gorm.DB, assetID uint, price float64, recordedAt time.Time) *models.PricePoint {
	t.Helper()

	point := &models.PricePoint{
		AssetID:    assetID,
		Price:      price,
		Source:     "test",
		RecordedAt: recordedAt,
	}
	if err := db.Create(point).Error; err != nil {
		t.Fatalf("failed to create test price point: %v", err)
	}
	return point
}
