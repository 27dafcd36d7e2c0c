package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
	"portfolyo/internal/pricing"
)

// priceService orchestrates full-portfolio price refreshes. A mutex guards
// against overlapping cycles: a manual trigger during a scheduled run (or the
// reverse) is rejected instead of queued.
type priceService struct {
	db         *gorm.DB
	aggregator *pricing.Aggregator
	locks      *AssetLocks

	inFlight sync.Mutex
}

// NewPriceService creates a new PriceServicer.
func NewPriceService(db *gorm.DB, aggregator *pricing.Aggregator, locks *AssetLocks) PriceServicer {
	return &priceService{db: db, aggregator: aggregator, locks: locks}
}

// RefreshAll fetches current prices for every asset and persists them one
// asset at a time. Returns ErrRefreshInFlight when a cycle is already running.
func (s *priceService) RefreshAll(ctx context.Context) (*pricing.RefreshResult, error) {
	if !s.inFlight.TryLock() {
		return nil, apperrors.ErrRefreshInFlight
	}
	defer s.inFlight.Unlock()

	var assets []models.Asset
	if err := s.db.Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := s.aggregator.Refresh(ctx, assets, s.UpdateAssetPrice)
	return result, nil
}

// UpdateAssetPrice persists one asset's new price and appends a price-history
// point, atomically and serialized against any concurrent buy/sell on the
// same asset. This is the update callback injected into the aggregator.
func (s *priceService) UpdateAssetPrice(ctx context.Context, assetID uint, price float64, source string) error {
	unlock := s.locks.Lock(assetID)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if txErr := tx.First(&asset, assetID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrAssetNotFound
			}
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}

		if txErr := tx.Model(&asset).Update("current_price", price).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}

		point := &models.PricePoint{
			AssetID:    assetID,
			Price:      price,
			Source:     source,
			RecordedAt: time.Now().UTC(),
		}
		if txErr := tx.Create(point).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}
		return nil
	})
}
