package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/ledger"
	"portfolyo/internal/models"
	"portfolyo/internal/pagination"
)

// transactionService applies buy/sell operations through the ledger. Each
// operation commits the asset mutation and the transaction record atomically,
// or neither; concurrent operations on the same asset are serialized.
type transactionService struct {
	db    *gorm.DB
	locks *AssetLocks
}

// NewTransactionService creates a new TransactionServicer. locks must be the
// same instance handed to the price service.
func NewTransactionService(db *gorm.DB, locks *AssetLocks) TransactionServicer {
	return &transactionService{db: db, locks: locks}
}

// RecordBuy applies a buy to the asset's position and inserts the record.
func (s *transactionService) RecordBuy(assetID uint, quantity, price float64, date time.Time) (*models.Transaction, error) {
	return s.record(assetID, quantity, price, date, ledger.ApplyBuy)
}

// RecordSell applies a sell to the asset's position and inserts the record.
// Fails with INSUFFICIENT_BALANCE when quantity exceeds the holding, leaving
// the asset untouched.
func (s *transactionService) RecordSell(assetID uint, quantity, price float64, date time.Time) (*models.Transaction, error) {
	return s.record(assetID, quantity, price, date, ledger.ApplySell)
}

type applyFunc func(asset *models.Asset, quantity, price float64, date time.Time) (*models.Transaction, *apperrors.AppError)

func (s *transactionService) record(assetID uint, quantity, price float64, date time.Time, apply applyFunc) (*models.Transaction, error) {
	unlock := s.locks.Lock(assetID)
	defer unlock()

	if date.IsZero() {
		date = time.Now()
	}

	var record *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if txErr := tx.First(&asset, assetID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrAssetNotFound
			}
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}

		applied, appErr := apply(&asset, quantity, price, date)
		if appErr != nil {
			return appErr
		}

		if txErr := tx.Create(applied).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}
		if txErr := tx.Model(&asset).Updates(map[string]interface{}{
			"quantity": asset.Quantity,
			"avg_cost": asset.AvgCost,
		}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}

		record = applied
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetAssetTransactions returns a paginated transaction log for one asset,
// newest first.
func (s *transactionService) GetAssetTransactions(assetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	var asset models.Asset
	if err := s.db.First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Transaction{}).Where("asset_id = ?", assetID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListTransactions returns the paginated transaction log across all assets.
func (s *transactionService) ListTransactions(page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Transaction{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var transactions []models.Transaction
	if err := s.db.Model(&models.Transaction{}).
		Order("date DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
