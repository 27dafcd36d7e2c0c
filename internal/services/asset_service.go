package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
	"portfolyo/internal/validation"
)

// CreateAssetInput carries the fields for creating an asset.
type CreateAssetInput struct {
	Name         string
	Symbol       string
	Type         models.AssetType
	Quantity     float64
	AvgCost      float64
	CurrentPrice float64
	Currency     string
	Icon         string
	Color        string
}

// UpdateAssetInput carries direct edits to an asset's mutable fields.
// Nil pointers leave the field unchanged.
type UpdateAssetInput struct {
	Name         *string
	Quantity     *float64
	AvgCost      *float64
	CurrentPrice *float64
	Icon         *string
	Color        *string
}

// assetService handles asset-related business logic.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// CreateAsset adds a new asset after validating ranges and the (symbol, type)
// uniqueness invariant.
func (s *assetService) CreateAsset(input CreateAssetInput) (*models.Asset, error) {
	input.Symbol = strings.ToUpper(strings.TrimSpace(input.Symbol))

	if err := validation.Apply(
		func() *apperrors.AppError {
			return validation.ValidateQuantity(input.Quantity, validation.DefaultMin, validation.DefaultMax)
		},
		func() *apperrors.AppError {
			return validation.ValidatePrice(input.AvgCost, validation.DefaultMin, validation.DefaultMax)
		},
		func() *apperrors.AppError {
			return validation.ValidatePrice(input.CurrentPrice, validation.DefaultMin, validation.DefaultMax)
		},
	); err != nil {
		return nil, err
	}

	var siblings []models.Asset
	if err := s.db.Where("symbol = ?", input.Symbol).Find(&siblings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if err := validation.ValidateUnique(siblings, func(a models.Asset) models.AssetType { return a.Type }, input.Type); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		Name:         input.Name,
		Symbol:       input.Symbol,
		Type:         input.Type,
		Quantity:     input.Quantity,
		AvgCost:      input.AvgCost,
		CurrentPrice: input.CurrentPrice,
		Currency:     input.Currency,
		Icon:         input.Icon,
		Color:        input.Color,
	}
	if asset.Currency == "" {
		asset.Currency = "TRY"
	}

	if err := s.db.Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return asset, nil
}

// GetAssetByID returns an asset by its ID.
func (s *assetService) GetAssetByID(id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &asset, nil
}

// ListAssets returns all assets, optionally filtered by class.
func (s *assetService) ListAssets(assetType string) ([]models.Asset, error) {
	query := s.db.Order("symbol ASC")
	if assetType != "" {
		query = query.Where("type = ?", assetType)
	}

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return assets, nil
}

// UpdateAsset applies direct edits to an asset's name, display metadata, or
// its quantity/price state. Edits bypass the ledger deliberately: they are
// corrections, not transactions.
func (s *assetService) UpdateAsset(id uint, input UpdateAssetInput) (*models.Asset, error) {
	asset, err := s.GetAssetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Quantity != nil {
		if vErr := validation.ValidateQuantity(*input.Quantity, validation.DefaultMin, validation.DefaultMax); vErr != nil {
			return nil, vErr
		}
		updates["quantity"] = *input.Quantity
	}
	if input.AvgCost != nil {
		if vErr := validation.ValidatePrice(*input.AvgCost, validation.DefaultMin, validation.DefaultMax); vErr != nil {
			return nil, vErr
		}
		updates["avg_cost"] = *input.AvgCost
	}
	if input.CurrentPrice != nil {
		if vErr := validation.ValidatePrice(*input.CurrentPrice, validation.DefaultMin, validation.DefaultMax); vErr != nil {
			return nil, vErr
		}
		updates["current_price"] = *input.CurrentPrice
	}
	if input.Icon != nil {
		updates["icon"] = *input.Icon
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}

	if len(updates) == 0 {
		return asset, nil
	}

	if err := s.db.Model(asset).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return asset, nil
}

// DeleteAsset removes an asset; its transactions and price points cascade.
func (s *assetService) DeleteAsset(id uint) error {
	asset, err := s.GetAssetByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Explicit cascades keep behavior identical when foreign keys are off.
		if txErr := tx.Where("asset_id = ?", asset.ID).Delete(&models.Transaction{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}
		if txErr := tx.Where("asset_id = ?", asset.ID).Delete(&models.PricePoint{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}
		if txErr := tx.Delete(asset).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, txErr)
		}
		return nil
	})
}
