// Package ledger implements weighted-average-cost position accounting.
// ApplyBuy and ApplySell mutate an asset's (quantity, average cost) pair and
// produce the immutable transaction record; persistence is the caller's job.
package ledger

import (
	"time"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
	"portfolyo/internal/validation"
)

// ApplyBuy applies a buy of quantity units at price to the asset and returns
// the resulting transaction record. Only buys move the average cost: the new
// average is the total-cost-weighted mean of the existing position and the
// purchase. Buys never fail on balance.
func ApplyBuy(asset *models.Asset, quantity, price float64, date time.Time) (*models.Transaction, *apperrors.AppError) {
	if err := validation.Apply(
		func() *apperrors.AppError { return validation.ValidateAssetExists(asset) },
		func() *apperrors.AppError {
			return validation.ValidateQuantity(quantity, validation.DefaultMin, validation.DefaultMax)
		},
		func() *apperrors.AppError {
			return validation.ValidatePrice(price, validation.DefaultMin, validation.DefaultMax)
		},
	); err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than 0")
	}

	if asset.Quantity == 0 {
		asset.AvgCost = price
	} else {
		asset.AvgCost = (asset.Quantity*asset.AvgCost + quantity*price) / (asset.Quantity + quantity)
	}
	asset.Quantity += quantity

	return &models.Transaction{
		AssetID:        asset.ID,
		Type:           models.TransactionTypeBuy,
		Quantity:       quantity,
		Price:          price,
		Total:          quantity * price,
		RealizedProfit: 0,
		Date:           date,
	}, nil
}

// ApplySell applies a sell of quantity units at price to the asset and returns
// the resulting transaction record. Sells only reduce quantity; the average
// cost is unchanged, and profit is realized against it. Selling the entire
// position leaves the last average cost in place until a new buy resets it.
func ApplySell(asset *models.Asset, quantity, price float64, date time.Time) (*models.Transaction, *apperrors.AppError) {
	if err := validation.Apply(
		func() *apperrors.AppError { return validation.ValidateAssetExists(asset) },
		func() *apperrors.AppError {
			return validation.ValidateQuantity(quantity, validation.DefaultMin, validation.DefaultMax)
		},
		func() *apperrors.AppError {
			return validation.ValidatePrice(price, validation.DefaultMin, validation.DefaultMax)
		},
		func() *apperrors.AppError {
			return validation.ValidateSufficientBalance(asset.Quantity, quantity)
		},
	); err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than 0")
	}

	realized := (price - asset.AvgCost) * quantity
	asset.Quantity -= quantity

	return &models.Transaction{
		AssetID:        asset.ID,
		Type:           models.TransactionTypeSell,
		Quantity:       quantity,
		Price:          price,
		Total:          quantity * price,
		RealizedProfit: realized,
		Date:           date,
	}, nil
}

// Replay applies the given transactions in chronological order to an empty
// position and returns the resulting (quantity, average cost). Used to verify
// the ledger invariant and by the import round-trip.
func Replay(transactions []models.Transaction) (quantity, avgCost float64) {
	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionTypeBuy:
			if quantity == 0 {
				avgCost = tx.Price
			} else {
				avgCost = (quantity*avgCost + tx.Quantity*tx.Price) / (quantity + tx.Quantity)
			}
			quantity += tx.Quantity
		case models.TransactionTypeSell:
			quantity -= tx.Quantity
		}
	}
	return quantity, avgCost
}
