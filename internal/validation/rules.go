// Package validation provides the pure constraint rules applied before any
// ledger mutation. Rules never log or persist; callers decide how to surface
// failures.
package validation

import (
	"fmt"
	"math"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
)

const (
	// DefaultMin and DefaultMax bound quantities and prices.
	DefaultMin = 0.0
	DefaultMax = 1e9
)

// Rule is a single validation step. A nil return means the rule passed.
type Rule func() *apperrors.AppError

// Apply runs rules in order and returns the first failure, or nil when all pass.
func Apply(rules ...Rule) *apperrors.AppError {
	for _, rule := range rules {
		if err := rule(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuantity checks that q is a finite number within [min, max].
func ValidateQuantity(q, min, max float64) *apperrors.AppError {
	return validateRange("quantity", q, min, max)
}

// ValidatePrice checks that p is a finite number within [min, max].
func ValidatePrice(p, min, max float64) *apperrors.AppError {
	return validateRange("price", p, min, max)
}

func validateRange(field string, v, min, max float64) *apperrors.AppError {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be a finite number", field))
	}
	if v < min {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be at least %g", field, min))
	}
	if v > max {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be at most %g", field, max))
	}
	return nil
}

// ValidateSufficientBalance checks that required does not exceed available.
func ValidateSufficientBalance(available, required float64) *apperrors.AppError {
	if required > available {
		return apperrors.WithMessage(apperrors.ErrInsufficientBalance,
			fmt.Sprintf("requested %g but only %g available", required, available))
	}
	return nil
}

// ValidateAssetExists checks that the asset is present.
func ValidateAssetExists(asset *models.Asset) *apperrors.AppError {
	if asset == nil {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

// ValidateUnique checks that no element of the collection matches key.
// key extracts the comparable value from each element.
func ValidateUnique[T any, K comparable](collection []T, key func(T) K, value K) *apperrors.AppError {
	for _, item := range collection {
		if key(item) == value {
			return apperrors.ErrDuplicateAsset
		}
	}
	return nil
}
