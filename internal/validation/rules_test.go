package validation

import (
	"math"
	"testing"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
)

func TestValidateQuantity(t *testing.T) {
	cases := []struct {
		name     string
		value    float64
		wantCode string
	}{
		{"valid", 10, ""},
		{"zero_is_valid", 0, ""},
		{"at_upper_bound", 1e9, ""},
		{"negative", -1, "INVALID_INPUT"},
		{"above_upper_bound", 1e9 + 1, "INVALID_INPUT"},
		{"nan", math.NaN(), "INVALID_INPUT"},
		{"positive_infinity", math.Inf(1), "INVALID_INPUT"},
		{"negative_infinity", math.Inf(-1), "INVALID_INPUT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuantity(tc.value, DefaultMin, DefaultMax)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error code %q, got nil", tc.wantCode)
			}
			if err.Code != tc.wantCode {
				t.Errorf("expected code %q, got %q", tc.wantCode, err.Code)
			}
		})
	}
}

func TestValidateSufficientBalance(t *testing.T) {
	if err := ValidateSufficientBalance(5, 5); err != nil {
		t.Errorf("selling the whole position should pass, got %v", err)
	}
	if err := ValidateSufficientBalance(5, 5.0001); err == nil {
		t.Error("expected INSUFFICIENT_BALANCE")
	} else if err.Code != "INSUFFICIENT_BALANCE" {
		t.Errorf("expected code INSUFFICIENT_BALANCE, got %q", err.Code)
	}
}

func TestValidateAssetExists(t *testing.T) {
	if err := ValidateAssetExists(&models.Asset{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateAssetExists(nil); err == nil || err.Code != "ASSET_NOT_FOUND" {
		t.Errorf("expected ASSET_NOT_FOUND, got %v", err)
	}
}

func TestValidateUnique(t *testing.T) {
	assets := []models.Asset{
		{Symbol: "BTC", Type: models.AssetTypeCrypto},
		{Symbol: "BTC", Type: models.AssetTypeStock},
	}

	err := ValidateUnique(assets, func(a models.Asset) models.AssetType { return a.Type }, models.AssetTypeCrypto)
	if err == nil || err.Code != "DUPLICATE_ASSET" {
		t.Errorf("expected DUPLICATE_ASSET, got %v", err)
	}

	if err := ValidateUnique(assets, func(a models.Asset) models.AssetType { return a.Type }, models.AssetTypeGold); err != nil {
		t.Errorf("expected no error for unused type, got %v", err)
	}
}

func TestApply(t *testing.T) {
	calls := 0
	err := Apply(
		func() *apperrors.AppError { calls++; return nil },
		func() *apperrors.AppError { calls++; return ValidateQuantity(-1, DefaultMin, DefaultMax) },
		func() *apperrors.AppError { calls++; return nil },
	)
	if err == nil {
		t.Fatal("expected first failure to be returned")
	}
	if calls != 2 {
		t.Errorf("expected evaluation to stop at first failure, got %d calls", calls)
	}
}
