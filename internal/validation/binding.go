package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Uppercase tickers, including Yahoo-style suffixes such as THYAO.IS.
var symbolRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,19}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("asset_type", validateAssetType)
		_ = v.RegisterValidation("settlement_currency", validateSettlementCurrency)
		_ = v.RegisterValidation("asset_symbol", validateAssetSymbol)
		_ = v.RegisterValidation("hex_color", validateHexColor)
	}
}

func validateAssetType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "crypto", "stock", "gold", "currency":
		return true
	}
	return false
}

func validateSettlementCurrency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "TRY", "USD", "EUR":
		return true
	}
	return false
}

func validateAssetSymbol(fl validator.FieldLevel) bool {
	return symbolRegex.MatchString(fl.Field().String())
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}
