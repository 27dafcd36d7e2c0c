package models

// AssetType represents the class of a tracked asset.
type AssetType string

const (
	AssetTypeCrypto   AssetType = "crypto"
	AssetTypeStock    AssetType = "stock"
	AssetTypeGold     AssetType = "gold"
	AssetTypeCurrency AssetType = "currency"
)

// Asset represents a holding in the portfolio. Quantity and average cost are
// mutated only through buy/sell transactions or explicit edits; (symbol, type)
// is unique across the portfolio.
type Asset struct {
	Base
	Name         string    `gorm:"not null" json:"name"`
	Symbol       string    `gorm:"not null;uniqueIndex:uq_assets_symbol_type" json:"symbol"`
	Type         AssetType `gorm:"not null;uniqueIndex:uq_assets_symbol_type" json:"type"`
	Quantity     float64   `gorm:"not null;default:0" json:"quantity"`
	AvgCost      float64   `gorm:"not null;default:0" json:"avg_cost"`
	CurrentPrice float64   `gorm:"not null;default:0" json:"current_price"`
	Currency     string    `gorm:"not null;default:'TRY'" json:"currency"`
	Icon         string    `json:"icon,omitempty"`
	Color        string    `json:"color,omitempty"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	PricePoints  []PricePoint  `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"-"`
}

// CurrentValue returns the market value of the holding.
func (a *Asset) CurrentValue() float64 {
	return a.Quantity * a.CurrentPrice
}

// TotalCost returns the cost basis of the holding at the average cost.
func (a *Asset) TotalCost() float64 {
	return a.Quantity * a.AvgCost
}

// Profit returns the unrealized profit of the holding.
func (a *Asset) Profit() float64 {
	return a.CurrentValue() - a.TotalCost()
}

// ProfitPercent returns the unrealized profit as a percentage of cost,
// or 0 when the cost basis is zero.
func (a *Asset) ProfitPercent() float64 {
	cost := a.TotalCost()
	if cost == 0 {
		return 0
	}
	return a.Profit() / cost * 100
}
