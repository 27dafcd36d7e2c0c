package models

import "time"

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Transaction represents an immutable buy or sell record for an asset.
// RealizedProfit is always 0 for buys; for sells it is booked against the
// average cost at the time of the sale.
type Transaction struct {
	Base
	AssetID        uint            `gorm:"not null;index" json:"asset_id"`
	Type           TransactionType `gorm:"not null" json:"type"`
	Quantity       float64         `gorm:"not null" json:"quantity"`
	Price          float64         `gorm:"not null" json:"price"`
	Total          float64         `gorm:"not null" json:"total"`
	RealizedProfit float64         `gorm:"not null;default:0" json:"realized_profit"`
	Date           time.Time       `gorm:"not null" json:"date"`

	// Relationships
	Asset Asset `gorm:"foreignKey:AssetID" json:"-"`
}
