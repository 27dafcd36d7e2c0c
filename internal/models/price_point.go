package models

import "time"

// PricePoint represents a historical price entry for an asset, recorded on
// each successful refresh. Rows are append-only.
type PricePoint struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AssetID    uint      `gorm:"not null;index" json:"asset_id"`
	Price      float64   `gorm:"not null" json:"price"`
	Source     string    `json:"source"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}
