// Package services contains the business logic between the HTTP handlers and
// the storage layer. Every ledger mutation runs inside a single GORM
// transaction and is serialized per asset.
package services

import (
	"context"
	"time"

	"portfolyo/internal/models"
	"portfolyo/internal/pagination"
	"portfolyo/internal/pricing"
)

// AssetServicer manages the asset catalogue.
type AssetServicer interface {
	CreateAsset(input CreateAssetInput) (*models.Asset, error)
	GetAssetByID(id uint) (*models.Asset, error)
	ListAssets(assetType string) ([]models.Asset, error)
	UpdateAsset(id uint, input UpdateAssetInput) (*models.Asset, error)
	DeleteAsset(id uint) error
}

// TransactionServicer applies buy/sell operations and exposes the transaction log.
type TransactionServicer interface {
	RecordBuy(assetID uint, quantity, price float64, date time.Time) (*models.Transaction, error)
	RecordSell(assetID uint, quantity, price float64, date time.Time) (*models.Transaction, error)
	GetAssetTransactions(assetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	ListTransactions(page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// PriceServicer refreshes market prices and records price history.
type PriceServicer interface {
	RefreshAll(ctx context.Context) (*pricing.RefreshResult, error)
	UpdateAssetPrice(ctx context.Context, assetID uint, price float64, source string) error
}

// ReportServicer derives read-only reports from the current portfolio snapshot.
type ReportServicer interface {
	Summary() (*SummaryReport, error)
	Monthly() ([]MonthlyReport, error)
	Performance() ([]AssetPerformance, error)
	Distribution() ([]ClassDistribution, error)
	TopMovers(n int) (*TopMoversReport, error)
	Risk() (*RiskReport, error)
	ValueHistory() ([]ValuePoint, error)
}

// ExportServicer serializes and restores the whole portfolio.
type ExportServicer interface {
	ExportPortfolio() (*PortfolioExport, error)
	ImportPortfolio(data *PortfolioExport) (*ImportSummary, error)
	ExportXLSX() ([]byte, error)
}
