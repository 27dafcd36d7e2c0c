package services

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/ledger"
	"portfolyo/internal/logger"
	"portfolyo/internal/models"
)

// ledgerTolerance is the rounding tolerance when verifying that a replayed
// transaction log reproduces an asset's stored position.
const ledgerTolerance = 0.01

// ExportedAsset is one asset with its full transaction log.
type ExportedAsset struct {
	Name         string               `json:"name"`
	Symbol       string               `json:"symbol"`
	Type         models.AssetType     `json:"type"`
	Quantity     float64              `json:"quantity"`
	AvgCost      float64              `json:"avg_cost"`
	CurrentPrice float64              `json:"current_price"`
	Currency     string               `json:"currency"`
	Icon         string               `json:"icon,omitempty"`
	Color        string               `json:"color,omitempty"`
	Transactions []ExportedTransaction `json:"transactions"`
}

// ExportedTransaction is one transaction in the serialized form.
type ExportedTransaction struct {
	Type           models.TransactionType `json:"type"`
	Quantity       float64                `json:"quantity"`
	Price          float64                `json:"price"`
	Total          float64                `json:"total"`
	RealizedProfit float64                `json:"realized_profit"`
	Date           time.Time              `json:"date"`
}

// PortfolioExport is the serialized form of the whole portfolio.
type PortfolioExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Assets     []ExportedAsset `json:"assets"`
}

// ImportSummary reports what an import created.
type ImportSummary struct {
	Assets       int `json:"assets"`
	Transactions int `json:"transactions"`
}

// exportService serializes and restores the portfolio, and renders the XLSX report.
type exportService struct {
	db      *gorm.DB
	reports ReportServicer
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB, reports ReportServicer) ExportServicer {
	return &exportService{db: db, reports: reports}
}

// ExportPortfolio serializes every asset with its transaction log, ordered so
// that re-importing replays transactions chronologically.
func (s *exportService) ExportPortfolio() (*PortfolioExport, error) {
	var assets []models.Asset
	if err := s.db.Order("symbol ASC").Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	export := &PortfolioExport{ExportedAt: time.Now().UTC()}
	for _, asset := range assets {
		var transactions []models.Transaction
		if err := s.db.Where("asset_id = ?", asset.ID).Order("date ASC, id ASC").Find(&transactions).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
		}

		exported := ExportedAsset{
			Name:         asset.Name,
			Symbol:       asset.Symbol,
			Type:         asset.Type,
			Quantity:     asset.Quantity,
			AvgCost:      asset.AvgCost,
			CurrentPrice: asset.CurrentPrice,
			Currency:     asset.Currency,
			Icon:         asset.Icon,
			Color:        asset.Color,
			Transactions: make([]ExportedTransaction, 0, len(transactions)),
		}
		for _, tx := range transactions {
			exported.Transactions = append(exported.Transactions, ExportedTransaction{
				Type:           tx.Type,
				Quantity:       tx.Quantity,
				Price:          tx.Price,
				Total:          tx.Total,
				RealizedProfit: tx.RealizedProfit,
				Date:           tx.Date,
			})
		}
		export.Assets = append(export.Assets, exported)
	}
	return export, nil
}

// ImportPortfolio restores a serialized portfolio in a single transaction.
// Assets whose (symbol, type) already exists are rejected. Each restored
// asset's transaction log is replayed through the ledger math to verify it
// reproduces the stored (quantity, avgCost) within the rounding tolerance;
// a mismatch is logged but the stored figures win.
func (s *exportService) ImportPortfolio(data *PortfolioExport) (*ImportSummary, error) {
	if data == nil || len(data.Assets) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to import")
	}

	summary := &ImportSummary{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, exported := range data.Assets {
			var count int64
			if txErr := tx.Model(&models.Asset{}).
				Where("symbol = ? AND type = ?", exported.Symbol, exported.Type).
				Count(&count).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrPersistence, txErr)
			}
			if count > 0 {
				return apperrors.WithMessage(apperrors.ErrDuplicateAsset,
					fmt.Sprintf("asset %s (%s) already exists", exported.Symbol, exported.Type))
			}

			asset := &models.Asset{
				Name:         exported.Name,
				Symbol:       exported.Symbol,
				Type:         exported.Type,
				Quantity:     exported.Quantity,
				AvgCost:      exported.AvgCost,
				CurrentPrice: exported.CurrentPrice,
				Currency:     exported.Currency,
				Icon:         exported.Icon,
				Color:        exported.Color,
			}
			if txErr := tx.Create(asset).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrPersistence, txErr)
			}
			summary.Assets++

			records := make([]models.Transaction, 0, len(exported.Transactions))
			for _, t := range exported.Transactions {
				records = append(records, models.Transaction{
					AssetID:        asset.ID,
					Type:           t.Type,
					Quantity:       t.Quantity,
					Price:          t.Price,
					Total:          t.Total,
					RealizedProfit: t.RealizedProfit,
					Date:           t.Date,
				})
			}
			if len(records) > 0 {
				if txErr := tx.Create(&records).Error; txErr != nil {
					return apperrors.Wrap(apperrors.ErrPersistence, txErr)
				}
				summary.Transactions += len(records)
			}

			replayedQty, replayedCost := ledger.Replay(records)
			if math.Abs(replayedQty-asset.Quantity) > ledgerTolerance ||
				math.Abs(replayedCost-asset.AvgCost) > ledgerTolerance {
				logger.Get().Warnw("imported transaction log does not reproduce asset state",
					"symbol", asset.Symbol,
					"stored_quantity", asset.Quantity,
					"replayed_quantity", replayedQty,
					"stored_avg_cost", asset.AvgCost,
					"replayed_avg_cost", replayedCost,
				)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ExportXLSX renders the summary, per-asset and monthly reports as an XLSX workbook.
func (s *exportService) ExportXLSX() ([]byte, error) {
	summary, err := s.reports.Summary()
	if err != nil {
		return nil, err
	}
	performances, err := s.reports.Performance()
	if err != nil {
		return nil, err
	}
	monthly, err := s.reports.Monthly()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summaryRows := [][]interface{}{
		{"Total Value", summary.TotalValue},
		{"Total Cost", summary.TotalCost},
		{"Profit", summary.Profit},
		{"Profit %", summary.ProfitPercent},
		{"Assets", summary.AssetCount},
	}
	for i, row := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	const assetsSheet = "Assets"
	if _, err := f.NewSheet(assetsSheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	header := []interface{}{"Symbol", "Name", "Type", "Value", "Cost", "Profit", "Profit %", "Result"}
	if err := f.SetSheetRow(assetsSheet, "A1", &header); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i, p := range performances {
		row := []interface{}{p.Symbol, p.Name, string(p.Type), p.Value, p.Cost, p.Profit, p.ProfitPercent, p.Classification}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(assetsSheet, cell, &row); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	const monthlySheet = "Monthly"
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	monthlyHeader := []interface{}{"Month", "Buys", "Sells", "Buy Total", "Sell Total", "Realized Profit"}
	if err := f.SetSheetRow(monthlySheet, "A1", &monthlyHeader); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i, m := range monthly {
		row := []interface{}{m.Month, m.BuyCount, m.SellCount, m.BuyTotal, m.SellTotal, m.RealizedProfit}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(monthlySheet, cell, &row); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}
