package services

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"gorm.io/gorm"

	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
)

// SummaryReport aggregates the whole portfolio.
type SummaryReport struct {
	TotalValue    float64 `json:"total_value"`
	TotalCost     float64 `json:"total_cost"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profit_percent"`
	AssetCount    int     `json:"asset_count"`
}

// MonthlyReport aggregates transactions for one calendar month.
type MonthlyReport struct {
	Month          string  `json:"month"` // YYYY-MM
	BuyCount       int     `json:"buy_count"`
	SellCount      int     `json:"sell_count"`
	BuyTotal       float64 `json:"buy_total"`
	SellTotal      float64 `json:"sell_total"`
	RealizedProfit float64 `json:"realized_profit"`
}

// AssetPerformance describes one asset's unrealized profit/loss.
type AssetPerformance struct {
	AssetID        uint             `json:"asset_id"`
	Symbol         string           `json:"symbol"`
	Name           string           `json:"name"`
	Type           models.AssetType `json:"type"`
	Value          float64          `json:"value"`
	Cost           float64          `json:"cost"`
	Profit         float64          `json:"profit"`
	ProfitPercent  float64          `json:"profit_percent"`
	Classification string           `json:"classification"` // profit, loss or neutral
}

// ClassDistribution describes one asset class's share of total value.
type ClassDistribution struct {
	Type  models.AssetType `json:"type"`
	Value float64          `json:"value"`
	Share float64          `json:"share"` // percent of total value
	Count int              `json:"count"`
}

// TopMoversReport lists the top-N gainers and losers by absolute profit.
type TopMoversReport struct {
	Gainers []AssetPerformance `json:"gainers"`
	Losers  []AssetPerformance `json:"losers"`
}

// RiskReport carries the portfolio risk metrics. Volatility and max drawdown
// are derived from recorded price history and are zero until at least two
// price points exist for a held asset.
type RiskReport struct {
	DiversificationScore float64 `json:"diversification_score"`
	TopConcentration     float64 `json:"top_concentration"`    // top-1 share of value, percent
	Top3Concentration    float64 `json:"top3_concentration"`   // top-3 share of value, percent
	Volatility           float64 `json:"volatility"`           // value-weighted stddev of price returns, percent
	MaxDrawdown          float64 `json:"max_drawdown"`         // value-weighted max peak-to-trough, percent
}

// ValuePoint is one step of the reconstructed portfolio value series.
type ValuePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// reportService derives read-only reports from the current snapshot of assets
// and transactions. No external calls.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

func (s *reportService) loadAssets() ([]models.Asset, error) {
	var assets []models.Asset
	if err := s.db.Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return assets, nil
}

// Summary computes total value, cost basis and unrealized profit.
func (s *reportService) Summary() (*SummaryReport, error) {
	assets, err := s.loadAssets()
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{AssetCount: len(assets)}
	report.TotalValue = lo.SumBy(assets, func(a models.Asset) float64 { return a.CurrentValue() })
	report.TotalCost = lo.SumBy(assets, func(a models.Asset) float64 { return a.TotalCost() })
	report.Profit = report.TotalValue - report.TotalCost
	if report.TotalCost != 0 {
		report.ProfitPercent = report.Profit / report.TotalCost * 100
	}
	return report, nil
}

// Monthly groups transactions by calendar month, ascending by month key.
func (s *reportService) Monthly() ([]MonthlyReport, error) {
	var transactions []models.Transaction
	if err := s.db.Order("date ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	byMonth := lo.GroupBy(transactions, func(tx models.Transaction) string {
		return tx.Date.Format("2006-01")
	})

	reports := make([]MonthlyReport, 0, len(byMonth))
	for month, txs := range byMonth {
		report := MonthlyReport{Month: month}
		for _, tx := range txs {
			switch tx.Type {
			case models.TransactionTypeBuy:
				report.BuyCount++
				report.BuyTotal += tx.Total
			case models.TransactionTypeSell:
				report.SellCount++
				report.SellTotal += tx.Total
				report.RealizedProfit += tx.RealizedProfit
			}
		}
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Month < reports[j].Month })
	return reports, nil
}

// Performance returns per-asset profit/loss sorted descending by percentage.
func (s *reportService) Performance() ([]AssetPerformance, error) {
	assets, err := s.loadAssets()
	if err != nil {
		return nil, err
	}

	performances := lo.Map(assets, func(a models.Asset, _ int) AssetPerformance {
		return toPerformance(a)
	})
	sort.Slice(performances, func(i, j int) bool {
		return performances[i].ProfitPercent > performances[j].ProfitPercent
	})
	return performances, nil
}

func toPerformance(a models.Asset) AssetPerformance {
	perf := AssetPerformance{
		AssetID:       a.ID,
		Symbol:        a.Symbol,
		Name:          a.Name,
		Type:          a.Type,
		Value:         a.CurrentValue(),
		Cost:          a.TotalCost(),
		Profit:        a.Profit(),
		ProfitPercent: a.ProfitPercent(),
	}
	switch {
	case perf.Profit > 0:
		perf.Classification = "profit"
	case perf.Profit < 0:
		perf.Classification = "loss"
	default:
		perf.Classification = "neutral"
	}
	return perf
}

// Distribution groups assets by class and computes each class's value share.
func (s *reportService) Distribution() ([]ClassDistribution, error) {
	assets, err := s.loadAssets()
	if err != nil {
		return nil, err
	}

	total := lo.SumBy(assets, func(a models.Asset) float64 { return a.CurrentValue() })
	byClass := lo.GroupBy(assets, func(a models.Asset) models.AssetType { return a.Type })

	distributions := make([]ClassDistribution, 0, len(byClass))
	for class, group := range byClass {
		value := lo.SumBy(group, func(a models.Asset) float64 { return a.CurrentValue() })
		dist := ClassDistribution{Type: class, Value: value, Count: len(group)}
		if total != 0 {
			dist.Share = value / total * 100
		}
		distributions = append(distributions, dist)
	}

	sort.Slice(distributions, func(i, j int) bool { return distributions[i].Value > distributions[j].Value })
	return distributions, nil
}

// TopMovers returns the top-N gainers and losers by absolute profit.
func (s *reportService) TopMovers(n int) (*TopMoversReport, error) {
	assets, err := s.loadAssets()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 3
	}

	performances := lo.Map(assets, func(a models.Asset, _ int) AssetPerformance {
		return toPerformance(a)
	})

	gainers := lo.Filter(performances, func(p AssetPerformance, _ int) bool { return p.Profit > 0 })
	losers := lo.Filter(performances, func(p AssetPerformance, _ int) bool { return p.Profit < 0 })

	sort.Slice(gainers, func(i, j int) bool { return gainers[i].Profit > gainers[j].Profit })
	sort.Slice(losers, func(i, j int) bool { return losers[i].Profit < losers[j].Profit })

	return &TopMoversReport{
		Gainers: lo.Subset(gainers, 0, uint(n)),
		Losers:  lo.Subset(losers, 0, uint(n)),
	}, nil
}

// Risk computes the diversification score, concentration, and the
// history-based volatility and drawdown figures.
func (s *reportService) Risk() (*RiskReport, error) {
	assets, err := s.loadAssets()
	if err != nil {
		return nil, err
	}

	report := &RiskReport{}

	classes := lo.Uniq(lo.Map(assets, func(a models.Asset, _ int) models.AssetType { return a.Type }))
	report.DiversificationScore = math.Min(100, float64(len(assets))*10+float64(len(classes))*20)

	total := lo.SumBy(assets, func(a models.Asset) float64 { return a.CurrentValue() })
	if total > 0 {
		values := lo.Map(assets, func(a models.Asset, _ int) float64 { return a.CurrentValue() })
		sort.Sort(sort.Reverse(sort.Float64Slice(values)))

		report.TopConcentration = values[0] / total * 100
		top3 := lo.Sum(lo.Subset(values, 0, 3))
		report.Top3Concentration = top3 / total * 100
	}

	volatility, drawdown, err := s.historyRisk(assets, total)
	if err != nil {
		return nil, err
	}
	report.Volatility = volatility
	report.MaxDrawdown = drawdown

	return report, nil
}

// historyRisk derives value-weighted volatility and max drawdown from each
// asset's recorded price points. Assets with fewer than two points contribute
// nothing; with no usable history at all both figures are zero.
func (s *reportService) historyRisk(assets []models.Asset, total float64) (volatility, drawdown float64, err error) {
	if total <= 0 {
		return 0, 0, nil
	}

	for _, asset := range assets {
		var points []models.PricePoint
		if dbErr := s.db.Where("asset_id = ?", asset.ID).Order("recorded_at ASC").Find(&points).Error; dbErr != nil {
			return 0, 0, apperrors.Wrap(apperrors.ErrPersistence, dbErr)
		}
		if len(points) < 2 {
			continue
		}

		prices := lo.Map(points, func(p models.PricePoint, _ int) float64 { return p.Price })
		weight := asset.CurrentValue() / total
		volatility += weight * returnStdDev(prices) * 100
		drawdown += weight * maxDrawdown(prices) * 100
	}
	return volatility, drawdown, nil
}

// returnStdDev computes the standard deviation of period-over-period returns.
func returnStdDev(prices []float64) float64 {
	var returns []float64
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			returns = append(returns, prices[i]/prices[i-1]-1)
		}
	}
	if len(returns) == 0 {
		return 0
	}

	mean := lo.Sum(returns) / float64(len(returns))
	var sumSq float64
	for _, r := range returns {
		sumSq += (r - mean) * (r - mean)
	}
	return math.Sqrt(sumSq / float64(len(returns)))
}

// maxDrawdown computes the largest peak-to-trough decline as a fraction.
func maxDrawdown(prices []float64) float64 {
	var peak, worst float64
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			dd := (peak - p) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// ValueHistory replays transactions in chronological order and values the
// reconstructed net quantities at current prices. This is an approximation,
// not a true historical valuation: past dates are priced at today's market.
func (s *reportService) ValueHistory() ([]ValuePoint, error) {
	assets, err := s.loadAssets()
	if err != nil {
		return nil, err
	}
	priceByAsset := lo.SliceToMap(assets, func(a models.Asset) (uint, float64) {
		return a.ID, a.CurrentPrice
	})

	var transactions []models.Transaction
	if err := s.db.Order("date ASC, id ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if len(transactions) == 0 {
		return []ValuePoint{}, nil
	}

	quantities := make(map[uint]float64)
	var series []ValuePoint

	appendPoint := func(date string) {
		var value float64
		for assetID, qty := range quantities {
			value += qty * priceByAsset[assetID]
		}
		series = append(series, ValuePoint{Date: date, Value: value})
	}

	currentDate := transactions[0].Date.Format("2006-01-02")
	for _, tx := range transactions {
		date := tx.Date.Format("2006-01-02")
		if date != currentDate {
			appendPoint(currentDate)
			currentDate = date
		}
		switch tx.Type {
		case models.TransactionTypeBuy:
			quantities[tx.AssetID] += tx.Quantity
		case models.TransactionTypeSell:
			quantities[tx.AssetID] -= tx.Quantity
		}
	}
	appendPoint(currentDate)

	return series, nil
}
