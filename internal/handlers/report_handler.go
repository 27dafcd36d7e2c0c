package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolyo/internal/cache"
	"portfolyo/internal/services"
)

// ReportHandler serves the derived portfolio reports. Responses are cached
// with a short TTL; the cache is flushed on any mutation.
type ReportHandler struct {
	reportService services.ReportServicer
	cache         *cache.Cache
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer, reportCache *cache.Cache) *ReportHandler {
	return &ReportHandler{reportService: reportService, cache: reportCache}
}

// cached serves from the TTL cache, computing and storing on miss.
func (h *ReportHandler) cached(c *gin.Context, key string, compute func() (interface{}, error)) {
	if value, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, value)
		return
	}

	value, err := compute()
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Set(key, value)
	c.JSON(http.StatusOK, value)
}

// Summary handles the portfolio summary report.
// @Summary     Portfolio summary
// @Description Total current value, cost basis and unrealized profit
// @Tags        reports
// @Produce     json
// @Success     200 {object} services.SummaryReport "Summary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	h.cached(c, "summary", func() (interface{}, error) {
		return h.reportService.Summary()
	})
}

// Monthly handles the monthly transaction report.
// @Summary     Monthly report
// @Description Buy/sell counts, totals and realized profit per calendar month
// @Tags        reports
// @Produce     json
// @Success     200 {array} services.MonthlyReport "Monthly aggregates, ascending"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	h.cached(c, "monthly", func() (interface{}, error) {
		return h.reportService.Monthly()
	})
}

// Performance handles the per-asset performance report.
// @Summary     Performance report
// @Description Per-asset profit/loss sorted descending by percentage
// @Tags        reports
// @Produce     json
// @Success     200 {array} services.AssetPerformance "Performances"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/performance [get]
func (h *ReportHandler) Performance(c *gin.Context) {
	h.cached(c, "performance", func() (interface{}, error) {
		return h.reportService.Performance()
	})
}

// Distribution handles the asset-class distribution report.
// @Summary     Distribution report
// @Description Each asset class's share of total current value
// @Tags        reports
// @Produce     json
// @Success     200 {array} services.ClassDistribution "Distribution"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/distribution [get]
func (h *ReportHandler) Distribution(c *gin.Context) {
	h.cached(c, "distribution", func() (interface{}, error) {
		return h.reportService.Distribution()
	})
}

// TopMovers handles the top gainers/losers report.
// @Summary     Top movers
// @Description Top-N gainers and losers by absolute profit
// @Tags        reports
// @Produce     json
// @Param       n query int false "Number of entries per list (default 3)"
// @Success     200 {object} services.TopMoversReport "Top movers"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/top [get]
func (h *ReportHandler) TopMovers(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "3"))
	h.cached(c, "top:"+strconv.Itoa(n), func() (interface{}, error) {
		return h.reportService.TopMovers(n)
	})
}

// Risk handles the risk analysis report.
// @Summary     Risk analysis
// @Description Diversification score, concentration and history-based volatility
// @Tags        reports
// @Produce     json
// @Success     200 {object} services.RiskReport "Risk metrics"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/risk [get]
func (h *ReportHandler) Risk(c *gin.Context) {
	h.cached(c, "risk", func() (interface{}, error) {
		return h.reportService.Risk()
	})
}

// ValueHistory handles the reconstructed value series.
// @Summary     Value history
// @Description Portfolio value series replayed from transactions at current prices
// @Tags        reports
// @Produce     json
// @Success     200 {array} services.ValuePoint "Value series"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/history [get]
func (h *ReportHandler) ValueHistory(c *gin.Context) {
	h.cached(c, "history", func() (interface{}, error) {
		return h.reportService.ValueHistory()
	})
}
