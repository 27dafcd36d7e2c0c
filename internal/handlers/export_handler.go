package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolyo/internal/cache"
	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/services"
)

// ExportHandler handles portfolio export/import and the XLSX report download.
type ExportHandler struct {
	exportService services.ExportServicer
	cache         *cache.Cache
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService services.ExportServicer, reportCache *cache.Cache) *ExportHandler {
	return &ExportHandler{exportService: exportService, cache: reportCache}
}

// ExportPortfolio handles serializing the whole portfolio.
// @Summary     Export portfolio
// @Description Serialize all assets and their transaction logs
// @Tags        portfolio
// @Produce     json
// @Success     200 {object} services.PortfolioExport "Serialized portfolio"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/export [get]
func (h *ExportHandler) ExportPortfolio(c *gin.Context) {
	export, err := h.exportService.ExportPortfolio()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

// ImportPortfolio handles restoring a serialized portfolio.
// @Summary     Import portfolio
// @Description Restore a previously exported portfolio; existing (symbol, type) pairs are rejected
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Param       request body services.PortfolioExport true "Serialized portfolio"
// @Success     201 {object} services.ImportSummary "Import summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate asset"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/import [post]
func (h *ExportHandler) ImportPortfolio(c *gin.Context) {
	var data services.PortfolioExport
	if err := c.ShouldBindJSON(&data); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, err := h.exportService.ImportPortfolio(&data)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusCreated, summary)
}

// ExportXLSX handles downloading the XLSX report workbook.
// @Summary     Export XLSX report
// @Description Download the summary, assets and monthly reports as a workbook
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success     200 {file} file "XLSX workbook"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export.xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	data, err := h.exportService.ExportXLSX()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="portfolio-report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
