package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolyo/internal/cache"
	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/pagination"
	"portfolyo/internal/services"
)

// TransactionHandler handles buy/sell requests and the transaction log.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	cache              *cache.Cache
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, reportCache *cache.Cache) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, cache: reportCache}
}

// TradeRequest represents the request payload for recording a buy or sell.
type TradeRequest struct {
	Quantity float64    `json:"quantity" binding:"required,gt=0"`
	Price    float64    `json:"price" binding:"gte=0"`
	Date     *time.Time `json:"date"`
}

func (r *TradeRequest) date() time.Time {
	if r.Date != nil {
		return *r.Date
	}
	return time.Now()
}

// RecordBuy handles recording a buy transaction.
// @Summary     Record buy
// @Description Apply a buy to the asset's position; the average cost moves to the weighted mean
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int          true "Asset ID"
// @Param       request body TradeRequest true "Trade details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/buy [post]
func (h *TransactionHandler) RecordBuy(c *gin.Context) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.RecordBuy(assetID, req.Quantity, req.Price, req.date())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// RecordSell handles recording a sell transaction.
// @Summary     Record sell
// @Description Apply a sell to the asset's position; fails when quantity exceeds the holding
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int          true "Asset ID"
// @Param       request body TradeRequest true "Trade details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/sell [post]
func (h *TransactionHandler) RecordSell(c *gin.Context) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.RecordSell(assetID, req.Quantity, req.Price, req.date())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetAssetTransactions handles listing an asset's transaction log.
// @Summary     Get asset transactions
// @Description Get a paginated transaction log for one asset, newest first
// @Tags        transactions
// @Produce     json
// @Param       id        path  int false "Asset ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/transactions [get]
func (h *TransactionHandler) GetAssetTransactions(c *gin.Context) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetAssetTransactions(assetID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTransactions handles listing all transactions.
// @Summary     List transactions
// @Description Get the paginated transaction log across all assets, newest first
// @Tags        transactions
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.ListTransactions(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
