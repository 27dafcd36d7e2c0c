package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolyo/internal/cache"
	apperrors "portfolyo/internal/errors"
	"portfolyo/internal/models"
	"portfolyo/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService services.AssetServicer
	cache        *cache.Cache
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer, reportCache *cache.Cache) *AssetHandler {
	return &AssetHandler{assetService: assetService, cache: reportCache}
}

// CreateAssetRequest represents the request payload for creating an asset.
type CreateAssetRequest struct {
	Name         string           `json:"name" binding:"required,min=1,max=100"`
	Symbol       string           `json:"symbol" binding:"required,asset_symbol"`
	Type         models.AssetType `json:"type" binding:"required,asset_type"`
	Quantity     float64          `json:"quantity" binding:"gte=0"`
	AvgCost      float64          `json:"avg_cost" binding:"gte=0"`
	CurrentPrice float64          `json:"current_price" binding:"gte=0"`
	Currency     string           `json:"currency" binding:"omitempty,settlement_currency"`
	Icon         string           `json:"icon" binding:"max=100"`
	Color        string           `json:"color" binding:"omitempty,hex_color"`
}

// UpdateAssetRequest represents direct edits to an asset.
type UpdateAssetRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Quantity     *float64 `json:"quantity" binding:"omitempty,gte=0"`
	AvgCost      *float64 `json:"avg_cost" binding:"omitempty,gte=0"`
	CurrentPrice *float64 `json:"current_price" binding:"omitempty,gte=0"`
	Icon         *string  `json:"icon" binding:"omitempty,max=100"`
	Color        *string  `json:"color" binding:"omitempty,hex_color"`
}

// CreateAsset handles adding a new asset.
// @Summary     Create asset
// @Description Add a new asset to the portfolio
// @Tags        assets
// @Accept      json
// @Produce     json
// @Param       request body CreateAssetRequest true "Asset details"
// @Success     201 {object} models.Asset "Asset created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate symbol and type"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.CreateAsset(services.CreateAssetInput{
		Name:         req.Name,
		Symbol:       req.Symbol,
		Type:         req.Type,
		Quantity:     req.Quantity,
		AvgCost:      req.AvgCost,
		CurrentPrice: req.CurrentPrice,
		Currency:     req.Currency,
		Icon:         req.Icon,
		Color:        req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// ListAssets handles listing assets.
// @Summary     List assets
// @Description List all assets, optionally filtered by class
// @Tags        assets
// @Produce     json
// @Param       type query string false "Asset class filter (crypto, stock, gold, currency)"
// @Success     200 {array} models.Asset "Assets"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.assetService.ListAssets(c.Query("type"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// GetAsset handles retrieving a single asset.
// @Summary     Get asset by ID
// @Tags        assets
// @Produce     json
// @Param       id path int true "Asset ID"
// @Success     200 {object} models.Asset "Asset details"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.assetService.GetAssetByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// UpdateAsset handles direct edits to an asset.
// @Summary     Update asset
// @Description Edit an asset's name, display metadata, quantity or prices directly
// @Tags        assets
// @Accept      json
// @Produce     json
// @Param       id      path int               true "Asset ID"
// @Param       request body UpdateAssetRequest true "Fields to update"
// @Success     200 {object} models.Asset "Updated asset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.UpdateAsset(id, services.UpdateAssetInput{
		Name:         req.Name,
		Quantity:     req.Quantity,
		AvgCost:      req.AvgCost,
		CurrentPrice: req.CurrentPrice,
		Icon:         req.Icon,
		Color:        req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// DeleteAsset handles removing an asset and its transactions.
// @Summary     Delete asset
// @Description Delete an asset; its transactions and price history cascade
// @Tags        assets
// @Produce     json
// @Param       id path int true "Asset ID"
// @Success     204 "Asset deleted"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.assetService.DeleteAsset(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.Status(http.StatusNoContent)
}
