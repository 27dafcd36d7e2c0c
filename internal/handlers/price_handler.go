package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolyo/internal/cache"
	"portfolyo/internal/services"
)

// PriceHandler handles manual price-refresh requests.
type PriceHandler struct {
	priceService services.PriceServicer
	cache        *cache.Cache
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(priceService services.PriceServicer, reportCache *cache.Cache) *PriceHandler {
	return &PriceHandler{priceService: priceService, cache: reportCache}
}

// RefreshPrices handles triggering a full price refresh.
// @Summary     Refresh prices
// @Description Fetch current prices for all assets from their class-specific sources
// @Tags        prices
// @Produce     json
// @Success     200 {object} pricing.RefreshResult "Refresh result counts and per-asset details"
// @Failure     409 {object} ErrorResponse "A refresh is already running"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /prices/refresh [post]
func (h *PriceHandler) RefreshPrices(c *gin.Context) {
	result, err := h.priceService.RefreshAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusOK, result)
}
