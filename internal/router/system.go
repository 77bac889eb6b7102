package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Store unavailable", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "store": "Connected"}))
}

// GetLocations serves the reference document exactly as stored.
func (h *Handler) GetLocations(c *gin.Context) {
	raw, err := h.Store.Raw(c.Request.Context(), store.Locations)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(raw))
}

func (h *Handler) GenerateSalesReport(c *gin.Context) {
	orders, err := h.Checkout.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.Reports.GenerateSalesReport(c.Request.Context(), orders)))
}
