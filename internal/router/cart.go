package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Daviipontes/Dev-Web/pkg/cart"
	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
)

func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.Carts.Items(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart.Summary(sessionID(c), items)))
}

// SetCartItem sets a line's quantity. Zero removes the line.
func (h *Handler) SetCartItem(c *gin.Context) {
	var req models.SetCartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	items, err := h.Carts.SetQuantity(c.Request.Context(), sessionID(c), req.ID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"cart": cart.Summary(sessionID(c), items)}))
}

// BuyNow adds to an existing line instead of replacing its quantity.
func (h *Handler) BuyNow(c *gin.Context) {
	var req models.BuyNowRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	items, err := h.Carts.Increment(c.Request.Context(), sessionID(c), req.ID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"cart": cart.Summary(sessionID(c), items)}))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product id", []global.ValidationError{
			{Field: "id", Message: "id must be an integer", Code: "invalid_format"},
		}))
		return
	}
	if _, err := h.Carts.Remove(c.Request.Context(), sessionID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Item removed from cart"))
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Carts.Clear(c.Request.Context(), sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Cart cleared"))
}
