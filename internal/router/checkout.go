package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Daviipontes/Dev-Web/pkg/checkout"
	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
)

// SubmitCheckout accepts the shipping form as JSON or multipart. A
// multipart request may attach the payment receipt as pix_receipt.
func (h *Handler) SubmitCheckout(c *gin.Context) {
	var fields models.ShippingFields
	if err := c.ShouldBind(&fields); err != nil {
		bindError(c, err)
		return
	}

	up := &uploads{dir: h.UploadsDir}
	receipt, err := up.single(c, "pix_receipt")
	if err != nil {
		up.discard()
		respondError(c, err)
		return
	}

	order, err := h.Checkout.Submit(c.Request.Context(), checkout.Submission{
		SessionID:  sessionID(c),
		Buyer:      currentUser(c),
		Shipping:   fields,
		PixReceipt: receipt,
	})
	if err != nil {
		up.discard()
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"order": order}))
}

func (h *Handler) GetRecentPurchases(c *gin.Context) {
	orders, err := h.Checkout.History(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (h *Handler) GetAllOrders(c *gin.Context) {
	orders, err := h.Checkout.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}
