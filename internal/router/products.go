package router

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
)

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product id", []global.ValidationError{
			{Field: "id", Message: "id must be a positive integer", Code: "invalid_format"},
		}))
		return 0, false
	}
	return id, true
}

// GetProducts lists the catalog. Query parameters narrow the result.
func (h *Handler) GetProducts(c *gin.Context) {
	var filter models.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	products, err := h.Catalog.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(products)))
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func (h *Handler) GetProductByID(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

// CreateProduct accepts a multipart form. The owner defaults to the
// logged-in user when the form does not name one.
func (h *Handler) CreateProduct(c *gin.Context) {
	var fields models.ProductFields
	if err := c.ShouldBind(&fields); err != nil {
		bindError(c, err)
		return
	}
	if fields.UserEmail == "" {
		fields.UserEmail = currentUser(c)
	}

	up := &uploads{dir: h.UploadsDir}
	media, err := up.media(c)
	if err != nil {
		up.discard()
		respondError(c, err)
		return
	}

	product, err := h.Catalog.Create(c.Request.Context(), fields, media)
	if err != nil {
		up.discard()
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"product": product}))
}

func (h *Handler) EditProductByID(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var fields models.ProductFields
	if err := c.ShouldBind(&fields); err != nil {
		bindError(c, err)
		return
	}

	up := &uploads{dir: h.UploadsDir}
	media, err := up.media(c)
	if err != nil {
		up.discard()
		respondError(c, err)
		return
	}

	product, err := h.Catalog.Update(c.Request.Context(), id, fields, media, currentUser(c))
	if err != nil {
		up.discard()
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"product": product}))
}

func (h *Handler) DeleteProductByID(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	slog.Debug("Product removed via API", "product_id", id)
	c.JSON(http.StatusOK, global.MessageResponse("Product deleted"))
}
