package product

import (
	"net/http"
	"strconv"

	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/pagination"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

const (
	listDefaultLimit     = 20
	listMaxLimit         = 100
	featuredDefaultLimit = 10
	featuredMaxLimit     = 50
)

// Handler handles HTTP requests for products.
type Handler struct {
	service *Service
}

// NewHandler creates a new product handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the product routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	products := r.Group("/products", requireAuth)
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.POST("/search", h.Search)
		products.POST("/bulk-update", h.BulkUpdate)
		products.POST("/inventory/update", h.UpdateInventory)
		products.GET("/featured", h.Featured)
		products.GET("/category/:category", h.ByCategory)
		products.GET("/statistics/overview", h.Statistics)
		products.GET("/categories/available", h.Categories)
		products.GET("/brands/available", h.Brands)
		products.GET("/tags/available", h.Tags)
		products.GET("/sku/:sku", h.GetBySKU)

		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.DELETE("/:id", h.Delete)
		products.PATCH("/:id/status", h.UpdateStatus)
		products.PATCH("/:id/feature", h.SetFeatured)
	}
}

// Create handles product creation.
//
//	@Summary		Create product
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateRequest	true	"Product"
//	@Success		201		{object}	Response
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/products [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	createdBy := strconv.FormatUint(uint64(middleware.GetUserID(c)), 10)
	p, err := h.service.Create(c.Request.Context(), &req, createdBy)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p.ToResponse())
}

// List lists products.
//
//	@Summary		List products
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			skip		query		int		false	"Offset"
//	@Param			limit		query		int		false	"Page size"	default(20)
//	@Param			category	query		string	false	"Category"
//	@Param			status		query		string	false	"Status"
//	@Param			is_featured	query		bool	false	"Featured only"
//	@Success		200			{object}	ListResponse
//	@Failure		400			{object}	response.ErrorBody
//	@Router			/products [get]
func (h *Handler) List(c *gin.Context) {
	filter := &ListFilter{}
	if v := c.Query("category"); v != "" {
		category := Category(v)
		filter.Category = &category
	}
	if v := c.Query("status"); v != "" {
		status := Status(v)
		filter.Status = &status
	}
	if v := c.Query("is_featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "is_featured must be a boolean")
			return
		}
		filter.IsFeatured = &featured
	}

	resp, err := h.service.List(c.Request.Context(), filter, pagination.FromQuery(c, listDefaultLimit, listMaxLimit))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search runs a product search.
//
//	@Summary		Search products
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		SearchRequest	true	"Search"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/products/search [post]
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	resp, err := h.service.Search(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a product by id.
//
//	@Summary		Get product
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	Response
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/products/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToResponse())
}

// GetBySKU returns a product by sku.
//
//	@Summary		Get product by SKU
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			sku	path		string	true	"SKU"
//	@Success		200	{object}	Response
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/products/sku/{sku} [get]
func (h *Handler) GetBySKU(c *gin.Context) {
	p, err := h.service.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToResponse())
}

// Update applies a partial update.
//
//	@Summary		Update product
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Product ID"
//	@Param			request	body		UpdateRequest	true	"Changes"
//	@Success		200		{object}	Response
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/products/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToResponse())
}

// Delete deletes a product.
//
//	@Summary		Delete product
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/products/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// BulkUpdate updates several products at once.
//
//	@Summary		Bulk update products
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		BulkUpdateRequest	true	"Products and changes"
//	@Success		200		{object}	BulkUpdateResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/products/bulk-update [post]
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	resp, err := h.service.BulkUpdate(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateInventory changes product stock.
//
//	@Summary		Update inventory
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		InventoryRequest	true	"Stock change"
//	@Success		200		{object}	InventoryResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/products/inventory/update [post]
func (h *Handler) UpdateInventory(c *gin.Context) {
	var req InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	resp, err := h.service.UpdateInventory(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Featured lists featured products.
//
//	@Summary		Featured products
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Max results"	default(10)
//	@Success		200		{array}		Response
//	@Router			/products/featured [get]
func (h *Handler) Featured(c *gin.Context) {
	p := pagination.FromQuery(c, featuredDefaultLimit, featuredMaxLimit)
	products, err := h.service.Featured(c.Request.Context(), p.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses(products))
}

// ByCategory lists active products in a category.
//
//	@Summary		Products by category
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			category	path		string	true	"Category"
//	@Param			limit		query		int		false	"Max results"	default(20)
//	@Success		200			{array}		Response
//	@Failure		400			{object}	response.ErrorBody
//	@Router			/products/category/{category} [get]
func (h *Handler) ByCategory(c *gin.Context) {
	p := pagination.FromQuery(c, listDefaultLimit, listMaxLimit)
	products, err := h.service.ByCategory(c.Request.Context(), Category(c.Param("category")), p.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses(products))
}

// Statistics returns catalogue statistics.
//
//	@Summary		Product statistics
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Statistics
//	@Router			/products/statistics/overview [get]
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Categories lists every product category.
//
//	@Summary		Available categories
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	string
//	@Router			/products/categories/available [get]
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, AllCategories)
}

// Brands lists brands in use.
//
//	@Summary		Available brands
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	string
//	@Router			/products/brands/available [get]
func (h *Handler) Brands(c *gin.Context) {
	brands, err := h.service.Brands(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

// Tags lists tags in use.
//
//	@Summary		Available tags
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	string
//	@Router			/products/tags/available [get]
func (h *Handler) Tags(c *gin.Context) {
	tags, err := h.service.Tags(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// UpdateStatus sets the product status.
//
//	@Summary		Update product status
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Product ID"
//	@Param			status	query		string	true	"New status"
//	@Success		200		{object}	Response
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/products/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Validation(c, err)
		return
	}

	p, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToResponse())
}

// SetFeatured sets the featured flag.
//
//	@Summary		Feature product
//	@Tags			Products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Product ID"
//	@Param			is_featured	query		bool	true	"Featured"
//	@Success		200			{object}	Response
//	@Failure		404			{object}	response.ErrorBody
//	@Router			/products/{id}/feature [patch]
func (h *Handler) SetFeatured(c *gin.Context) {
	var req FeatureRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Validation(c, err)
		return
	}

	p, err := h.service.SetFeatured(c.Request.Context(), c.Param("id"), *req.IsFeatured)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.ToResponse())
}

func responses(products []*Product) []*Response {
	out := make([]*Response, len(products))
	for i, p := range products {
		out[i] = p.ToResponse()
	}
	return out
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrProductNotFound, Status: http.StatusNotFound, Code: "PRODUCT_NOT_FOUND"},
	{Err: ErrInvalidID, Status: http.StatusNotFound, Code: "PRODUCT_NOT_FOUND", Message: "product not found"},
	{Err: ErrDuplicateSKU, Status: http.StatusBadRequest, Code: "DUPLICATE_SKU"},
	{Err: ErrInsufficientStock, Status: http.StatusBadRequest, Code: "INSUFFICIENT_STOCK"},
	{Err: ErrInvalidSortField, Status: http.StatusBadRequest, Code: "INVALID_SORT_FIELD"},
	{Err: ErrInvalidCategory, Status: http.StatusBadRequest, Code: "INVALID_CATEGORY"},
	{Err: ErrInvalidStatus, Status: http.StatusBadRequest, Code: "INVALID_STATUS"},
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
