package customer

import (
	"context"
	"net/http"
	"strconv"

	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/pagination"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

const (
	listDefaultLimit = 100
	listMaxLimit     = 1000
)

// Handler handles HTTP requests for customers.
type Handler struct {
	service *Service
}

// NewHandler creates a new customer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the customer routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	customers := r.Group("/customers", requireAuth)
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.POST("/search", h.Search)
		customers.POST("/bulk-update", h.BulkUpdate)
		customers.GET("/statistics/overview", h.Statistics)
		customers.GET("/tags/:tags", h.ListByTags)
		customers.GET("/location/search", h.ListByLocation)
		customers.GET("/available/countries", h.availableValues("country", "countries"))
		customers.GET("/available/cities", h.availableValues("city", "cities"))
		customers.GET("/available/states", h.availableValues("state", "states"))
		customers.GET("/username/:username", h.GetByUsername)
		customers.GET("/email/:email", h.GetByEmail)

		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Deactivate)
		customers.DELETE("/:id/hard", middleware.RequireRole("admin"), h.Delete)
		customers.PATCH("/:id/verify-email", h.VerifyEmail)
		customers.PATCH("/:id/verify-phone", h.VerifyPhone)
		customers.PATCH("/:id/last-login", h.TouchLastLogin)
	}
}

// Create handles customer creation.
//
//	@Summary		Create customer
//	@Description	Create a customer with a generated username and customer_id
//	@Tags			Customers
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateRequest	true	"Customer"
//	@Success		201		{object}	Response
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/customers [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	customer, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer.ToResponse())
}

// Get returns a customer by customer_id.
//
//	@Summary		Get customer
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	Response
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/customers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	customer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer.ToResponse())
}

// GetByUsername returns a customer by username.
//
//	@Summary		Get customer by username
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	Response
//	@Failure		404			{object}	response.ErrorBody
//	@Router			/customers/username/{username} [get]
func (h *Handler) GetByUsername(c *gin.Context) {
	customer, err := h.service.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer.ToResponse())
}

// GetByEmail returns a customer by email.
//
//	@Summary		Get customer by email
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			email	path		string	true	"Email"
//	@Success		200		{object}	Response
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/customers/email/{email} [get]
func (h *Handler) GetByEmail(c *gin.Context) {
	customer, err := h.service.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer.ToResponse())
}

// List returns customers page by page.
//
//	@Summary		List customers
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			skip		query		int		false	"Offset"
//	@Param			limit		query		int		false	"Page size (1-1000)"
//	@Param			is_active	query		bool	false	"Filter by active flag"
//	@Success		200			{object}	ListResponse
//	@Router			/customers [get]
func (h *Handler) List(c *gin.Context) {
	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "is_active must be a boolean")
			return
		}
		isActive = &b
	}

	resp, err := h.service.List(c.Request.Context(), isActive, pagination.FromQuery(c, listDefaultLimit, listMaxLimit))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search runs the advanced customer search.
//
//	@Summary		Search customers
//	@Tags			Customers
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		SearchRequest	true	"Filters"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/customers/search [post]
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

// Update applies a partial update.
//
//	@Summary		Update customer
//	@Tags			Customers
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Customer ID"
//	@Param			request	body		UpdateRequest	true	"Fields to change"
//	@Success		200		{object}	Response
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/customers/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	customer, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer.ToResponse())
}

// Deactivate soft-deletes a customer.
//
//	@Summary		Deactivate customer
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/customers/{id} [delete]
func (h *Handler) Deactivate(c *gin.Context) {
	h.mutate(c, h.service.Deactivate, "Customer deactivated successfully")
}

// Delete permanently removes a customer.
//
//	@Summary		Hard delete customer
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/customers/{id}/hard [delete]
func (h *Handler) Delete(c *gin.Context) {
	h.mutate(c, h.service.Delete, "Customer permanently deleted")
}

// VerifyEmail marks the email verified.
//
//	@Summary		Verify customer email
//	@Tags			Customers
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	map[string]string
//	@Router			/customers/{id}/verify-email [patch]
func (h *Handler) VerifyEmail(c *gin.Context) {
	h.mutate(c, h.service.VerifyEmail, "Email verified successfully")
}

// VerifyPhone marks the phone verified.
//
//	@Summary		Verify customer phone
//	@Tags			Customers
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	map[string]string
//	@Router			/customers/{id}/verify-phone [patch]
func (h *Handler) VerifyPhone(c *gin.Context) {
	h.mutate(c, h.service.VerifyPhone, "Phone verified successfully")
}

// TouchLastLogin records a login.
//
//	@Summary		Update last login
//	@Tags			Customers
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	map[string]string
//	@Router			/customers/{id}/last-login [patch]
func (h *Handler) TouchLastLogin(c *gin.Context) {
	h.mutate(c, h.service.TouchLastLogin, "Last login updated successfully")
}

func (h *Handler) mutate(c *gin.Context, fn func(context.Context, string) error, message string) {
	if err := fn(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// BulkUpdate applies one update to many customers.
//
//	@Summary		Bulk update customers
//	@Tags			Customers
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		BulkUpdateRequest	true	"Customer ids and update"
//	@Success		200		{object}	BulkUpdateResponse
//	@Router			/customers/bulk-update [post]
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.BulkUpdate(c.Request.Context(), &req))
}

// Statistics returns aggregate customer figures.
//
//	@Summary		Customer statistics
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Statistics
//	@Router			/customers/statistics/overview [get]
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListByTags returns customers carrying any of the comma-separated tags.
//
//	@Summary		Customers by tags
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			tags	path		string	true	"Comma-separated tags"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/customers/tags/{tags} [get]
func (h *Handler) ListByTags(c *gin.Context) {
	tags := SplitTags(c.Param("tags"))
	customers, err := h.service.ListByTags(c.Request.Context(), tags)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": toResponses(customers), "tags": tags})
}

// ListByLocation returns customers matching city, state or country.
//
//	@Summary		Customers by location
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			city	query		string	false	"City"
//	@Param			state	query		string	false	"State"
//	@Param			country	query		string	false	"Country"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/customers/location/search [get]
func (h *Handler) ListByLocation(c *gin.Context) {
	var f LocationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Validation(c, err)
		return
	}

	customers, err := h.service.ListByLocation(c.Request.Context(), f)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": toResponses(customers), "filters": f})
}

// availableValues returns the distinct values of column, keyed by plural.
//
//	@Summary		Available countries, cities or states
//	@Tags			Customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			country	query		string	false	"Restrict cities and states to a country"
//	@Success		200		{object}	map[string][]ValueCount
//	@Router			/customers/available/countries [get]
//	@Router			/customers/available/cities [get]
//	@Router			/customers/available/states [get]
func (h *Handler) availableValues(column, plural string) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := ""
		if column != "country" {
			country = c.Query("country")
		}
		values, err := h.service.AvailableValues(c.Request.Context(), column, country)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{plural: values})
	}
}

func toResponses(customers []*Customer) []*Response {
	out := make([]*Response, len(customers))
	for i, c := range customers {
		out[i] = c.ToResponse()
	}
	return out
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrCustomerNotFound, Status: http.StatusNotFound, Code: "CUSTOMER_NOT_FOUND"},
	{Err: ErrEmailAlreadyExists, Status: http.StatusBadRequest, Code: "EMAIL_ALREADY_EXISTS"},
	{Err: ErrInvalidSortField, Status: http.StatusBadRequest, Code: "INVALID_SORT_FIELD"},
	{Err: ErrUsernameExhausted, Status: http.StatusConflict, Code: "USERNAME_UNAVAILABLE"},
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
