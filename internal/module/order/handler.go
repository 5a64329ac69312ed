package order

import (
	"net/http"

	"github.com/datalake/server/internal/shared/pagination"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

const (
	listDefaultLimit = 10
	listMaxLimit     = 100
)

// Handler handles HTTP requests for orders.
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the order routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	orders := r.Group("/orders", requireAuth)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/customer/:customer_id", h.ListCustomerOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.PATCH("/:id/status", h.UpdateStatus)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

// CreateOrder places a new order.
//
//	@Summary		Create order
//	@Description	Create a pending order; subtotal, tax and shipping are computed server side
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateOrderRequest	true	"Order"
//	@Success		201		{object}	OrderResponse
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order.ToResponse())
}

// ListOrders lists orders.
//
//	@Summary		List orders
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			skip		query		int		false	"Offset"
//	@Param			limit		query		int		false	"Page size"	default(10)
//	@Param			status		query		string	false	"Status filter"
//	@Param			customer_id	query		string	false	"Customer filter"
//	@Success		200			{object}	ListResponse
//	@Failure		400			{object}	response.ErrorBody
//	@Router			/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	filter := &OrderFilter{CustomerID: c.Query("customer_id")}
	if s := c.Query("status"); s != "" {
		status := OrderStatus(s)
		filter.Status = &status
	}
	h.list(c, filter)
}

// ListCustomerOrders lists the orders of one customer.
//
//	@Summary		List customer orders
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			customer_id	path		string	true	"Customer ID"
//	@Param			skip		query		int		false	"Offset"
//	@Param			limit		query		int		false	"Page size"	default(10)
//	@Success		200			{object}	ListResponse
//	@Router			/orders/customer/{customer_id} [get]
func (h *Handler) ListCustomerOrders(c *gin.Context) {
	h.list(c, &OrderFilter{CustomerID: c.Param("customer_id")})
}

func (h *Handler) list(c *gin.Context, filter *OrderFilter) {
	p := pagination.FromQuery(c, listDefaultLimit, listMaxLimit)
	resp, err := h.service.ListOrders(c.Request.Context(), filter, p)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder returns an order.
//
//	@Summary		Get order
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	OrderResponse
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order.ToResponse())
}

// UpdateOrder applies a partial update.
//
//	@Summary		Update order
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		UpdateOrderRequest	true	"Changes"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/orders/{id} [put]
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	order, err := h.service.UpdateOrder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order.ToResponse())
}

// UpdateStatus changes the order status.
//
//	@Summary		Update order status
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		UpdateStatusRequest	true	"Status"
//	@Success		200		{object}	OrderResponse
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/orders/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order.ToResponse())
}

// DeleteOrder deletes an order.
//
//	@Summary		Delete order
//	@Tags			Orders
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Order ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/orders/{id} [delete]
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.service.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrOrderNotFound, Status: http.StatusNotFound, Code: "ORDER_NOT_FOUND"},
	{Err: ErrInvalidStatus, Status: http.StatusBadRequest, Code: "INVALID_STATUS"},
	{Err: ErrOrderNotPending, Status: http.StatusConflict, Code: "ORDER_NOT_PENDING"},
	{Err: ErrInvalidTransition, Status: http.StatusConflict, Code: "INVALID_STATUS_TRANSITION"},
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
