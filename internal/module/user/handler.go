package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/pagination"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

const maxListLimit = 100

// Handler handles HTTP requests for user management.
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the user routes.
// requireAuth guards everything except registration and login.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.POST("/authenticate", h.Authenticate)
		users.POST("", h.Create)

		protected := users.Group("", requireAuth)
		protected.GET("", h.List)
		protected.GET("/me", h.Me)
		protected.GET("/role/:role", h.ListByRole)
		protected.GET("/:id", h.Get)

		admin := protected.Group("", middleware.RequireRole(string(RoleAdmin)))
		admin.PATCH("/:id/role", h.UpdateRole)
		admin.DELETE("/:id", h.Delete)
	}
}

// Authenticate handles email/password login.
//
//	@Summary		Authenticate user
//	@Description	Exchange email and password for a bearer token
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AuthenticateRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/users/authenticate [post]
func (h *Handler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	resp, err := h.service.Authenticate(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create handles user registration.
//
//	@Summary		Create user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"User"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/users [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.ToResponse())
}

// List returns users page by page.
//
//	@Summary		List users
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			skip	query		int	false	"Offset"
//	@Param			limit	query		int	false	"Page size (1-100)"
//	@Success		200		{array}		UserResponse
//	@Router			/users [get]
func (h *Handler) List(c *gin.Context) {
	h.list(c, nil)
}

// ListByRole returns users with the given role.
//
//	@Summary		List users by role
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			role	path		string	true	"Role"	Enums(admin, tenant, user)
//	@Param			skip	query		int		false	"Offset"
//	@Param			limit	query		int		false	"Page size (1-100)"
//	@Success		200		{array}		UserResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/users/role/{role} [get]
func (h *Handler) ListByRole(c *gin.Context) {
	role := Role(c.Param("role"))
	h.list(c, &role)
}

func (h *Handler) list(c *gin.Context, role *Role) {
	p := pagination.FromQuery(c, maxListLimit, maxListLimit)

	users, err := h.service.List(c.Request.Context(), role, p.Offset(), p.Limit)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	c.JSON(http.StatusOK, out)
}

// Me returns the authenticated user.
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	response.ErrorBody
//	@Router			/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Get returns a user by id.
//
//	@Summary		Get user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"User ID"
//	@Success		200	{object}	UserResponse
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/users/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// UpdateRole changes a user's role.
//
//	@Summary		Update user role
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int					true	"User ID"
//	@Param			request	body		UpdateRoleRequest	true	"Role"
//	@Success		200		{object}	UserResponse
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/users/{id}/role [patch]
func (h *Handler) UpdateRole(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	user, err := h.service.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Delete removes a user.
//
//	@Summary		Delete user
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	int	true	"User ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrUserNotFound, Status: http.StatusNotFound, Code: "USER_NOT_FOUND"},
	{Err: ErrEmailAlreadyExists, Status: http.StatusBadRequest, Code: "EMAIL_ALREADY_EXISTS"},
	{Err: ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS"},
	{Err: ErrInvalidRole, Status: http.StatusBadRequest, Code: "INVALID_ROLE"},
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
