package file

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for file uploads.
type Handler struct {
	service *Service
}

// NewHandler creates a new file handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the file routes. All of them require auth.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	files := r.Group("/files", requireAuth)
	{
		files.POST("/upload", h.Upload)
		files.GET("", h.List)
		files.GET("/types/:type", h.ListByType)
		files.GET("/:id", h.Get)
		files.GET("/:id/download", h.Download)
		files.DELETE("/:id", h.Delete)
	}
}

// Upload stores a multipart file for the caller.
//
//	@Summary		Upload file
//	@Description	Stores the file under user/{user_id}/{file_type}/
//	@Tags			Files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File"
//	@Success		200		{object}	UploadResponse
//	@Failure		413		{object}	response.ErrorBody
//	@Router			/files/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	if h.service.maxSize > 0 {
		// Leave room for multipart framing around the part itself.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.maxSize+1<<20)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleError(c, ErrFileTooLarge)
			return
		}
		response.Validation(c, err)
		return
	}

	src, err := header.Open()
	if err != nil {
		response.InternalError(c, "failed to read upload")
		return
	}
	defer src.Close()

	f, err := h.service.Upload(c.Request.Context(), middleware.GetUserID(c), &UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, src)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Message: "File uploaded successfully",
		File:    f.ToResponse(),
	})
}

// List returns the caller's files.
//
//	@Summary		List files
//	@Tags			Files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file_type	query		string	false	"Filter by type"
//	@Success		200			{object}	ListResponse
//	@Router			/files [get]
func (h *Handler) List(c *gin.Context) {
	h.list(c, c.Query("file_type"))
}

// ListByType returns the caller's files of one type.
//
//	@Summary		List files by type
//	@Tags			Files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			type	path		string	true	"File type"	Enums(image, document, video, audio, archive, other)
//	@Success		200		{object}	ListResponse
//	@Router			/files/types/{type} [get]
func (h *Handler) ListByType(c *gin.Context) {
	h.list(c, c.Param("type"))
}

func (h *Handler) list(c *gin.Context, fileType string) {
	files, err := h.service.List(c.Request.Context(), middleware.GetUserID(c), fileType)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]*Response, len(files))
	for i, f := range files {
		out[i] = f.ToResponse()
	}
	c.JSON(http.StatusOK, ListResponse{Files: out, Total: len(out)})
}

// Get returns file metadata.
//
//	@Summary		Get file
//	@Tags			Files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"File ID"
//	@Success		200	{object}	Response
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/files/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	f, err := h.service.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, f.ToResponse())
}

// Download streams the file with its original name.
//
//	@Summary		Download file
//	@Tags			Files
//	@Produce		octet-stream
//	@Security		BearerAuth
//	@Param			id	path	int	true	"File ID"
//	@Success		200
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/files/{id}/download [get]
func (h *Handler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	f, rc, size, err := h.service.Open(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": f.OriginalFilename})
	c.DataFromReader(http.StatusOK, size, f.MimeType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Delete removes a file.
//
//	@Summary		Delete file
//	@Tags			Files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"File ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/files/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid file id")
		return 0, false
	}
	return uint(id), true
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrFileNotFound, Status: http.StatusNotFound, Code: "FILE_NOT_FOUND"},
	{Err: ErrInvalidFileType, Status: http.StatusBadRequest, Code: "INVALID_FILE_TYPE"},
	{Err: ErrEmptyFile, Status: http.StatusBadRequest, Code: "EMPTY_FILE"},
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
