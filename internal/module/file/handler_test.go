package file

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, requestctx.Principal{UserID: userID, Role: "user"})
		c.Next()
	}
}

func setupRouter(t *testing.T, maxSize int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, maxSize)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), fakeAuth(1))
	return r
}

func multipartBody(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestHandler_UploadDownload(t *testing.T) {
	r := setupRouter(t, 1024)

	body, contentType := multipartBody(t, "report.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var uploaded UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.Equal(t, TypeDocument, uploaded.File.FileType)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, uploaded.File.URL, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "report.pdf")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/types/document", nil))
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestHandler_UploadTooLarge(t *testing.T) {
	r := setupRouter(t, 8)

	body, contentType := multipartBody(t, "big.txt", "this is longer than eight bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"PAYLOAD_TOO_LARGE"`)
	assert.Contains(t, w.Body.String(), "file exceeds the maximum upload size")
}

func TestHandler_NotFound(t *testing.T) {
	r := setupRouter(t, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
