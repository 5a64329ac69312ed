package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		skip, limit   int
		expectedSkip  int
		expectedLimit int
	}{
		{"defaults", 0, 0, 0, 20},
		{"negative skip", -5, 10, 0, 10},
		{"clamped limit", 0, 500, 0, 100},
		{"passthrough", 40, 20, 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.skip, tt.limit, DefaultLimit, MaxLimit)
			assert.Equal(t, tt.expectedSkip, p.Offset())
			assert.Equal(t, tt.expectedLimit, p.Limit)
		})
	}
}

func TestPagination_Page(t *testing.T) {
	assert.Equal(t, 1, New(0, 10, 10, 100).Page())
	assert.Equal(t, 3, New(20, 10, 10, 100).Page())
	assert.Equal(t, 2, New(15, 10, 10, 100).Page())
}

func TestPagination_TotalPages(t *testing.T) {
	p := New(0, 10, 10, 100)
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
}

func TestFromPage(t *testing.T) {
	p := FromPage(3, 25, 10, 100)
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 3, p.Page())

	p = FromPage(0, 0, 10, 100)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, 10, p.Limit)
}

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?skip=30&limit=abc", nil)

	p := FromQuery(c, 10, 100)
	assert.Equal(t, 30, p.Skip)
	assert.Equal(t, 10, p.Limit)
}
