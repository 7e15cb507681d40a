package common

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(t *testing.T, query string) (int, int) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/notifications"+query, nil)
	return GetLimitOffsetParams(c)
}

func TestGetLimitOffsetParams(t *testing.T) {
	limit, offset := paramsForQuery(t, "")
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = paramsForQuery(t, "?limit=25&offset=75")
	assert.Equal(t, 25, limit)
	assert.Equal(t, 75, offset)

	// Malformed and out-of-range values fall back to defaults.
	limit, offset = paramsForQuery(t, "?limit=banana&offset=-3")
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, _ = paramsForQuery(t, "?limit=100000")
	assert.Equal(t, MaxLimit, limit)

	limit, _ = paramsForQuery(t, "?limit=0")
	assert.Equal(t, DefaultLimit, limit)
}

func TestNewPagination_HasMore(t *testing.T) {
	p := NewPagination(10, 4, 0)
	assert.True(t, p.HasMore)

	p = NewPagination(10, 4, 8)
	assert.False(t, p.HasMore)

	p = NewPagination(0, 50, 0)
	assert.False(t, p.HasMore)
}
