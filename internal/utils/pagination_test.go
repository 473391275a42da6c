package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{"absent", "", PaginationParams{}},
		{"page only", "page=3", PaginationParams{Enabled: true, Page: 3, Limit: 20, Offset: 40}},
		{"both", "page=2&limit=5", PaginationParams{Enabled: true, Page: 2, Limit: 5, Offset: 5}},
		{"limit too large", "limit=1000", PaginationParams{Enabled: true, Page: 1, Limit: 20, Offset: 0}},
		{"huge page", "page=9223372036854775807&limit=100", PaginationParams{Enabled: true, Page: 100000, Limit: 100, Offset: 9999900}},
		{"page past int range", "page=99999999999999999999", PaginationParams{Enabled: true, Page: 100000, Limit: 20, Offset: 1999980}},
		{"garbage", "page=abc&limit=-1", PaginationParams{Enabled: true, Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetPaginationParams(contextWithQuery(tt.query)))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "launch", EscapeLike("LAUNCH"))
	assert.Equal(t, "100!%", EscapeLike("100%"))
	assert.Equal(t, "a!_b", EscapeLike("a_b"))
	assert.Equal(t, "wow!!", EscapeLike("wow!"))
}
