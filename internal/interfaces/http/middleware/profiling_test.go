package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var route string
	var found bool
	r := gin.New()
	r.Use(Profiling(true, "/health"))
	r.GET("/vendors/:id", func(c *gin.Context) {
		route, found = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vendors/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, found)
	assert.Equal(t, "/vendors/:id", route)
}

func TestProfiling_SkipsPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var found bool
	r := gin.New()
	r.Use(Profiling(true, "/health"))
	r.GET("/health", func(c *gin.Context) {
		_, found = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.False(t, found)
}
