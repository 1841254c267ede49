package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		method          string
		expectedStatus  int
		expectedHeaders map[string]string
	}{
		{
			name:           "preflight request",
			method:         "OPTIONS",
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":   "*",
				"Access-Control-Allow-Methods":  "GET, POST, PUT, DELETE, OPTIONS",
				"Access-Control-Allow-Headers":  "Content-Type, Authorization, Range",
				"Access-Control-Expose-Headers": "X-Cache, ETag, Age",
			},
		},
		{
			name:           "regular GET request",
			method:         "GET",
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "*",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, router := gin.CreateTestContext(w)

			router.Use(CORS())
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", "https://example.com")

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for header, expectedValue := range tt.expectedHeaders {
				assert.Equal(t, expectedValue, w.Header().Get(header), "Header: %s", header)
			}
		})
	}
}

func TestRequestSizeLimitWithSize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	customLimit := int64(512 * 1024) // 512KB

	tests := []struct {
		name           string
		bodySize       int
		expectedStatus int
	}{
		{
			name:           "request under limit",
			bodySize:       256 * 1024,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "request over limit",
			bodySize:       1024 * 1024,
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, router := gin.CreateTestContext(w)

			router.Use(RequestSizeLimitWithSize(customLimit))
			router.POST("/test", func(c *gin.Context) {
				if _, err := c.GetRawData(); err != nil {
					c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			body := strings.Repeat("a", tt.bodySize)
			req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func limitedRouter(t *testing.T, rps, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := newLimiterRegistry()
	t.Cleanup(registry.Close)

	router := gin.New()
	router.Use(registry.Limit(rps, burst))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func serveAs(router *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w.Code
}

func TestLimiterRegistryUnderLimit(t *testing.T) {
	router := limitedRouter(t, 10, 5)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serveAs(router, "127.0.0.1:12345"))
	}
}

func TestLimiterRegistryBlocksBurst(t *testing.T) {
	router := limitedRouter(t, 2, 3)

	blocked := 0
	for i := 0; i < 6; i++ {
		if serveAs(router, "127.0.0.1:12345") == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Greater(t, blocked, 0, "requests past the burst must be rejected")
}

func TestLimiterRegistryTracksClientsIndependently(t *testing.T) {
	router := limitedRouter(t, 2, 2)

	// First client exhausts its budget
	for i := 0; i < 3; i++ {
		serveAs(router, "127.0.0.1:12345")
	}

	assert.Equal(t, http.StatusOK, serveAs(router, "192.168.1.1:54321"))
}

func TestLimiterRegistrySeparatesBudgets(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := newLimiterRegistry()
	t.Cleanup(registry.Close)

	router := gin.New()
	tight := router.Group("/process", registry.Limit(1, 1))
	tight.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	wide := router.Group("/media", registry.Limit(100, 100))
	wide.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "127.0.0.1:12345"
		router.ServeHTTP(w, req)
		return w.Code
	}

	// Exhaust the tight budget; the wide one for the same client is untouched
	send("/process")
	assert.Equal(t, http.StatusTooManyRequests, send("/process"))
	assert.Equal(t, http.StatusOK, send("/media"))
}

func TestLimiterRegistryPrunesIdleVisitors(t *testing.T) {
	registry := newLimiterRegistry()
	defer registry.Close()

	registry.allow("10.0.0.1", 10, 20)
	registry.allow("10.0.0.2", 10, 20)

	registry.mu.Lock()
	registry.visitors["10.0.0.1|10/20"].lastSeen = time.Now().Add(-2 * limiterIdleTimeout)
	registry.mu.Unlock()

	registry.prune(time.Now())

	registry.mu.Lock()
	defer registry.mu.Unlock()
	assert.NotContains(t, registry.visitors, "10.0.0.1|10/20")
	assert.Contains(t, registry.visitors, "10.0.0.2|10/20")
}

func TestLimiterRegistryCloseIsIdempotent(t *testing.T) {
	registry := newLimiterRegistry()
	registry.Limit(1, 1) // starts the prune goroutine

	registry.Close()
	registry.Close()
}
