package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hortifruti/backend/internal/infrastructure/telemetry"
	"github.com/hortifruti/backend/internal/interfaces/http/handler"
	"github.com/hortifruti/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMount(t *testing.T) {
	engine := gin.New()
	ping := NewGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	mounted := Mount(engine, "v2", ping)
	require.Len(t, mounted, 1)
	assert.Equal(t, Route{Group: "test", Method: http.MethodGet, Path: "/api/v2/test/ping"}, mounted[0])

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestGroup(t *testing.T) {
	t.Run("middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		inventory := NewGroup("inventory", "/inventory").Use(func(c *gin.Context) {
			c.Header("X-Group", "inventory")
			c.Next()
		})
		inventory.Group("batches", "/batches").
			GET("", func(c *gin.Context) { c.Status(http.StatusOK) }).
			PUT("/:id/quantity", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })

		mounted := Mount(engine, "v1", inventory)
		paths := make([]string, len(mounted))
		for i, r := range mounted {
			paths[i] = r.Method + " " + r.Path
		}
		assert.Equal(t, []string{
			"GET /api/v1/inventory/batches",
			"PUT /api/v1/inventory/batches/:id/quantity",
		}, paths)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/inventory/batches/b1/quantity", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "b1", w.Body.String())
		assert.Equal(t, "inventory", w.Header().Get("X-Group"))
	})

	t.Run("route middleware runs after group middleware", func(t *testing.T) {
		engine := gin.New()
		var order []string
		mark := func(name string) gin.HandlerFunc {
			return func(c *gin.Context) { order = append(order, name); c.Next() }
		}
		Mount(engine, "v1", NewGroup("sales", "/sales").Use(mark("group")).
			POST("", mark("route"), func(c *gin.Context) { c.Status(http.StatusCreated) }))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, []string{"group", "route"}, order)
	})
}

func testHandlers() Handlers {
	return Handlers{
		System:    handler.NewSystemHandler("hortifruti", "test", nil),
		Inventory: handler.NewInventoryHandler(nil, nil),
		Breakage:  handler.NewBreakageHandler(nil, 0),
		Sale:      handler.NewSaleHandler(nil),
		Closing:   handler.NewClosingHandler(nil),
	}
}

func TestNew_Routes(t *testing.T) {
	engine, err := New(Config{Metrics: telemetry.NewMetrics("test"), CORS: middleware.DefaultCORSConfig()}, testHandlers())
	require.NoError(t, err)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"GET /health",
		"GET /metrics",
		"GET /api/v1/inventory/batches",
		"POST /api/v1/inventory/batches",
		"PUT /api/v1/inventory/batches/:id/quantity",
		"GET /api/v1/inventory/batches/expiring",
		"GET /api/v1/inventory/products/:id/batches",
		"GET /api/v1/inventory/products/:id/stock",
		"POST /api/v1/inventory/products/:id/deduct",
		"POST /api/v1/breakages",
		"GET /api/v1/breakages",
		"GET /api/v1/breakages/export",
		"POST /api/v1/breakages/:id/photo",
		"POST /api/v1/sales",
		"GET /api/v1/sales",
		"GET /api/v1/sales/:id",
		"POST /api/v1/purchase-orders/:id/closing/preview",
		"POST /api/v1/purchase-orders/:id/closing/approve",
		"POST /api/v1/purchase-orders/:id/closing/pdf",
		"POST /api/v1/purchase-orders/:id/closing/whatsapp",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestNew_Chain(t *testing.T) {
	engine, err := New(Config{Metrics: telemetry.NewMetrics("test"), MaxBodySize: 8}, testHandlers())
	require.NoError(t, err)

	t.Run("health carries a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDKey))
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "test_http_requests_total")
	})

	t.Run("body limit runs before the handler", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{"items":[{"product_id":"x"}]}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
