package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hortifruti/backend/internal/infrastructure/logger"
	"github.com/hortifruti/backend/internal/infrastructure/telemetry"
	"github.com/hortifruti/backend/internal/interfaces/http/handler"
	"github.com/hortifruti/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Body limits used when the configuration leaves them at zero
const (
	DefaultMaxBodySize   int64 = 1 << 20
	DefaultMaxUploadSize int64 = 10 << 20
)

// Handlers groups the handlers mounted by New
type Handlers struct {
	System    *handler.SystemHandler
	Inventory *handler.InventoryHandler
	Breakage  *handler.BreakageHandler
	Sale      *handler.SaleHandler
	Closing   *handler.ClosingHandler
}

// Config holds the HTTP surface settings
type Config struct {
	Logger         *zap.Logger
	Metrics        *telemetry.Metrics
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	MaxUploadSize  int64
	TrustedProxies []string
}

// New builds the gin engine with the middleware chain and every API route
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanDecorator(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(cfg.Metrics),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)

	engine.GET("/health", h.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	maxBody, maxUpload := cfg.MaxBodySize, cfg.MaxUploadSize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadSize
	}
	bodyLimit := middleware.BodyLimit(maxBody)
	uploadLimit := middleware.BodyLimit(maxUpload)

	inventory := NewGroup("inventory", "/inventory").Use(bodyLimit)
	batches := inventory.Group("batches", "/batches")
	batches.GET("", h.Inventory.ListBatches).
		POST("", h.Inventory.AddBatch).
		GET("/expiring", h.Inventory.ExpiringBatches).
		PUT("/:id/quantity", h.Inventory.SetBatchQuantity)
	products := inventory.Group("products", "/products/:id")
	products.GET("/batches", h.Inventory.ProductBatches).
		GET("/stock", h.Inventory.ProductStock).
		POST("/deduct", h.Inventory.Deduct)

	breakages := NewGroup("breakages", "/breakages")
	breakages.POST("", bodyLimit, h.Breakage.Record).
		GET("", h.Breakage.List).
		GET("/export", h.Breakage.Export).
		POST("/:id/photo", uploadLimit, h.Breakage.UploadPhoto)

	sales := NewGroup("sales", "/sales").Use(bodyLimit)
	sales.POST("", h.Sale.Record).
		GET("", h.Sale.List).
		GET("/:id", h.Sale.Get)

	closing := NewGroup("purchase-orders", "/purchase-orders/:id/closing").Use(bodyLimit)
	closing.POST("/preview", h.Closing.Preview).
		POST("/approve", h.Closing.Approve).
		POST("/pdf", h.Closing.PDF).
		POST("/whatsapp", h.Closing.WhatsApp)

	for _, r := range Mount(engine, "v1", inventory, breakages, sales, closing) {
		log.Debug("Route mounted", zap.String("group", r.Group), zap.String("method", r.Method), zap.String("path", r.Path))
	}

	return engine, nil
}
