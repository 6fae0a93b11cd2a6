package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appbreakage "github.com/hortifruti/backend/internal/application/breakage"
	appinv "github.com/hortifruti/backend/internal/application/inventory"
	apppurchasing "github.com/hortifruti/backend/internal/application/purchasing"
	appsales "github.com/hortifruti/backend/internal/application/sales"
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/hortifruti/backend/internal/infrastructure/cache"
	"github.com/hortifruti/backend/internal/infrastructure/config"
	"github.com/hortifruti/backend/internal/infrastructure/imaging"
	"github.com/hortifruti/backend/internal/infrastructure/lock"
	"github.com/hortifruti/backend/internal/infrastructure/logger"
	"github.com/hortifruti/backend/internal/infrastructure/migration"
	"github.com/hortifruti/backend/internal/infrastructure/persistence"
	"github.com/hortifruti/backend/internal/infrastructure/storage"
	"github.com/hortifruti/backend/internal/infrastructure/telemetry"
	"github.com/hortifruti/backend/internal/interfaces/http/handler"
	"github.com/hortifruti/backend/internal/interfaces/http/middleware"
	"github.com/hortifruti/backend/internal/interfaces/http/router"
	"github.com/hortifruti/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	photoJPEGQuality = 85
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting hortifruti backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(cfg, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterOtelGorm(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	metrics := telemetry.NewMetrics("hortifruti")

	// Redis is optional; without it idempotency keys and approval locks
	// only hold within this process.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redis not configured, using in-process idempotency store and locker")
	}

	repos := persistence.NewRepositories(db.DB)
	var scope appinv.TransactionScope
	if cfg.Inventory.TransactionalWrites {
		scope = persistence.NewGormTransactionScope(db.DB)
	} else {
		scope = appinv.NewNoOpTransactionScope(repos)
	}

	var locker shared.Locker
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, "hortifruti:lock:")
	} else {
		locker = lock.NewMemoryLocker()
	}

	batchStore := appinv.NewBatchStore(repos.Batches, log)
	deductor := appinv.NewFIFODeductor(repos.Batches, log,
		appinv.WithMode(appinv.DeductionMode(cfg.Inventory.DeductionMode)),
		appinv.WithMaxAttempts(cfg.Inventory.AtomicMaxAttempts),
		appinv.WithObserver(metrics),
	)

	breakageOpts := []appbreakage.Option{appbreakage.WithObserver(metrics)}
	photos, err := newPhotoStorage(ctx, cfg, metrics, log)
	if err != nil {
		log.Fatal("Failed to initialize photo storage", zap.Error(err))
	}
	if photos != nil {
		breakageOpts = append(breakageOpts, appbreakage.WithPhotos(
			photos,
			imaging.NewProcessor(cfg.Storage.PhotoMaxWidth, photoJPEGQuality),
			cfg.Storage.PresignExpiry,
		))
	}
	breakageRecorder := appbreakage.NewRecorder(scope, repos.Breakages, repos.Products, log, breakageOpts...)

	saleOpts := []appsales.Option{appsales.WithObserver(metrics)}
	if cfg.Idempotency.Enabled {
		store := cache.NewIdempotencyStoreFactory(redisClient,
			cache.WithLogger(log),
			cache.WithKeyPrefix("hortifruti:idempotency:sale:"),
		).CreateStore()
		saleOpts = append(saleOpts, appsales.WithIdempotency(store, cfg.Idempotency.TTL))
	}
	saleRecorder := appsales.NewRecorder(scope, repos.Sales, deductor, log, saleOpts...)

	closing := apppurchasing.NewClosingService(scope, repos.PurchaseOrders, repos.Products, locker,
		cfg.Pricing.ToPricing(), log,
		apppurchasing.WithLockTTL(cfg.Closing.LockTTL),
		apppurchasing.WithObserver(metrics),
	)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine, err := router.New(router.Config{
		Logger:  log,
		Metrics: metrics,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		MaxUploadSize:  cfg.HTTP.MaxUploadSize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
		Inventory: handler.NewInventoryHandler(batchStore, deductor),
		Breakage:  handler.NewBreakageHandler(breakageRecorder, cfg.HTTP.MaxUploadSize),
		Sale:      handler.NewSaleHandler(saleRecorder),
		Closing:   handler.NewClosingHandler(closing),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// applyMigrations runs the embedded migrations over a dedicated connection,
// since closing the migrator closes its database handle.
func applyMigrations(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewWithFS(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// newPhotoStorage returns nil when no bucket is configured outside
// development, which disables photo upload.
func newPhotoStorage(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics, log *zap.Logger) (storage.ObjectStorage, error) {
	var backend storage.ObjectStorage
	switch {
	case cfg.Storage.Bucket != "":
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		backend = s3
		log.Info("Photo storage ready", zap.String("bucket", s3.GetBucket()))
	case cfg.App.Env == "development":
		backend = storage.NewMemoryObjectStorage()
		log.Warn("Storage bucket not configured, keeping breakage photos in memory")
	default:
		log.Warn("Storage bucket not configured, breakage photo upload disabled")
		return nil, nil
	}
	return storage.NewBreakerStorage(backend, storage.DefaultBreakerConfig(), metrics, log), nil
}

type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }
