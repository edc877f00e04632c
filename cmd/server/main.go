package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docapp "github.com/sibarkumen/backend/internal/application/document"
	identityapp "github.com/sibarkumen/backend/internal/application/identity"
	inventoryapp "github.com/sibarkumen/backend/internal/application/inventory"
	masterdataapp "github.com/sibarkumen/backend/internal/application/masterdata"
	"github.com/sibarkumen/backend/internal/application/report"
	appshared "github.com/sibarkumen/backend/internal/application/shared"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/auth"
	"github.com/sibarkumen/backend/internal/infrastructure/cache"
	"github.com/sibarkumen/backend/internal/infrastructure/config"
	"github.com/sibarkumen/backend/internal/infrastructure/logger"
	"github.com/sibarkumen/backend/internal/infrastructure/migration"
	"github.com/sibarkumen/backend/internal/infrastructure/persistence"
	"github.com/sibarkumen/backend/internal/infrastructure/printing"
	"github.com/sibarkumen/backend/internal/infrastructure/storage"
	"github.com/sibarkumen/backend/internal/infrastructure/telemetry"
	"github.com/sibarkumen/backend/internal/interfaces/http/handler"
	"github.com/sibarkumen/backend/internal/interfaces/http/middleware"
	"github.com/sibarkumen/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const lowStockInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the OTLP log bridge can be teed into the logger
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Logs.IsEnabled() {
		teed, err := logger.New(logCfg, tel.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			log.Fatal("Failed to attach OTLP log core", zap.Error(err))
		}
		log = teed
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Sibarkumen backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, cfg.Database.MigrationsPath, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	checks := map[string]handler.Pinger{"database": db}

	// Token revocation: Redis when configured, otherwise per-process memory
	var blacklist auth.TokenBlacklist
	var idempotency shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		client, err := auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() { _ = client.Close() }()
		blacklist = auth.NewRedisTokenBlacklist(client)
		idempotency = cache.NewRedisIdempotencyStore(client, "")
		checks["redis"] = redisPinger{client}
		log.Info("Token blacklist backed by redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewMemoryTokenBlacklist()
		memStore := cache.NewInMemoryIdempotencyStore()
		defer func() { _ = memStore.Close() }()
		idempotency = memStore
		log.Warn("Redis not configured, token blacklist and idempotency keys are in-memory")
	}

	var objects docapp.ObjectStorage = storage.Disabled{}
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err), zap.String("bucket", s3Store.Bucket()))
		}
		objects = s3Store
	}

	var renderer printing.PDFRenderer
	if cfg.Printing.PDFEnabled {
		renderer = printing.NewChromedpRenderer(cfg.Printing.RemoteURL, cfg.Printing.Timeout, log)
	}
	printer := printing.NewPrinter(cfg.Printing, renderer, log)
	defer func() {
		if err := printer.Close(); err != nil {
			log.Error("Error closing printer", zap.Error(err))
		}
	}()

	// Initialize repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	mutationRepo := persistence.NewGormMutationRepository(db.DB)
	opnameRepo := persistence.NewGormOpnameRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	positionRepo := persistence.NewGormPositionRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	requisitionRepo := persistence.NewGormRequisitionRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRepository(db.DB)
	handoverRepo := persistence.NewGormHandoverRepository(db.DB)
	counter := persistence.NewGormDocumentCounter(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	var metrics appshared.Metrics = appshared.NopMetrics{}
	if tel.Meter.IsEnabled() {
		bm, err := telemetry.NewBusinessMetrics(tel.Meter.Meter("sibarkumen"), log)
		if err != nil {
			log.Fatal("Failed to register business metrics", zap.Error(err))
		}
		bm.StartLowStockCollection(ctx, itemRepo, lowStockInterval)
		defer bm.Stop()
		metrics = bm
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, log)

	categoryService := masterdataapp.NewCategoryService(categoryRepo, itemRepo)
	unitService := masterdataapp.NewUnitService(unitRepo, itemRepo)
	positionService := masterdataapp.NewPositionService(positionRepo)
	supplierService := masterdataapp.NewSupplierService(supplierRepo, log)
	employeeService := masterdataapp.NewEmployeeService(employeeRepo, positionRepo)

	itemService := inventoryapp.NewItemService(itemRepo, mutationRepo, categoryRepo, unitRepo)
	opnameService := inventoryapp.NewOpnameService(opnameRepo, itemRepo, txScope, metrics, log)

	docRepos := docapp.Repositories{
		Requisitions: requisitionRepo,
		Approvals:    approvalRepo,
		Handovers:    handoverRepo,
		Counter:      counter,
		Items:        itemRepo,
		Employees:    employeeRepo,
		Suppliers:    supplierRepo,
	}
	issuer := docapp.NewNumberIssuer(txScope, cfg.Numbering, metrics, log)
	documentService := docapp.NewDocumentService(issuer, docRepos, metrics, log)
	printService := docapp.NewPrintService(printer, docRepos, unitRepo, userRepo)
	attachmentService := docapp.NewAttachmentService(handoverRepo, objects, cfg.Storage.MaxUploadSize, log)

	statsService := report.NewStatsService(itemRepo, mutationRepo, supplierRepo, employeeRepo, counter)

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}

	securityConfig := middleware.DefaultSecurityConfig()
	if cfg.Session.Secure {
		securityConfig.HSTSMaxAge = 365 * 24 * time.Hour
	}

	resolver := auth.NewSessionResolver(jwtService, blacklist, cfg.Session.CookieName)

	// Order matters: request id before logging, tracing before the gate so
	// redirects are traced, body limit last so it only wraps handlers.
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(securityConfig),
		middleware.CORSWithConfig(corsConfig),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tel.Tracer.IsEnabled(),
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(tel.Meter.Meter("sibarkumen/http")),
		middleware.AccessGate(resolver, log),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   tel.Profiler.IsEnabled(),
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
		middleware.SkipMultipart(middleware.BodyLimit(cfg.HTTP.MaxBodySize)),
	)

	signInLimiter := middleware.NewRateLimiter(cfg.HTTP.SignInRateLimit, cfg.HTTP.SignInRateWindow)
	defer signInLimiter.Stop()

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.Session),
		Users:       handler.NewUserHandler(userService),
		Categories:  handler.NewCategoryHandler(categoryService),
		Units:       handler.NewUnitHandler(unitService),
		Positions:   handler.NewPositionHandler(positionService),
		Suppliers:   handler.NewSupplierHandler(supplierService),
		Employees:   handler.NewEmployeeHandler(employeeService),
		Items:       handler.NewItemHandler(itemService),
		Opnames:     handler.NewOpnameHandler(opnameService),
		Documents:   handler.NewDocumentHandler(documentService),
		Prints:      handler.NewPrintHandler(printService),
		Attachments: handler.NewAttachmentHandler(attachmentService),
		Dashboard:   handler.NewDashboardHandler(statsService),
		System:      handler.NewSystemHandler(cfg.App.Name, version, checks),
	}
	opts := handler.RouteOptions{
		SignInLimit: middleware.RateLimit(signInLimiter),
		UploadLimit: cfg.Storage.MaxUploadSize,
		Idempotency: middleware.Idempotency(idempotency, shared.DefaultIdempotencyTTL, log),
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterRoot(handler.SignInRoutes(handlers.Auth, opts)).
		RegisterRoot(handler.HealthRoutes(handlers.System)).
		RegisterRoot(handler.DashboardRoutes(handlers, opts)).
		Register(handler.AuthAPIRoutes(handlers.Auth))
	r.Setup()

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

	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func migrateUp(db *persistence.Database, path string, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, path, log)
	if err != nil {
		return err
	}
	// Not closed: the migrate driver would close the shared pool with it.
	return m.Up()
}

// redisPinger adapts a redis client to the readiness check.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
