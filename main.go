package main

import (
	"context"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nazar-zhcet26/Tenant-management/config"
	"github.com/nazar-zhcet26/Tenant-management/controllers"
	"github.com/nazar-zhcet26/Tenant-management/events"
	"github.com/nazar-zhcet26/Tenant-management/geocode"
	"github.com/nazar-zhcet26/Tenant-management/media"
	"github.com/nazar-zhcet26/Tenant-management/metrics"
	"github.com/nazar-zhcet26/Tenant-management/middlewares"
	"github.com/nazar-zhcet26/Tenant-management/routes"
	"github.com/nazar-zhcet26/Tenant-management/services"
	"github.com/nazar-zhcet26/Tenant-management/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}
	cfg := config.Load()
	config.SetupLogger(cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	var (
		reportRepo storage.ReportRepository = storage.NewMemoryReportRepository()
		tenantRepo storage.TenantRepository = storage.NewMemoryTenantRepository()
	)
	if cfg.MongoURI != "" {
		db, err := config.ConnectDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer config.DisconnectDB(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := storage.EnsureTenantIndex(ctx, db); err != nil {
			log.Warnf("Failed to create tenant index: %v", err)
		}
		if err := storage.EnsureReportIndex(ctx, db); err != nil {
			log.Warnf("Failed to create report index: %v", err)
		}
		cancel()

		reportRepo = storage.NewMongoReportRepository(db)
		tenantRepo = storage.NewMongoTenantRepository(db)
	} else {
		log.Warn("MONGODB_URI not set, reports and tenants are kept in memory")
	}

	var (
		draftStore    storage.DraftStore        = storage.NewMemoryDraftStore()
		submitLimiter middlewares.SubmitLimiter = middlewares.NewMemorySubmitLimiter(cfg.SubmitLimitPerDay, 24*time.Hour)
	)
	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		draftStore = storage.NewRedisDraftStore(redisClient, time.Duration(cfg.DraftTTLHours)*time.Hour)
		submitLimiter = middlewares.NewRedisSubmitLimiter(redisClient, cfg.SubmitLimitQueue, cfg.SubmitLimitPerDay, 24*time.Hour)
	} else {
		log.Warn("REDIS_ADDRESS not set, drafts and rate limits are kept in memory")
	}

	blobs, err := storage.NewDiskBlobStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to create RabbitMQ publisher: %v", err)
		}
		publisher = p
	}
	defer publisher.Close()

	var geocoder geocode.Reverser
	if cfg.GeocoderAPIKey != "" {
		geocoder = geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderAPIKey)
	} else {
		log.Warn("GEOCODER_API_KEY not set, addresses fall back to raw coordinates")
	}

	draftService := services.NewDraftService(draftStore, blobs)
	attachmentService := services.NewAttachmentService(draftService, reportRepo, blobs, media.FileInspector{})
	locationService := services.NewLocationService(draftService, geocoder)
	reportService := services.NewReportService(draftService, reportRepo, publisher)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	sweeper := services.NewBlobSweeper(draftStore, reportRepo, blobs, services.DefaultBlobGrace)
	go sweeper.Run(sweepCtx, time.Duration(cfg.BlobSweepIntervalMinutes)*time.Minute)

	r := gin.Default()
	r.MaxMultipartMemory = int64(cfg.MaxUploadMemoryMB) << 20
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, routes.Controllers{
		Auth:          controllers.NewAuthController(tenantRepo, cfg),
		Drafts:        controllers.NewDraftController(draftService, attachmentService, locationService),
		Reports:       controllers.NewReportController(reportService, attachmentService),
		JWTSecret:     cfg.JWTSecret,
		SubmitLimiter: submitLimiter,
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Infof("Maintenance reporter listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
