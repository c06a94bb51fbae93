package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chichienterprises/safarbook/internal/config"
	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/chichienterprises/safarbook/internal/handler"
	"github.com/chichienterprises/safarbook/internal/infrastructure/mailrelay"
	"github.com/chichienterprises/safarbook/internal/middleware"
	"github.com/chichienterprises/safarbook/internal/repository"
	"github.com/chichienterprises/safarbook/internal/service"
	"github.com/chichienterprises/safarbook/internal/telemetry"
)

// AppDependencies holds the dependencies required to start the application.
// Files and Mailer are optional; when nil they are built from config, which
// lets tests inject fakes.
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	AuthClient  service.FirebaseAuthClient
	Files       domain.FileRepository
	Mailer      domain.Mailer
}

// NewApp creates and configures the Fiber application with the given
// dependencies. The returned catalog service is what main subscribes to
// store change streams with.
func NewApp(deps AppDependencies) (*fiber.App, *service.CatalogService) {
	// Initialize repositories
	pkgRepo := repository.NewMongoPackageRepository(deps.MongoDB)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	inquiryRepo := repository.NewMongoInquiryRepository(deps.MongoDB)

	files := deps.Files
	if files == nil {
		s3Repo, err := repository.NewS3ImageRepository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 repository: %v", err)
		} else {
			files = s3Repo
		}
	}

	mailer := deps.Mailer
	if mailer == nil && deps.Config.Mailer.ServiceID != "" {
		mailer = mailrelay.NewClient(mailrelay.Config{
			BaseURL:    deps.Config.Mailer.BaseURL,
			ServiceID:  deps.Config.Mailer.ServiceID,
			TemplateID: deps.Config.Mailer.TemplateID,
			PublicKey:  deps.Config.Mailer.PublicKey,
			PrivateKey: deps.Config.Mailer.PrivateKey,
			ToEmail:    deps.Config.Mailer.ToEmail,
		})
	}

	// Initialize services
	catalogService := service.NewCatalogService(
		pkgRepo,
		cacheRepo,
		deps.Config.Catalog.FreshnessWindow,
		deps.Config.Catalog.FetchTimeout,
	)
	editorService := service.NewEditorService(pkgRepo, files, catalogService)
	authService := service.NewAuthService(
		deps.AuthClient,
		deps.Config.JWT.Secret,
		deps.Config.JWT.TokenExpiry,
		deps.Config.JWT.AdminEmails,
	)
	inquiryService := service.NewInquiryService(inquiryRepo, mailer)

	// Initialize handlers
	catalogHandler := handler.NewCatalogHandler(catalogService)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(editorService, catalogService, inquiryService)
	inquiryHandler := handler.NewInquiryHandler(inquiryService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Safarbook Catalog API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "safarbook-catalog",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Public catalog
	packages := v1.Group("/packages")
	packages.Get("/:type", catalogHandler.List)
	packages.Get("/:type/:id", catalogHandler.Get)

	// Public contact form
	v1.Post("/inquiries", inquiryHandler.Submit)

	// ===========================================
	// ADMIN API - /v1/admin/* (requires admin session)
	// ===========================================
	admin := v1.Group("/admin")
	admin.Use(middleware.VerifySafarToken(deps.Config.JWT.Secret))
	admin.Use(middleware.RequireAdmin())
	admin.Use(middleware.IdempotencyMiddleware(deps.RedisClient, 10*time.Minute))

	adminPackages := admin.Group("/packages")
	adminPackages.Get("/:type/fields", adminHandler.Fields)
	adminPackages.Post("/:type", adminHandler.Create)
	adminPackages.Put("/:type/:id", adminHandler.Update)
	adminPackages.Delete("/:type/:id", adminHandler.Delete)

	admin.Post("/catalog/:type/refresh", adminHandler.Refresh)
	admin.Get("/inquiries", adminHandler.ListInquiries)

	return app, catalogService
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
