package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/handlers"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/middleware"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

var version = "dev"

type serviceContainer struct {
	encryption   *services.EncryptionService
	jwt          *services.JWTService
	tenants      *services.TenantService
	integrations *services.IntegrationService
	provisioning *services.ProvisioningService
	sync         *services.SyncService
	content      *services.ContentService
}

type handlerContainer struct {
	health      *handlers.HealthHandler
	auth        *handlers.AuthHandler
	webhook     *handlers.WebhookHandler
	account     *handlers.AccountHandler
	sync        *handlers.SyncHandler
	integration *handlers.IntegrationHandler
	content     *handlers.ContentHandler
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.InitLogger(utils.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	gormDB, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", utils.LogFields{"error": err.Error()})
	}
	db := database.NewGormAdapter(gormDB)

	if cfg.App.Env == "development" {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("failed to migrate database", utils.LogFields{"error": err.Error()})
		}
	}

	var redis database.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err := database.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.MaxRetries, cfg.Redis.PoolSize)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", utils.LogFields{"error": err.Error()})
		} else {
			redis = database.NewRedisAdapter(redisClient)
		}
	}

	svcs := buildServices(cfg, db, logger)
	hdls := buildHandlers(cfg, db, redis, svcs, logger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, svcs, hdls, logger)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("server starting", utils.LogFields{
			"port":    cfg.App.Port,
			"env":     cfg.App.Env,
			"version": version,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", utils.LogFields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", utils.LogFields{"error": err.Error()})
	}
	logger.Info("server stopped")
}

func buildServices(cfg *config.Config, db database.Database, logger utils.Logger) *serviceContainer {
	encryption := services.NewEncryptionService(cfg.Security.EncryptionKey)
	tenants := services.NewTenantService(db, logger)
	integrations := services.NewIntegrationService(db, encryption, logger)
	identity := services.NewIdentityClient(&cfg.Identity, logger)
	ghl := services.NewGHLClient(&cfg.GHL, logger)

	return &serviceContainer{
		encryption:   encryption,
		jwt:          services.NewJWTService(cfg.Security.JWTSecret, cfg.Security.JWTExpiry),
		tenants:      tenants,
		integrations: integrations,
		provisioning: services.NewProvisioningService(db, identity, tenants, logger),
		sync:         services.NewSyncService(db, ghl, integrations, logger),
		content:      services.NewContentService(&cfg.OpenAI, logger),
	}
}

func buildHandlers(cfg *config.Config, db database.Database, redis database.RedisClient, svcs *serviceContainer, logger utils.Logger) *handlerContainer {
	return &handlerContainer{
		health:      handlers.NewHealthHandler(db, version),
		auth:        handlers.NewAuthHandler(svcs.tenants, svcs.encryption, svcs.jwt, logger),
		webhook:     handlers.NewWebhookHandler(db, redis, svcs.provisioning, cfg.Stripe.WebhookSecret, logger),
		account:     handlers.NewAccountHandler(svcs.provisioning, svcs.tenants, logger),
		sync:        handlers.NewSyncHandler(svcs.sync, logger),
		integration: handlers.NewIntegrationHandler(svcs.integrations, redis, &cfg.GHL, logger),
		content:     handlers.NewContentHandler(svcs.content, logger),
	}
}

func setupRouter(cfg *config.Config, svcs *serviceContainer, hdls *handlerContainer, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(&cfg.CORS))
	router.Use(middleware.RateLimit(&cfg.RateLimit))

	router.GET("/health", hdls.health.Health)
	router.GET("/ready", hdls.health.Ready)

	auth := middleware.NewAuthMiddleware(svcs.jwt)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/webhooks/payment-succeeded", hdls.webhook.HandlePaymentSucceeded)
		v1.POST("/auth/login", hdls.auth.Login)
		v1.GET("/integrations/ghl/oauth/callback", hdls.integration.OAuthCallback)

		authed := v1.Group("")
		authed.Use(auth.RequireAuth())
		{
			authed.GET("/auth/me", hdls.auth.Me)

			authed.POST("/sync/contacts/import", hdls.sync.ImportContacts)
			authed.POST("/sync/pending", hdls.sync.SyncPending)
			authed.POST("/clients/:id/sync", hdls.sync.SyncClient)
			authed.POST("/clients/:id/activities", hdls.sync.LogActivity)
			authed.POST("/clients/:id/appointments", hdls.sync.CreateAppointment)
			authed.POST("/activities/:id/sync", hdls.sync.SyncActivity)
			authed.POST("/appointments/:id/sync", hdls.sync.SyncAppointment)

			authed.GET("/integrations/ghl", hdls.integration.Status)
			authed.POST("/content/generate", hdls.content.Generate)
			authed.GET("/content/kinds", hdls.content.Kinds)

			admin := authed.Group("")
			admin.Use(auth.RequireRole("Owner", "Admin"))
			{
				admin.POST("/accounts/team-member", hdls.account.CreateTeamMember)
				admin.POST("/accounts/standalone", hdls.account.CreateStandaloneAccount)
				admin.POST("/accounts/delete", hdls.account.DeleteUser)

				admin.GET("/users", hdls.account.ListUsers)
				admin.PUT("/users/:id/role", hdls.account.UpdateUserRole)

				admin.PUT("/company/plan", hdls.account.ChangePlan)
				admin.PUT("/company/status", hdls.account.SetAccountStatus)
				admin.POST("/company/cancel", hdls.account.RequestCancellation)

				admin.PUT("/integrations/ghl", hdls.integration.Connect)
				admin.DELETE("/integrations/ghl", hdls.integration.Disconnect)
				admin.POST("/integrations/ghl/oauth/connect", hdls.integration.OAuthConnect)
			}
		}
	}

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
