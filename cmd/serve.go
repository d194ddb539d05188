package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nilepay-solutions/ms-go-manual-payments/app/controller"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/idempotency"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/phone"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/provider"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/repository"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/service"
	"github.com/nilepay-solutions/ms-go-manual-payments/app/types"
	"github.com/nilepay-solutions/ms-go-manual-payments/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the manual payments service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, sessionService, providerRegistry, cleanup := mustCreateSessionService()
	defer cleanup()

	rule := phoneRuleFromConfig(cfg)
	storefrontController := controller.NewStorefrontController(
		sessionService,
		providerRegistry,
		cfg.Provider.ProviderID,
		rule,
		cfg.Provider.Currency,
	)
	adminController := controller.NewAdminController(sessionService, rule)
	webhookController := controller.NewWebhookController(sessionService)

	e := setupHTTPServer(storefrontController, adminController, webhookController, cfg.Provider.ProviderID)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	storefrontController *controller.StorefrontController,
	adminController *controller.AdminController,
	webhookController *controller.WebhookController,
	providerID string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(ensureRequestID())

	e.GET("/health", storefrontController.Health)

	store := e.Group("/store/payments/" + providerID)
	store.GET("", storefrontController.GetProviderMetadata)
	store.POST("", storefrontController.InitiateSession)
	store.GET("/sessions/:id", storefrontController.GetSession)
	store.GET("/sessions/:id/status", storefrontController.GetSessionStatus)
	store.POST("/sessions/:id", storefrontController.UpdateSession)
	store.DELETE("/sessions/:id", storefrontController.DeleteSession)

	admin := e.Group("/admin/payments", controller.RequireActor)
	admin.GET("", adminController.ListSessions)
	admin.GET("/:id", adminController.GetSession)
	admin.POST("/verify", adminController.VerifyPayment)
	admin.PATCH("/status", adminController.UpdateStatus)
	admin.POST("/:id/capture", adminController.CaptureSession)
	admin.POST("/:id/refund", adminController.RefundSession)
	admin.POST("/:id/cancel", adminController.CancelSession)

	webhooks := e.Group("/webhooks/providers")
	webhooks.POST("/:provider", webhookController.HandleProviderWebhook)

	return e
}

func ensureRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "x-request-id header is required"})
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

func phoneRuleFromConfig(cfg *config.Config) phone.Rule {
	return phone.Rule{
		Prefix: cfg.Provider.PhonePrefix,
		Length: cfg.Provider.PhoneLength,
	}
}

func mustCreateSessionService() (*config.Config, *service.SessionService, *provider.Registry, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewSessionEventRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	idemStore := idempotency.NewRedisStore(idempotency.Config{
		Addr:          cfg.Redis.Addr,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		InProgressTTL: cfg.Redis.InProgressTTL,
		CompletedTTL:  cfg.Redis.CompletedTTL,
	})

	rule := phoneRuleFromConfig(cfg)
	vodafoneCash := provider.NewVodafoneCashProvider(provider.VodafoneCashConfig{
		ProviderID:  cfg.Provider.ProviderID,
		DisplayName: cfg.Provider.DisplayName,
		Currency:    cfg.Provider.Currency,
		Rule:        rule,
		DialCode:    cfg.Provider.DialCode,
	})

	providerRegistry := provider.NewRegistry(vodafoneCash)
	sessionService := service.NewSessionService(
		sessionRepo,
		eventRepo,
		verificationRepo,
		providerRegistry,
		idemStore,
		rule,
		cfg.Provider.ProviderID,
		cfg.Payments,
	)

	cleanup := func() {
		if err := idemStore.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close idempotency store")
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, sessionService, providerRegistry, cleanup
}
