package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybridge/config"
	"staybridge/cron"
	"staybridge/database"
	flowRepoPkg "staybridge/database/repository/flow"
	stepRepoPkg "staybridge/database/repository/step"
	"staybridge/handlers"
	"staybridge/routes"
	"staybridge/services/currency"
	flowService "staybridge/services/flow"
	"staybridge/services/notification"
	"staybridge/services/payment"
	"staybridge/supplier"
	"staybridge/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	flowRepo := flowRepoPkg.NewMongoFlowRepo()
	stepRepo := stepRepoPkg.NewMongoStepRepo()

	// supplier gateway.
	supplierClient := supplier.NewClient(supplier.Config{
		Endpoint:    config.AppConfig.SupplierEndpoint,
		Username:    config.AppConfig.SupplierUsername,
		Password:    config.AppConfig.SupplierPassword,
		CompanyCode: config.AppConfig.SupplierCompanyCode,
		Timeout:     config.AppConfig.SupplierTimeout,
		MaxRetries:  config.AppConfig.SupplierMaxRetries,
		RatePerSec:  config.AppConfig.SupplierRatePerSec,
		Compress:    config.AppConfig.SupplierCompress,
	}, logger)

	// services.
	currencySvc := currency.NewDefaultCurrencyService(
		config.AppConfig.BaseCurrency,
		config.AppConfig.FXEndpoint,
		utils.GetCacheClient(),
		config.AppConfig.FXCacheTTL,
		logger,
	)

	notifSvc, err := notification.NewFCMNotificationService(
		context.Background(),
		config.AppConfig.FirebaseCredentials,
		&notification.RedisDeviceTokenSource{Client: utils.GetCacheClient()},
		logger,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}
	cron.InitEventWorker(notifSvc)

	handlers.FlowService = &flowService.DefaultFlowService{
		Flows:    flowRepo,
		Steps:    stepRepo,
		Supplier: supplierClient,
		Tokens:   utils.NewOfferTokenCodec(config.AppConfig.AppSecret, config.AppConfig.OfferTokenTTL),
		Currency: currencySvc,
		Payments: payment.NewStripePaymentService(logger),
		Queue:    cron.NewTaskClient(),
		Logger:   logger,
		Retry: flowService.RetryPolicy{
			BaseDelay: config.AppConfig.RetryBaseDelay,
			MaxDelay:  config.AppConfig.RetryMaxDelay,
			Attempts:  config.AppConfig.RetryAttempts,
		},
		BaseCurrency: config.AppConfig.BaseCurrency,
	}

	routes.RegisterRoutes(router)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
