package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"

	"roamly/config"
	"roamly/cron"
	"roamly/database"
	availabilityRepo "roamly/database/repository/availability"
	bookingRepo "roamly/database/repository/booking"
	catalogRepo "roamly/database/repository/catalog"
	"roamly/handlers"
	"roamly/routes"
	"roamly/services/availability"
	bookingsvc "roamly/services/booking"
	"roamly/services/checkout"
	"roamly/services/events"
	"roamly/services/fraud"
	"roamly/services/notification"
	"roamly/services/payment"
	"roamly/services/pricing"
	"roamly/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCatalogCache()
	stripe.Key = config.AppConfig.StripeKey

	// Repositories.
	slotRepo := availabilityRepo.NewMongoSlotRepo()
	bkRepo := bookingRepo.NewMongoBookingRepo()
	svcRepo := catalogRepo.NewCachedServiceRepo(
		catalogRepo.NewMongoServiceRepo(),
		utils.GetCatalogCacheClient(),
		config.AppConfig.CatalogCacheTTL,
	)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer idxCancel()
	if err := slotRepo.EnsureIndexes(idxCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure slot indexes: %v", err)
	}
	if err := bkRepo.EnsureIndexes(idxCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// Services.
	guard := availability.NewDefaultGuard(slotRepo, svcRepo, logger,
		config.AppConfig.ReserveMaxRetries, config.AppConfig.ReserveBackoff)
	pricer := pricing.NewEngine()

	var gate fraud.Gate = fraud.AlwaysApprove{}
	if config.AppConfig.FraudEndpoint != "" {
		gate = fraud.NewHTTPGate(config.AppConfig.FraudEndpoint, config.AppConfig.FraudTimeout, logger)
	}

	var gateway payment.Gateway
	if config.AppConfig.StripeKey != "" {
		gateway = payment.NewStripeGateway(logger)
	} else {
		logger.Warn("main: no stripe key configured, using simulated payment gateway")
		gateway = payment.NewSimulatedGateway(logger)
	}

	publisher := events.NewChannelPublisher(logger)
	notifier := notification.NewDispatcher(logger, &notification.LogSender{Logger: logger})
	policy := bookingsvc.NewCancellationPolicy(config.AppConfig.RefundSchedule)

	ledger := bookingsvc.NewDefaultLedger(bkRepo, guard, policy, publisher, notifier, logger,
		config.AppConfig.PaymentMaxAttempts)

	coordinator := checkout.NewCoordinator(
		checkout.NewAggregator(svcRepo),
		svcRepo, guard, pricer, gate, ledger, gateway, logger,
		config.AppConfig.PaymentTimeout,
	)

	// Background completion sweep.
	cron.InitBookingWorker(ledger, bkRepo, logger)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCatalogCacheClient()},
		database.MongoClient,
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(coordinator, ledger, bkRepo, logger)
	routes.RegisterRoutes(router, handlerBundle)

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
