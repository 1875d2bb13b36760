package main

import (
	"context"
	"os/signal"
	"syscall"

	"activity-ticketing/config"
	"activity-ticketing/internal/cache"
	"activity-ticketing/internal/database"
	"activity-ticketing/internal/handler"
	"activity-ticketing/internal/monitoring"
	"activity-ticketing/internal/queue"
	"activity-ticketing/internal/repository"
	"activity-ticketing/internal/service"
	"activity-ticketing/internal/worker"
	"activity-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	log := logger.WithComponent("main")

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// repositories
	txm := repository.NewTxManager(pool)
	activityRepo := repository.NewActivityRepository(pool)
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	inventoryGate := cache.NewRedisInventoryGate(rdb)

	eventQueue, err := queue.NewRedisStreamOrderEventQueue(rdb, "", nil)
	if err != nil {
		log.Fatal("Failed to initialize event queue", zap.Error(err))
	}

	// services
	orderService := service.NewOrderService(
		txm, orderRepo, ticketRepo, ticketTypeRepo, activityRepo, paymentRepo,
		inventoryGate, eventQueue, cfg.Order.PaymentGrace,
	)
	ticketService := service.NewTicketService(ticketRepo, orderRepo)
	activityService := service.NewActivityService(activityRepo, ticketTypeRepo, inventoryGate)
	checkoutService := service.NewCheckoutService(
		orderRepo, ticketTypeRepo, cfg.Checkout.GatewayURL, cfg.Checkout.Currency,
	)

	// workers
	if err := worker.NewOrderEventWorker(eventQueue, nil).Start(ctx); err != nil {
		log.Fatal("Failed to start event worker", zap.Error(err))
	}
	worker.NewSweepWorker(orderService, ticketService, activityService, cfg.Order.SweepInterval).Start(ctx)

	router := gin.Default()
	router.Use(monitoring.GinMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewOrderHandler(orderService, checkoutService).RegisterRoutes(router)
	handler.NewTicketHandler(ticketService).RegisterRoutes(router)
	handler.NewActivityHandler(activityService).RegisterRoutes(router)
	handler.NewPaymentHandler(orderService).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
