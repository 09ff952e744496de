package main

import (
	"context"
	"log"
	"time"

	"partsflow/internal/core/cache"
	"partsflow/internal/core/config"
	"partsflow/internal/core/logger"
	"partsflow/internal/core/metrics"
	"partsflow/internal/core/server"
	checkoutadapter "partsflow/internal/features/checkout/adapters"
	checkouthandler "partsflow/internal/features/checkout/handler"
	checkoutservice "partsflow/internal/features/checkout/service"
	lockeradapter "partsflow/internal/features/lockers/adapters"
	lockerhandler "partsflow/internal/features/lockers/handler"
	lockerports "partsflow/internal/features/lockers/ports"
	lockerservice "partsflow/internal/features/lockers/service"
	orderadapter "partsflow/internal/features/orders/adapters"
	orderhandler "partsflow/internal/features/orders/handler"
	orderports "partsflow/internal/features/orders/ports"
	orderservice "partsflow/internal/features/orders/service"

	"go.uber.org/zap"
)

// @title Partsflow Fulfillment API
// @version 1.0
// @description Order fulfillment and shipment tracking for the Partsflow marketplace.
// @contact.name API Support
// @contact.email support@partsflow.lt
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	metrics.Register()

	// Order store on Redis
	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to create Redis adapter", zap.Error(err))
	}
	defer redisAdapter.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisAdapter.Ping(pingCtx); err != nil {
		l.Fatal("Redis health check failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	orderStore := orderadapter.NewRedisOrderStore(redisAdapter)

	// Tracking-event publisher: RabbitMQ when configured, otherwise no-op.
	var publisher orderports.EventPublisher = orderadapter.NoopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := orderadapter.NewAMQPPublisher(cfg.AMQP.URL)
		if err != nil {
			l.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		l.Info("RabbitMQ connection verified")
	}

	// External collaborators
	labelGenerator := orderadapter.NewShipWiseAdapter(cfg.ShipWise)
	paymentGateway := checkoutadapter.NewPaymentGatewayAdapter(cfg.Payment)

	// Locker directory: remote API when configured, otherwise built-in catalog.
	var directory lockerports.Directory = lockeradapter.NewStaticCatalog()
	if cfg.Lockers.URL != "" {
		directory = lockeradapter.NewRemoteDirectory(cfg.Lockers.URL)
	}

	// Services & handlers
	shipmentSvc := orderservice.NewShipmentService(orderStore, labelGenerator, publisher)
	orderHdl := orderhandler.NewOrderHandler(shipmentSvc)

	checkoutSvc := checkoutservice.NewCheckoutService(paymentGateway, orderStore, publisher)
	checkoutHdl := checkouthandler.NewCheckoutHandler(checkoutSvc)

	lockerSvc := lockerservice.NewLockerService(directory)
	lockerHdl := lockerhandler.NewLockerHandler(lockerSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/checkout", checkoutHdl.CompleteCheckout)
	srv.App.Get("/lockers", lockerHdl.Search)
	srv.App.Get("/orders", orderHdl.ListOrders)
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Get("/orders/:id/tracking", orderHdl.GetTrackingHistory)
	srv.App.Post("/orders/:id/register", orderHdl.RegisterShipment)
	srv.App.Post("/orders/:id/ship", orderHdl.MarkShipped)
	srv.App.Post("/orders/:id/pickup-ready", orderHdl.MarkReadyForPickup)
	srv.App.Post("/orders/:id/delivered", orderHdl.MarkDelivered)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
