package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/MoneyUnify/moneyunify-go/internal/adapter/handler"
	"github.com/MoneyUnify/moneyunify-go/internal/adapter/middleware"
	"github.com/MoneyUnify/moneyunify-go/internal/adapter/storage"
	"github.com/MoneyUnify/moneyunify-go/internal/core/config"
	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/moneyunify"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
	"github.com/MoneyUnify/moneyunify-go/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.AuthID == "" {
		slog.Error("MONEYUNIFY_AUTH_ID is not set")
		os.Exit(1)
	}
	currency := domain.Currency(cfg.Currency)
	if !currency.Supported() {
		slog.Error("Unsupported settlement currency", "currency", cfg.Currency)
		os.Exit(1)
	}

	// 3. Connect to Database
	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	// Closed manually on shutdown, not deferred.

	// 4. Repos
	paymentRepo := storage.NewPaymentRepository(dbPool)
	orderRepo := storage.NewOrderRepository(dbPool)
	keyRepo := storage.NewKeyRepository(dbPool)

	var jobRepo *storage.WebhookJobRepository
	var webhooks payments.WebhookQueue
	if cfg.WebhookURL != "" {
		jobRepo = storage.NewWebhookJobRepository(dbPool, cfg.WebhookURL)
		webhooks = jobRepo
	} else {
		slog.Warn("WEBHOOK_URL not set, merchant notifications disabled")
	}

	// 5. Payment service
	client := moneyunify.NewClient(cfg.AuthID, cfg.Sandbox)
	svc := &payments.Service{
		Store:     paymentRepo,
		Orders:    orderRepo,
		Provider:  client,
		Webhooks:  webhooks,
		Currency:  currency,
		BatchSize: cfg.SweepBatch,
	}

	checkoutHandler := &handler.CheckoutHandler{Service: svc}
	pollHandler := &handler.PollHandler{Service: svc}
	ordersHandler := &handler.OrdersHandler{Orders: orderRepo, Store: paymentRepo}
	keysHandler := &handler.KeysHandler{Repo: keyRepo}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/v1")

	// Public
	api.Post("/keys", keysHandler.GenerateKey)
	// The buyer's browser polls this from the thank-you page.
	api.Get("/payments/:order_id", pollHandler.Status)

	// Protected (storefront backend)
	private := api.Use(middleware.Protected(dbPool))
	private.Post("/orders", ordersHandler.CreateOrder)
	private.Get("/orders/:id", ordersHandler.GetOrder)
	private.Post("/payments", middleware.Idempotency(dbPool), checkoutHandler.Initiate)

	// 8. Workers: the sweep keeps pending payments converging even with
	// nobody polling; the webhook worker drains merchant notifications.
	worker.StartSweeper(svc, cfg.SweepInterval)
	if jobRepo != nil {
		worker.StartWebhookWorker(jobRepo, cfg.WebhookSecret)
	}

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "env", cfg.Env, "port", cfg.Port, "sandbox", cfg.Sandbox, "currency", currency)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down server...")

	dbPool.Close()
	slog.Info("Database connection closed")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	slog.Info("Server exited")
}
