package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-supplychain-router/internal/app"
	"go-supplychain-router/internal/config"
	"go-supplychain-router/internal/handler"
	"go-supplychain-router/internal/logger"
	"go-supplychain-router/internal/metrics"
	"go-supplychain-router/internal/middleware"
	"go-supplychain-router/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := logger.NewLogger("api")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. WebSocket hub for lifecycle events
	hub := ws.NewHub(log.With("component", "ws"))
	go hub.Run(ctx)

	// 3. Ledger, store, service, router
	a, err := app.New(ctx, cfg, log, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize router")
	}
	defer a.Close()

	// 4. Setup Fiber
	srv := fiber.New(fiber.Config{
		AppName:   "Supply Chain Router",
		Immutable: true,
	})

	srv.Use(fiberlogger.New())
	srv.Use(recover.New())
	srv.Use(cors.New())

	srv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "sender": a.Ledger.Sender()})
	})
	srv.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	srv.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	srv.Get("/ws", websocket.New(hub.Serve))

	// 5. Product routes, catch-all last
	handler.RegisterRoutes(srv, a.Router, middleware.RequireOperator([]byte(cfg.JWTSecret)))

	// 6. Graceful shutdown
	go func() {
		if err := srv.Listen(":" + cfg.Port); err != nil {
			log.Panic().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
