package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Daviipontes/Dev-Web/internal/bootstrap"
	"github.com/Daviipontes/Dev-Web/internal/router"
	"github.com/Daviipontes/Dev-Web/pkg/account"
	"github.com/Daviipontes/Dev-Web/pkg/ai"
	"github.com/Daviipontes/Dev-Web/pkg/cart"
	"github.com/Daviipontes/Dev-Web/pkg/catalog"
	"github.com/Daviipontes/Dev-Web/pkg/checkout"
	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment")
	}

	cfg, err := global.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if cfg.IsProduction() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	startCtx, cancel := global.GetDefaultTimer()
	defer cancel()

	db, err := bootstrap.OpenStore(startCtx, cfg)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := bootstrap.OpenRedis(startCtx, cfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var productCache catalog.Cache
	if cfg.CacheDriver == "redis" {
		productCache = redis.NewProductCache(redisClient, cfg.CacheTTL)
	}
	var cartState cart.State = cart.NewMemoryState()
	if cfg.CartDriver == "redis" {
		cartState = redis.NewCartState(redisClient, cfg.CartTTL)
	}

	catalogService := catalog.NewService(db, productCache)
	cartService := cart.NewService(cartState, catalogService)

	handler := &router.Handler{
		Store:      db,
		Catalog:    catalogService,
		Carts:      cartService,
		Checkout:   checkout.NewService(db, cartService),
		Accounts:   account.NewService(db),
		Reports:    ai.NewClient(cfg.AIEndpoint, cfg.AIKey, cfg.AIDeployment),
		Sessions:   router.NewSessionStore(cfg),
		UploadsDir: cfg.UploadsDir,
	}

	engine := router.InitEngine(cfg)
	router.InitializeRoutes(engine, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server is running", "port", cfg.Port, "store", cfg.StoreDriver, "cart", cfg.CartDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to run server", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("Shutting down server gracefully...")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		return
	}
	slog.Info("Server exited gracefully.")
}
