package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/cache"
	"github.com/iliyamo/food-ordering/internal/config"
	"github.com/iliyamo/food-ordering/internal/database"
	"github.com/iliyamo/food-ordering/internal/hub"
	"github.com/iliyamo/food-ordering/internal/queue"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/router"
	"github.com/iliyamo/food-ordering/internal/rpc"
	queuepub "github.com/iliyamo/food-ordering/internal/service"
	"github.com/iliyamo/food-ordering/internal/workflow"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	if cfg.SeedDemoData {
		if err := database.Seed(ctx, db, cfg.BcryptCost); err != nil {
			cancel()
			log.Fatalf("seed: %v", err)
		}
	}
	cancel()

	// Redis is optional: a nil client disables the menu cache and the
	// rate limiter.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	analytics := repository.NewAnalyticsRepo(db, menu)

	liveHub := hub.New()
	defer liveHub.Close()

	notifier := workflow.MultiNotifier{liveHub, queuepub.AuditNotifier{}}
	wf := workflow.New(orders, menu, notifier, cfg.LenientTransitions)
	if cfg.LenientTransitions {
		log.Println("order status transitions: lenient policy enabled")
	}

	menuCache := cache.NewMenuCache(rdb, config.MenuCacheTTL())
	gw := rpc.NewGateway(cfg, users, tokens, menu, analytics, wf, menuCache)

	// Background consumer writes the order audit log; it reconnects
	// forever on broker failures.
	go func() {
		if err := queue.StartOrderConsumer(queuepub.BrokerURL()); err != nil {
			log.Printf("order-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, gw, liveHub, users, rdb)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
