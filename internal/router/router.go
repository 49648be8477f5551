// Package router defines how HTTP routes are registered for the API.
// The whole application surface is three routes: a health check, the
// JSON-RPC endpoint and the WebSocket upgrade.
package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/food-ordering/internal/config"
	"github.com/iliyamo/food-ordering/internal/hub"
	"github.com/iliyamo/food-ordering/internal/middleware"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/rpc"
)

// Register wires all routes on the provided Echo instance. The rate
// limiter guards only /rpc; the health check and the WebSocket
// upgrade stay outside it.
func Register(e *echo.Echo, cfg config.Config, gw *rpc.Gateway, h *hub.Hub, users *repository.UserRepo, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	e.POST("/rpc", gw.Handle, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/ws", h.Handler(cfg.JWTSecret, users))
}
