package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
)

// DebugModule exposes the health probe and, when enabled, Prometheus metrics.
type DebugModule struct {
	Health  *handlers.HealthHandler
	Metrics bool
	Redis   *redis.Client
}

func NewDebugModule(h *handlers.HealthHandler, metrics bool, rdb *redis.Client) *DebugModule {
	return &DebugModule{Health: h, Metrics: metrics, Redis: rdb}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.Health.Health)
	if m.Metrics {
		// scrapers on the private network are not throttled
		rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
		rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
	}
}
