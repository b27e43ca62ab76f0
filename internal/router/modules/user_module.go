package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
)

// UserModule wires registration, token issuance and the profile endpoints.
// Public: POST /api/users, POST /api/users/token
// Protected: GET|PUT|PATCH /api/users/me
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	tokenLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users", registerLimiter, m.Handler.Create)
	rg.POST("/users/token", tokenLimiter, m.Handler.Token)

	me := rg.Group("/users/me")
	me.Use(m.Auth, userLimiter(m.Redis))
	{
		me.GET("", m.Handler.Me)
		me.PUT("", m.Handler.UpdateMe)
		me.PATCH("", m.Handler.UpdateMe)
	}
}

// userLimiter is the per-user budget shared by every authenticated route.
func userLimiter(rdb *redis.Client) gin.HandlerFunc {
	return middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil)
}
