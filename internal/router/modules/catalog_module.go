package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
)

type CatalogModule struct {
	Handler *handlers.CatalogHandler
	Auth    gin.HandlerFunc
	Redis   *redis.Client
}

func NewCatalogModule(h *handlers.CatalogHandler, auth gin.HandlerFunc, rdb *redis.Client) *CatalogModule {
	return &CatalogModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Auth, userLimiter(m.Redis))
	{
		auth.GET("/tags", m.Handler.ListTags)
		auth.POST("/tags", m.Handler.CreateTag)
		auth.GET("/ingredients", m.Handler.ListIngredients)
		auth.POST("/ingredients", m.Handler.CreateIngredient)
	}
}
