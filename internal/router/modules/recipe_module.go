package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
)

type RecipeModule struct {
	Handler *handlers.RecipeHandler
	Auth    gin.HandlerFunc
	Redis   *redis.Client
}

func NewRecipeModule(h *handlers.RecipeHandler, auth gin.HandlerFunc, rdb *redis.Client) *RecipeModule {
	return &RecipeModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *RecipeModule) Register(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")
	recipes.Use(m.Auth, userLimiter(m.Redis))
	{
		recipes.GET("", m.Handler.List)
		recipes.POST("", m.Handler.Create)
		recipes.GET("/:id", m.Handler.Retrieve)
		recipes.PUT("/:id", m.Handler.Update)
		recipes.PATCH("/:id", m.Handler.PartialUpdate)
		recipes.POST("/:id/upload-image", m.Handler.UploadImage)
	}
}
