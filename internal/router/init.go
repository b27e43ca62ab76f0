package router

import (
	"github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/container"
	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/internal/router/modules"
)

// InitModules builds services and handlers from c and registers their modules on r.
// It should be called once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	auth := middleware.Auth(c.Sessions, c.JWT)

	userSvc := application.NewUserService(c.Users, c.Sessions, c.JWT, c.Publisher, c.Logger)
	catalogSvc := application.NewCatalogService(c.Tags, c.Ingredients, c.Logger)
	recipeSvc := application.NewRecipeService(c.Recipes, c.Tags, c.Ingredients, c.Files, c.Search, c.Logger)

	var maxUpload int64
	if c.Config != nil {
		maxUpload = c.Config.MaxUploadBytes
	}

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, c.Logger), auth, c.Redis))
	r.Add(modules.NewCatalogModule(handlers.NewCatalogHandler(catalogSvc, c.Logger), auth, c.Redis))
	r.Add(modules.NewRecipeModule(handlers.NewRecipeHandler(recipeSvc, c.Logger, maxUpload), auth, c.Redis))

	var db handlers.Pinger
	if c.PGPool != nil {
		db = c.PGPool
	}
	metrics := c.Config != nil && c.Config.MetricsEnabled
	r.Add(modules.NewDebugModule(handlers.NewHealthHandler(db, c.Logger), metrics, c.Redis))
}
