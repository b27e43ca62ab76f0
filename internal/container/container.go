package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/config"
	"github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/cache"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/filestore"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

// Container holds the components built once at startup and handed to the router.
// Optional collaborators (Redis, Sessions, Publisher, Search) are nil when disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	Users       repository.UserRepository
	Tags        repository.TagRepository
	Ingredients repository.IngredientRepository
	Recipes     repository.RecipeRepository
	Sessions    repository.SessionRepository

	Files     filestore.Store
	Publisher application.Publisher
	Search    application.RecipeSearcher
}

// New wires the Postgres repositories on pool and, when rdb is set, the Redis session store.
// Files, Publisher and Search are attached by the caller.
func New(cfg *config.Config, logger *logrus.Logger, pool *pgxpool.Pool, rdb *redis.Client) *Container {
	c := &Container{
		Config:      cfg,
		Logger:      logger,
		PGPool:      pool,
		Redis:       rdb,
		JWT:         helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL),
		Users:       postgres.NewUserRepository(pool),
		Tags:        postgres.NewTagRepository(pool),
		Ingredients: postgres.NewIngredientRepository(pool),
		Recipes:     postgres.NewRecipeRepository(pool),
	}
	if rdb != nil {
		c.Sessions = cache.NewSessionStore(rdb, cfg.AccessTTL)
	}
	return c
}
