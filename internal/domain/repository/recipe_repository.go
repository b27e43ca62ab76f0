package repository

import (
	"context"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

// RecipeRepository persists recipes together with their tag and ingredient links.
// Every method that takes an ownerID returns ErrNotFound for rows owned by someone else.
type RecipeRepository interface {
	ListByOwner(ctx context.Context, ownerID string, f entity.RecipeFilter) ([]entity.Recipe, error)
	GetByOwner(ctx context.Context, ownerID string, id int64, expand bool) (*entity.Recipe, error)
	// Create inserts the recipe and its links atomically.
	Create(ctx context.Context, r *entity.Recipe) error
	// Update rewrites scalar fields; links are replaced only when replaceTags/replaceIngredients is set.
	Update(ctx context.Context, r *entity.Recipe, replaceTags, replaceIngredients bool) error
	SetImage(ctx context.Context, ownerID string, id int64, image string) (previous string, err error)
}
