package repository

import (
	"context"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

// TagRepository reads and writes tags scoped to one owner.
type TagRepository interface {
	ListByOwner(ctx context.Context, ownerID string, assignedOnly bool) ([]entity.Tag, error)
	Create(ctx context.Context, t *entity.Tag) error
	// FindByIDs returns the tags with the given ids regardless of owner.
	FindByIDs(ctx context.Context, ids []int64) ([]entity.Tag, error)
}

// IngredientRepository reads and writes ingredients scoped to one owner.
type IngredientRepository interface {
	ListByOwner(ctx context.Context, ownerID string, assignedOnly bool) ([]entity.Ingredient, error)
	Create(ctx context.Context, i *entity.Ingredient) error
	// FindByIDs returns the ingredients with the given ids regardless of owner.
	FindByIDs(ctx context.Context, ids []int64) ([]entity.Ingredient, error)
}
