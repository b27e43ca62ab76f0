package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

const maxNameLength = 255

// CatalogService manages the owner's tags and ingredients.
type CatalogService struct {
	Tags        repo.TagRepository
	Ingredients repo.IngredientRepository
	Logger      *logrus.Logger
}

func NewCatalogService(tags repo.TagRepository, ingredients repo.IngredientRepository, logger *logrus.Logger) *CatalogService {
	return &CatalogService{Tags: tags, Ingredients: ingredients, Logger: logger}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	verr := NewValidationError()
	switch {
	case name == "":
		verr.Add("name", "this field may not be blank")
	case len([]rune(name)) > maxNameLength:
		verr.Add("name", "ensure this field has no more than 255 characters")
	}
	return name, verr.OrNil()
}

func (s *CatalogService) ListTags(ctx context.Context, ownerID string, assignedOnly bool) ([]entity.Tag, error) {
	return s.Tags.ListByOwner(ctx, ownerID, assignedOnly)
}

// CreateTag stores a tag for ownerID; the owner never comes from client input.
func (s *CatalogService) CreateTag(ctx context.Context, ownerID, name string) (*entity.Tag, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	t := &entity.Tag{UserID: ownerID, Name: name}
	if err := s.Tags.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) ListIngredients(ctx context.Context, ownerID string, assignedOnly bool) ([]entity.Ingredient, error) {
	return s.Ingredients.ListByOwner(ctx, ownerID, assignedOnly)
}

func (s *CatalogService) CreateIngredient(ctx context.Context, ownerID, name string) (*entity.Ingredient, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	in := &entity.Ingredient{UserID: ownerID, Name: name}
	if err := s.Ingredients.Create(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}
