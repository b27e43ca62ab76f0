package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is owned by one user and links to tags and ingredients.
//
// TagIDs/IngredientIDs are always populated by the repository; Tags and
// Ingredients are only filled when the expanded form was requested.
type Recipe struct {
	ID            int64
	UserID        string
	Title         string
	TimeMinutes   int
	Price         decimal.Decimal
	Link          string
	Image         string
	TagIDs        []int64
	IngredientIDs []int64
	Tags          []Tag
	Ingredients   []Ingredient
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeFilter narrows an owner-scoped recipe listing.
// Empty slices mean "no constraint".
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
	IDs           []int64
}
