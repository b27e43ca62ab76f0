package entity

// Tag labels recipes. Owned by exactly one user.
type Tag struct {
	ID     int64
	UserID string
	Name   string
}

// Ingredient is something a recipe is made of. Owned by exactly one user.
type Ingredient struct {
	ID     int64
	UserID string
	Name   string
}
