package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

// OpKind names the recipe operation being served; it decides the output shape.
type OpKind int

const (
	OpList OpKind = iota
	OpCreate
	OpRetrieve
	OpUpdate
	OpPartialUpdate
	OpUploadImage
)

// Shape is the wire representation of a recipe.
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeExpanded
	ShapeImage
)

// recipeShapeFor picks the representation for op: expanded only for retrieve.
func recipeShapeFor(op OpKind) Shape {
	switch op {
	case OpRetrieve:
		return ShapeExpanded
	case OpUploadImage:
		return ShapeImage
	default:
		return ShapeFlat
	}
}

// NameDTO is the representation of tags and ingredients.
type NameDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RecipeFlatDTO struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Image       *string `json:"image"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

type RecipeExpandedDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	TimeMinutes int       `json:"time_minutes"`
	Price       string    `json:"price"`
	Link        string    `json:"link"`
	Image       *string   `json:"image"`
	Tags        []NameDTO `json:"tags"`
	Ingredients []NameDTO `json:"ingredients"`
}

type RecipeImageDTO struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

func tagDTO(t entity.Tag) NameDTO { return NameDTO{ID: t.ID, Name: t.Name} }

func ingredientDTO(i entity.Ingredient) NameDTO { return NameDTO{ID: i.ID, Name: i.Name} }

func tagDTOs(ts []entity.Tag) []NameDTO {
	out := make([]NameDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, tagDTO(t))
	}
	return out
}

func ingredientDTOs(is []entity.Ingredient) []NameDTO {
	out := make([]NameDTO, 0, len(is))
	for _, i := range is {
		out = append(out, ingredientDTO(i))
	}
	return out
}

func imageRef(image string) *string {
	if image == "" {
		return nil
	}
	return &image
}

func idsOrEmpty(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func recipeFlat(r *entity.Recipe) RecipeFlatDTO {
	return RecipeFlatDTO{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Image:       imageRef(r.Image),
		Tags:        idsOrEmpty(r.TagIDs),
		Ingredients: idsOrEmpty(r.IngredientIDs),
	}
}

func recipeExpanded(r *entity.Recipe) RecipeExpandedDTO {
	return RecipeExpandedDTO{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Image:       imageRef(r.Image),
		Tags:        tagDTOs(r.Tags),
		Ingredients: ingredientDTOs(r.Ingredients),
	}
}

// renderRecipe serializes r in the shape op calls for.
func renderRecipe(op OpKind, r *entity.Recipe) any {
	switch recipeShapeFor(op) {
	case ShapeExpanded:
		return recipeExpanded(r)
	case ShapeImage:
		return RecipeImageDTO{ID: r.ID, Image: imageRef(r.Image)}
	default:
		return recipeFlat(r)
	}
}

// recipeRequest is the flat form as written by clients. Pointers tell "absent" from "zero".
type recipeRequest struct {
	Title       *string         `json:"title"`
	TimeMinutes *int            `json:"time_minutes"`
	Price       json.RawMessage `json:"price"`
	Link        *string         `json:"link"`
	Tags        *[]int64        `json:"tags"`
	Ingredients *[]int64        `json:"ingredients"`
}

var jsonNull = []byte("null")

// toInput maps the wire request onto the service input, reporting undecodable fields.
func (req recipeRequest) toInput() (app.RecipeInput, validation.FieldErrors) {
	errs := validation.FieldErrors{}
	in := app.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	}
	if len(req.Price) > 0 {
		if bytes.Equal(bytes.TrimSpace(req.Price), jsonNull) {
			errs.Add("price", "this field may not be null")
		} else if p, ok := parsePrice(req.Price); ok {
			in.Price = &p
		} else {
			errs.Add("price", "a valid number is required")
		}
	}
	return in, errs
}

// parsePrice accepts 12.5 as well as "12.50"; floats never enter the computation.
func parsePrice(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var unq string
		if err := json.Unmarshal(raw, &unq); err != nil {
			return decimal.Decimal{}, false
		}
		s = strings.TrimSpace(unq)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// parseIDList reads "1,2,3" query values.
func parseIDList(s string) ([]int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func parseBoolFlag(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
