package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/go-recipe-api/internal/domain/repository"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/filestore"
)

// price is NUMERIC(5,2)
const (
	priceMaxDigits = 5
	pricePlaces    = 2
)

var priceLimit = decimal.New(1, priceMaxDigits-pricePlaces)

// RecipeSearcher is the full-text index behind ?q=.
type RecipeSearcher interface {
	IndexRecipe(ctx context.Context, r entity.Recipe) error
	SearchRecipes(ctx context.Context, ownerID, q string, size int) ([]int64, error)
}

type RecipeService struct {
	Recipes     repo.RecipeRepository
	Tags        repo.TagRepository
	Ingredients repo.IngredientRepository
	Files       filestore.Store
	Search      RecipeSearcher // optional
	Logger      *logrus.Logger
}

func NewRecipeService(recipes repo.RecipeRepository, tags repo.TagRepository, ingredients repo.IngredientRepository, files filestore.Store, search RecipeSearcher, logger *logrus.Logger) *RecipeService {
	return &RecipeService{
		Recipes:     recipes,
		Tags:        tags,
		Ingredients: ingredients,
		Files:       files,
		Search:      search,
		Logger:      logger,
	}
}

// RecipeInput is a decoded write request. A nil field was not supplied by the client.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        *[]int64
	IngredientIDs *[]int64
}

// ListRecipesQuery narrows a listing; zero value lists everything the owner has.
type ListRecipesQuery struct {
	TagIDs        []int64
	IngredientIDs []int64
	Search        string
}

func (s *RecipeService) List(ctx context.Context, ownerID string, q ListRecipesQuery) ([]entity.Recipe, error) {
	f := entity.RecipeFilter{TagIDs: q.TagIDs, IngredientIDs: q.IngredientIDs}
	if term := strings.TrimSpace(q.Search); term != "" {
		if s.Search == nil {
			return nil, ErrSearchUnavailable
		}
		ids, err := s.Search.SearchRecipes(ctx, ownerID, term, 100)
		if err != nil {
			return nil, fmt.Errorf("search recipes: %w", err)
		}
		if len(ids) == 0 {
			return []entity.Recipe{}, nil
		}
		f.IDs = ids
	}
	return s.Recipes.ListByOwner(ctx, ownerID, f)
}

// Get returns one recipe in expanded form.
func (s *RecipeService) Get(ctx context.Context, ownerID string, id int64) (*entity.Recipe, error) {
	return s.load(ctx, ownerID, id, true)
}

func (s *RecipeService) load(ctx context.Context, ownerID string, id int64, expand bool) (*entity.Recipe, error) {
	r, err := s.Recipes.GetByOwner(ctx, ownerID, id, expand)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RecipeService) Create(ctx context.Context, ownerID string, in RecipeInput) (*entity.Recipe, error) {
	r := &entity.Recipe{UserID: ownerID, TagIDs: []int64{}, IngredientIDs: []int64{}}
	if err := s.apply(ctx, r, in, false); err != nil {
		return nil, err
	}
	if err := s.Recipes.Create(ctx, r); err != nil {
		return nil, err
	}
	s.index(ctx, *r)
	return r, nil
}

// Update replaces the recipe (partial=false) or patches the supplied fields (partial=true).
// A full update clears tags/ingredients the client left out; a partial one keeps them.
func (s *RecipeService) Update(ctx context.Context, ownerID string, id int64, in RecipeInput, partial bool) (*entity.Recipe, error) {
	r, err := s.load(ctx, ownerID, id, false)
	if err != nil {
		return nil, err
	}
	if !partial {
		empty := ""
		if in.Link == nil {
			in.Link = &empty
		}
		if in.TagIDs == nil {
			in.TagIDs = &[]int64{}
		}
		if in.IngredientIDs == nil {
			in.IngredientIDs = &[]int64{}
		}
	}
	if err := s.apply(ctx, r, in, partial); err != nil {
		return nil, err
	}
	if err := s.Recipes.Update(ctx, r, in.TagIDs != nil, in.IngredientIDs != nil); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.index(ctx, *r)
	return r, nil
}

// apply validates in and copies it onto r. Required fields may only be absent when partial.
func (s *RecipeService) apply(ctx context.Context, r *entity.Recipe, in RecipeInput, partial bool) error {
	verr := NewValidationError()

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			verr.Add("title", "this field may not be blank")
		case len([]rune(title)) > maxNameLength:
			verr.Add("title", "ensure this field has no more than 255 characters")
		default:
			r.Title = title
		}
	} else if !partial {
		verr.Add("title", "this field is required")
	}

	if in.TimeMinutes != nil {
		t := *in.TimeMinutes
		if t < math.MinInt16 || t > math.MaxInt16 {
			verr.Add("time_minutes", fmt.Sprintf("ensure this value is between %d and %d", math.MinInt16, math.MaxInt16))
		} else {
			r.TimeMinutes = t
		}
	} else if !partial {
		verr.Add("time_minutes", "this field is required")
	}

	if in.Price != nil {
		if msg := checkPrice(*in.Price); msg != "" {
			verr.Add("price", msg)
		} else {
			r.Price = in.Price.Round(pricePlaces)
		}
	} else if !partial {
		verr.Add("price", "this field is required")
	}

	if in.Link != nil {
		link := strings.TrimSpace(*in.Link)
		if len([]rune(link)) > maxNameLength {
			verr.Add("link", "ensure this field has no more than 255 characters")
		} else {
			r.Link = link
		}
	}

	if in.TagIDs != nil {
		ids := uniqueIDs(*in.TagIDs)
		found, err := s.Tags.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := make(map[int64]bool, len(found))
		for _, t := range found {
			known[t.ID] = true
		}
		addMissing(verr, "tags", ids, known)
		r.TagIDs = ids
	}

	if in.IngredientIDs != nil {
		ids := uniqueIDs(*in.IngredientIDs)
		found, err := s.Ingredients.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := make(map[int64]bool, len(found))
		for _, i := range found {
			known[i.ID] = true
		}
		addMissing(verr, "ingredients", ids, known)
		r.IngredientIDs = ids
	}

	return verr.OrNil()
}

// checkPrice enforces at most 5 digits with at most 2 after the point.
func checkPrice(p decimal.Decimal) string {
	if p.Exponent() < -pricePlaces {
		return fmt.Sprintf("ensure that there are no more than %d decimal places", pricePlaces)
	}
	if p.Abs().GreaterThanOrEqual(priceLimit) {
		return fmt.Sprintf("ensure that there are no more than %d digits before the decimal point", priceMaxDigits-pricePlaces)
	}
	return ""
}

func addMissing(verr *ValidationError, field string, ids []int64, known map[int64]bool) {
	for _, id := range ids {
		if !known[id] {
			verr.Add(field, fmt.Sprintf("invalid pk %q - object does not exist", fmt.Sprint(id)))
		}
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UploadImage validates data as an image, stores it and points the recipe at it.
// The previously attached file is removed best-effort.
func (s *RecipeService) UploadImage(ctx context.Context, ownerID string, id int64, filename string, data []byte) (*entity.Recipe, error) {
	if _, err := s.load(ctx, ownerID, id, false); err != nil {
		return nil, err
	}
	img, err := filestore.DetectImage(data)
	if err != nil {
		verr := NewValidationError()
		verr.Add("image", "upload a valid image. The file you uploaded was either not an image or a corrupted image")
		return nil, verr
	}

	name := filestore.RecipeImagePath(filename, img.Format)
	locator, err := s.Files.Save(ctx, name, img.ContentType, data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	previous, err := s.Recipes.SetImage(ctx, ownerID, id, locator)
	if err != nil {
		if dErr := s.Files.Delete(ctx, locator); dErr != nil {
			s.Logger.WithError(dErr).WithField("image", locator).Warn("cleanup of orphaned image failed")
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if previous != "" && previous != locator {
		if err := s.Files.Delete(ctx, previous); err != nil {
			s.Logger.WithError(err).WithField("image", previous).Warn("delete replaced image failed")
		}
	}

	r, err := s.load(ctx, ownerID, id, false)
	if err != nil {
		return nil, err
	}
	s.index(ctx, *r)
	return r, nil
}

func (s *RecipeService) index(ctx context.Context, r entity.Recipe) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexRecipe(ctx, r); err != nil {
		s.Logger.WithError(err).WithField("recipe_id", r.ID).Warn("index recipe failed")
	}
}
