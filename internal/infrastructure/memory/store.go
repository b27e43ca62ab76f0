// Package memory holds map-backed repositories with the same ownership and
// ordering rules as the Postgres ones. Tests run the services and HTTP stack on it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// Store is one in-memory database shared by every repository it hands out.
type Store struct {
	mu sync.RWMutex

	users       map[string]entity.User
	tags        map[int64]entity.Tag
	ingredients map[int64]entity.Ingredient
	recipes     map[int64]entity.Recipe
	sessions    map[string]entity.Session
	nextID      int64
}

func NewStore() *Store {
	return &Store{
		users:       map[string]entity.User{},
		tags:        map[int64]entity.Tag{},
		ingredients: map[int64]entity.Ingredient{},
		recipes:     map[int64]entity.Recipe{},
		sessions:    map[string]entity.Session{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Tags() *TagRepository               { return &TagRepository{s} }
func (s *Store) Ingredients() *IngredientRepository { return &IngredientRepository{s} }
func (s *Store) Recipes() *RecipeRepository         { return &RecipeRepository{s} }
func (s *Store) Sessions() *SessionRepository       { return &SessionRepository{s} }

// UserCount reports how many users exist.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

type SessionRepository struct{ s *Store }

func (r *SessionRepository) Save(_ context.Context, sess entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[sess.UserID] = sess
	return nil
}

func (r *SessionRepository) Get(_ context.Context, userID string) (*entity.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

// sortNamed orders by name, then id, both descending.
func sortNamed[T any](items []T, key func(T) (string, int64)) {
	sort.Slice(items, func(i, j int) bool {
		ni, ii := key(items[i])
		nj, ij := key(items[j])
		if ni != nj {
			return ni > nj
		}
		return ii > ij
	})
}

// assigned reports whether any recipe links id through pick.
func (s *Store) assigned(id int64, pick func(entity.Recipe) []int64) bool {
	for _, rec := range s.recipes {
		for _, linked := range pick(rec) {
			if linked == id {
				return true
			}
		}
	}
	return false
}

func recipeTagIDs(r entity.Recipe) []int64        { return r.TagIDs }
func recipeIngredientIDs(r entity.Recipe) []int64 { return r.IngredientIDs }

type TagRepository struct{ s *Store }

func (r *TagRepository) ListByOwner(_ context.Context, ownerID string, assignedOnly bool) ([]entity.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Tag{}
	for _, t := range r.s.tags {
		if t.UserID != ownerID || (assignedOnly && !r.s.assigned(t.ID, recipeTagIDs)) {
			continue
		}
		out = append(out, t)
	}
	sortNamed(out, func(t entity.Tag) (string, int64) { return t.Name, t.ID })
	return out, nil
}

func (r *TagRepository) Create(_ context.Context, t *entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	r.s.tags[t.ID] = *t
	return nil
}

func (r *TagRepository) FindByIDs(_ context.Context, ids []int64) ([]entity.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.findTags(ids), nil
}

func (s *Store) findTags(ids []int64) []entity.Tag {
	out := []entity.Tag{}
	for _, id := range ids {
		if t, ok := s.tags[id]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type IngredientRepository struct{ s *Store }

func (r *IngredientRepository) ListByOwner(_ context.Context, ownerID string, assignedOnly bool) ([]entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Ingredient{}
	for _, in := range r.s.ingredients {
		if in.UserID != ownerID || (assignedOnly && !r.s.assigned(in.ID, recipeIngredientIDs)) {
			continue
		}
		out = append(out, in)
	}
	sortNamed(out, func(in entity.Ingredient) (string, int64) { return in.Name, in.ID })
	return out, nil
}

func (r *IngredientRepository) Create(_ context.Context, in *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in.ID = r.s.id()
	r.s.ingredients[in.ID] = *in
	return nil
}

func (r *IngredientRepository) FindByIDs(_ context.Context, ids []int64) ([]entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.findIngredients(ids), nil
}

func (s *Store) findIngredients(ids []int64) []entity.Ingredient {
	out := []entity.Ingredient{}
	for _, id := range ids {
		if in, ok := s.ingredients[id]; ok {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type RecipeRepository struct{ s *Store }

func containsAny(have, want []int64) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// clone detaches the stored recipe from the slices the caller gets back.
func clone(r entity.Recipe) entity.Recipe {
	r.TagIDs = append([]int64{}, r.TagIDs...)
	r.IngredientIDs = append([]int64{}, r.IngredientIDs...)
	r.Tags, r.Ingredients = nil, nil
	return r
}

func (r *RecipeRepository) ListByOwner(_ context.Context, ownerID string, f entity.RecipeFilter) ([]entity.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Recipe{}
	for _, rec := range r.s.recipes {
		if rec.UserID != ownerID {
			continue
		}
		if len(f.IDs) > 0 && !containsAny([]int64{rec.ID}, f.IDs) {
			continue
		}
		if len(f.TagIDs) > 0 && !containsAny(rec.TagIDs, f.TagIDs) {
			continue
		}
		if len(f.IngredientIDs) > 0 && !containsAny(rec.IngredientIDs, f.IngredientIDs) {
			continue
		}
		out = append(out, clone(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *RecipeRepository) GetByOwner(_ context.Context, ownerID string, id int64, expand bool) (*entity.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.recipes[id]
	if !ok || rec.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	out := clone(rec)
	if expand {
		out.Tags = r.s.findTags(out.TagIDs)
		out.Ingredients = r.s.findIngredients(out.IngredientIDs)
	}
	return &out, nil
}

func (r *RecipeRepository) Create(_ context.Context, rec *entity.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	rec.ID = r.s.id()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.s.recipes[rec.ID] = clone(*rec)
	return nil
}

func (r *RecipeRepository) Update(_ context.Context, rec *entity.Recipe, replaceTags, replaceIngredients bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.recipes[rec.ID]
	if !ok || stored.UserID != rec.UserID {
		return repository.ErrNotFound
	}
	next := clone(*rec)
	next.Image = stored.Image
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now()
	if !replaceTags {
		next.TagIDs = stored.TagIDs
	}
	if !replaceIngredients {
		next.IngredientIDs = stored.IngredientIDs
	}
	r.s.recipes[rec.ID] = next
	rec.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *RecipeRepository) SetImage(_ context.Context, ownerID string, id int64, image string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recipes[id]
	if !ok || rec.UserID != ownerID {
		return "", repository.ErrNotFound
	}
	previous := rec.Image
	rec.Image = image
	rec.UpdatedAt = time.Now()
	r.s.recipes[id] = rec
	return previous, nil
}

var (
	_ repository.UserRepository       = (*UserRepository)(nil)
	_ repository.SessionRepository    = (*SessionRepository)(nil)
	_ repository.TagRepository        = (*TagRepository)(nil)
	_ repository.IngredientRepository = (*IngredientRepository)(nil)
	_ repository.RecipeRepository     = (*RecipeRepository)(nil)
)
