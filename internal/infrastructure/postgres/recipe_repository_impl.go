package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type RecipeRepository struct {
	pool *pgxpool.Pool
}

func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{pool: pool}
}

const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price::text, r.link, r.image, r.created_at, r.updated_at`

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var (
		rec   entity.Recipe
		price string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.TimeMinutes, &price, &rec.Link, &rec.Image,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	rec.Price = d
	rec.TagIDs = []int64{}
	rec.IngredientIDs = []int64{}
	return &rec, nil
}

// ListByOwner returns the owner's recipes newest first, with link ids attached.
func (r *RecipeRepository) ListByOwner(ctx context.Context, ownerID string, f entity.RecipeFilter) ([]entity.Recipe, error) {
	var sb strings.Builder
	args := []any{ownerID}
	sb.WriteString(`SELECT ` + recipeColumns + ` FROM recipes r WHERE r.user_id = $1`)
	if len(f.IDs) > 0 {
		args = append(args, f.IDs)
		sb.WriteString(` AND r.id = ANY($` + strconv.Itoa(len(args)) + `)`)
	}
	if len(f.TagIDs) > 0 {
		args = append(args, f.TagIDs)
		sb.WriteString(` AND r.id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id = ANY($` + strconv.Itoa(len(args)) + `))`)
	}
	if len(f.IngredientIDs) > 0 {
		args = append(args, f.IngredientIDs)
		sb.WriteString(` AND r.id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id = ANY($` + strconv.Itoa(len(args)) + `))`)
	}
	sb.WriteString(` ORDER BY r.id DESC`)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	out := []entity.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, len(out))
	index := make(map[int64]int, len(out))
	for i, rec := range out {
		ids[i] = rec.ID
		index[rec.ID] = i
	}
	tagLinks, err := r.links(ctx, `SELECT recipe_id, tag_id FROM recipe_tags WHERE recipe_id = ANY($1) ORDER BY tag_id`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range tagLinks {
		i := index[l[0]]
		out[i].TagIDs = append(out[i].TagIDs, l[1])
	}
	ingLinks, err := r.links(ctx, `SELECT recipe_id, ingredient_id FROM recipe_ingredients WHERE recipe_id = ANY($1) ORDER BY ingredient_id`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range ingLinks {
		i := index[l[0]]
		out[i].IngredientIDs = append(out[i].IngredientIDs, l[1])
	}
	return out, nil
}

func (r *RecipeRepository) links(ctx context.Context, q string, ids []int64) ([][2]int64, error) {
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][2]int64
	for rows.Next() {
		var l [2]int64
		if err := rows.Scan(&l[0], &l[1]); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetByOwner loads one recipe. With expand set, Tags and Ingredients are filled as well.
func (r *RecipeRepository) GetByOwner(ctx context.Context, ownerID string, id int64, expand bool) (*entity.Recipe, error) {
	rec, err := scanRecipe(r.pool.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1 AND r.user_id = $2`, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	tags, err := r.namedLinks(ctx, `
		SELECT t.id, t.user_id, t.name FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1 ORDER BY t.id`, id)
	if err != nil {
		return nil, err
	}
	ings, err := r.namedLinks(ctx, `
		SELECT i.id, i.user_id, i.name FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1 ORDER BY i.id`, id)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		rec.TagIDs = append(rec.TagIDs, t.ID)
	}
	for _, i := range ings {
		rec.IngredientIDs = append(rec.IngredientIDs, i.ID)
	}
	if expand {
		rec.Tags = toTags(tags)
		rec.Ingredients = toIngredients(ings)
	}
	return rec, nil
}

func (r *RecipeRepository) namedLinks(ctx context.Context, q string, id int64) ([]namedRow, error) {
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []namedRow{}
	for rows.Next() {
		var n namedRow
		if err := rows.Scan(&n.ID, &n.UserID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO recipes (user_id, title, time_minutes, price, link, image)
			VALUES ($1, $2, $3, $4::numeric, $5, $6)
			RETURNING id, created_at, updated_at
		`, rec.UserID, rec.Title, rec.TimeMinutes, rec.Price.StringFixed(2), rec.Link, rec.Image).
			Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, "recipe_tags", "tag_id", rec.ID, rec.TagIDs); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "recipe_ingredients", "ingredient_id", rec.ID, rec.IngredientIDs)
	})
}

func (r *RecipeRepository) Update(ctx context.Context, rec *entity.Recipe, replaceTags, replaceIngredients bool) error {
	rec.UpdatedAt = time.Now()
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `
			UPDATE recipes
			SET title = $1, time_minutes = $2, price = $3::numeric, link = $4, updated_at = $5
			WHERE id = $6 AND user_id = $7
		`, rec.Title, rec.TimeMinutes, rec.Price.StringFixed(2), rec.Link, rec.UpdatedAt, rec.ID, rec.UserID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		if replaceTags {
			if err := replaceLinks(ctx, tx, "recipe_tags", "tag_id", rec.ID, rec.TagIDs); err != nil {
				return err
			}
		}
		if replaceIngredients {
			if err := replaceLinks(ctx, tx, "recipe_ingredients", "ingredient_id", rec.ID, rec.IngredientIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

func replaceLinks(ctx context.Context, tx pgx.Tx, table, col string, recipeID int64, ids []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE recipe_id = $1`, recipeID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO `+table+` (recipe_id, `+col+`)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, recipeID, ids)
	return err
}

// SetImage stores the new image locator and returns the one it replaced.
func (r *RecipeRepository) SetImage(ctx context.Context, ownerID string, id int64, image string) (string, error) {
	var previous string
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT image FROM recipes WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, ownerID).Scan(&previous); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE recipes SET image = $1, updated_at = now() WHERE id = $2`, image, id)
		return err
	})
	return previous, err
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
