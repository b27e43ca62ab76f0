package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// namedRow is the shared shape of tags and ingredients.
type namedRow struct {
	ID     int64
	UserID string
	Name   string
}

// namedTable runs the owner-scoped queries shared by tags and ingredients.
type namedTable struct {
	pool    *pgxpool.Pool
	table   string
	linkCol string
	linkTbl string
}

func (t namedTable) list(ctx context.Context, ownerID string, assignedOnly bool) ([]namedRow, error) {
	q := `SELECT id, user_id, name FROM ` + t.table + ` WHERE user_id = $1`
	if assignedOnly {
		q += ` AND EXISTS (SELECT 1 FROM ` + t.linkTbl + ` l WHERE l.` + t.linkCol + ` = ` + t.table + `.id)`
	}
	q += ` ORDER BY name DESC, id DESC`
	return t.query(ctx, q, ownerID)
}

func (t namedTable) findByIDs(ctx context.Context, ids []int64) ([]namedRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return t.query(ctx, `SELECT id, user_id, name FROM `+t.table+` WHERE id = ANY($1) ORDER BY id`, ids)
}

func (t namedTable) create(ctx context.Context, ownerID, name string) (int64, error) {
	var id int64
	err := t.pool.QueryRow(ctx, `INSERT INTO `+t.table+` (user_id, name) VALUES ($1, $2) RETURNING id`, ownerID, name).Scan(&id)
	return id, err
}

func (t namedTable) query(ctx context.Context, q string, args ...any) ([]namedRow, error) {
	rows, err := t.pool.Query(ctx, q, args...)
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

type TagRepository struct {
	t namedTable
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{t: namedTable{pool: pool, table: "tags", linkTbl: "recipe_tags", linkCol: "tag_id"}}
}

func (r *TagRepository) ListByOwner(ctx context.Context, ownerID string, assignedOnly bool) ([]entity.Tag, error) {
	rows, err := r.t.list(ctx, ownerID, assignedOnly)
	if err != nil {
		return nil, err
	}
	return toTags(rows), nil
}

func (r *TagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	id, err := r.t.create(ctx, tag.UserID, tag.Name)
	if err != nil {
		return err
	}
	tag.ID = id
	return nil
}

func (r *TagRepository) FindByIDs(ctx context.Context, ids []int64) ([]entity.Tag, error) {
	rows, err := r.t.findByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toTags(rows), nil
}

type IngredientRepository struct {
	t namedTable
}

func NewIngredientRepository(pool *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{t: namedTable{pool: pool, table: "ingredients", linkTbl: "recipe_ingredients", linkCol: "ingredient_id"}}
}

func (r *IngredientRepository) ListByOwner(ctx context.Context, ownerID string, assignedOnly bool) ([]entity.Ingredient, error) {
	rows, err := r.t.list(ctx, ownerID, assignedOnly)
	if err != nil {
		return nil, err
	}
	return toIngredients(rows), nil
}

func (r *IngredientRepository) Create(ctx context.Context, in *entity.Ingredient) error {
	id, err := r.t.create(ctx, in.UserID, in.Name)
	if err != nil {
		return err
	}
	in.ID = id
	return nil
}

func (r *IngredientRepository) FindByIDs(ctx context.Context, ids []int64) ([]entity.Ingredient, error) {
	rows, err := r.t.findByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toIngredients(rows), nil
}

func toTags(rows []namedRow) []entity.Tag {
	out := make([]entity.Tag, 0, len(rows))
	for _, n := range rows {
		out = append(out, entity.Tag{ID: n.ID, UserID: n.UserID, Name: n.Name})
	}
	return out
}

func toIngredients(rows []namedRow) []entity.Ingredient {
	out := make([]entity.Ingredient, 0, len(rows))
	for _, n := range rows {
		out = append(out, entity.Ingredient{ID: n.ID, UserID: n.UserID, Name: n.Name})
	}
	return out
}

var (
	_ repository.TagRepository        = (*TagRepository)(nil)
	_ repository.IngredientRepository = (*IngredientRepository)(nil)
)
