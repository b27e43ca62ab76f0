package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

// RecipeIndex keeps a searchable copy of recipe titles in Elasticsearch.
type RecipeIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewRecipeIndex(es *elasticsearch.Client, index string) *RecipeIndex {
	return &RecipeIndex{ES: es, Index: index}
}

type recipeDoc struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	TimeMinutes int       `json:"time_minutes"`
	Price       string    `json:"price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (x *RecipeIndex) IndexRecipe(ctx context.Context, r entity.Recipe) error {
	doc := recipeDoc{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Link:        r.Link,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		UpdatedAt:   r.UpdatedAt,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: strconv.FormatInt(r.ID, 10), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// SearchRecipes returns ids of the owner's recipes matching q, best match first.
func (x *RecipeIndex) SearchRecipes(ctx context.Context, ownerID, q string, size int) ([]int64, error) {
	if size <= 0 || size > 100 {
		size = 50
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "link"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": ownerID},
				},
			},
		},
		"_source": []string{"id"},
		"size":    size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source recipeDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.ID)
	}
	return out, nil
}
