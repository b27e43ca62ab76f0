package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/filestore"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/memory"
)

func mustPrice(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type recipeFixture struct {
	svc   *RecipeService
	store *memory.Store
	files *filestore.LocalStore
	root  string
}

func newRecipeFixture(t *testing.T, search RecipeSearcher) recipeFixture {
	t.Helper()
	store := memory.NewStore()
	root := t.TempDir()
	files := filestore.NewLocalStore(root, "/media/")
	svc := NewRecipeService(store.Recipes(), store.Tags(), store.Ingredients(), files, search, testLogger())
	return recipeFixture{svc: svc, store: store, files: files, root: root}
}

func sampleInput(t *testing.T) RecipeInput {
	title, minutes, price := "Sample recipe", 22, mustPrice(t, "5.25")
	return RecipeInput{Title: &title, TimeMinutes: &minutes, Price: &price}
}

func (f recipeFixture) tag(t *testing.T, owner, name string) entity.Tag {
	t.Helper()
	tag := &entity.Tag{UserID: owner, Name: name}
	require.NoError(t, f.store.Tags().Create(context.Background(), tag))
	return *tag
}

func TestRecipeCreate_RequiresScalarFields(t *testing.T) {
	f := newRecipeFixture(t, nil)

	_, err := f.svc.Create(context.Background(), "alice", RecipeInput{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "time_minutes")
	assert.Contains(t, verr.Fields, "price")
}

func TestRecipeCreate_UnknownTagIsFieldError(t *testing.T) {
	f := newRecipeFixture(t, nil)
	in := sampleInput(t)
	in.TagIDs = &[]int64{999}

	_, err := f.svc.Create(context.Background(), "alice", in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{`invalid pk "999" - object does not exist`}, verr.Fields["tags"])
}

func TestRecipeCreate_PriceRules(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()

	for _, tc := range []struct {
		price string
		ok    bool
	}{
		{"5", true},
		{"999.99", true},
		{"-3.5", true},
		{"1000", false},
		{"1.234", false},
	} {
		t.Run(tc.price, func(t *testing.T) {
			in := sampleInput(t)
			p := mustPrice(t, tc.price)
			in.Price = &p
			r, err := f.svc.Create(ctx, "alice", in)
			if tc.ok {
				require.NoError(t, err)
				assert.True(t, p.Equal(r.Price))
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "price")
		})
	}
}

func TestRecipeGet_OtherOwnerIsNotFound(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	r, err := f.svc.Create(ctx, "alice", sampleInput(t))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "bob", r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(ctx, "alice", r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sample recipe", got.Title)
}

func TestRecipeGet_ExpandsTags(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	vegan := f.tag(t, "alice", "Vegan")
	in := sampleInput(t)
	in.TagIDs = &[]int64{vegan.ID, vegan.ID}

	r, err := f.svc.Create(ctx, "alice", in)
	require.NoError(t, err)
	assert.Equal(t, []int64{vegan.ID}, r.TagIDs)

	got, err := f.svc.Get(ctx, "alice", r.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Vegan", got.Tags[0].Name)
}

func TestRecipeUpdate_FullClearsLinksPartialKeepsThem(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	tag := f.tag(t, "alice", "Dinner")
	in := sampleInput(t)
	in.TagIDs = &[]int64{tag.ID}
	link := "https://example.com/recipe.pdf"
	in.Link = &link
	r, err := f.svc.Create(ctx, "alice", in)
	require.NoError(t, err)

	newTitle := "New title"
	patched, err := f.svc.Update(ctx, "alice", r.ID, RecipeInput{Title: &newTitle}, true)
	require.NoError(t, err)
	assert.Equal(t, "New title", patched.Title)
	assert.Equal(t, []int64{tag.ID}, patched.TagIDs)
	assert.Equal(t, link, patched.Link)
	assert.True(t, mustPrice(t, "5.25").Equal(patched.Price))

	full := sampleInput(t)
	replaced, err := f.svc.Update(ctx, "alice", r.ID, full, false)
	require.NoError(t, err)
	assert.Empty(t, replaced.TagIDs)
	assert.Empty(t, replaced.Link)

	got, err := f.svc.Get(ctx, "alice", r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TagIDs)
}

func TestRecipeUpdate_FullRequiresScalars(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	r, err := f.svc.Create(ctx, "alice", sampleInput(t))
	require.NoError(t, err)

	title := "Only title"
	_, err = f.svc.Update(ctx, "alice", r.ID, RecipeInput{Title: &title}, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")
}

func TestRecipeUpdate_OtherOwnerIsNotFound(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	r, err := f.svc.Create(ctx, "alice", sampleInput(t))
	require.NoError(t, err)

	title := "hijack"
	_, err = f.svc.Update(ctx, "bob", r.ID, RecipeInput{Title: &title}, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeList_FiltersByTag(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	vegan := f.tag(t, "alice", "Vegan")

	in := sampleInput(t)
	in.TagIDs = &[]int64{vegan.ID}
	tagged, err := f.svc.Create(ctx, "alice", in)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "alice", sampleInput(t))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "bob", sampleInput(t))
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "alice", ListRecipesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Greater(t, all[0].ID, all[1].ID)

	filtered, err := f.svc.List(ctx, "alice", ListRecipesQuery{TagIDs: []int64{vegan.ID}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, tagged.ID, filtered[0].ID)
}

func TestRecipeList_Search(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newRecipeFixture(t, nil)
		_, err := f.svc.List(context.Background(), "alice", ListRecipesQuery{Search: "soup"})
		assert.ErrorIs(t, err, ErrSearchUnavailable)
	})

	t.Run("hits are re-scoped to the owner", func(t *testing.T) {
		search := &stubSearch{}
		f := newRecipeFixture(t, search)
		ctx := context.Background()
		mine, err := f.svc.Create(ctx, "alice", sampleInput(t))
		require.NoError(t, err)
		theirs, err := f.svc.Create(ctx, "bob", sampleInput(t))
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{mine.ID, theirs.ID}, search.indexed)

		search.ids = []int64{mine.ID, theirs.ID}
		got, err := f.svc.List(ctx, "alice", ListRecipesQuery{Search: "sample"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, mine.ID, got[0].ID)
	})
}

func TestUploadImage(t *testing.T) {
	f := newRecipeFixture(t, nil)
	ctx := context.Background()
	r, err := f.svc.Create(ctx, "alice", sampleInput(t))
	require.NoError(t, err)

	t.Run("not an image", func(t *testing.T) {
		_, err := f.svc.UploadImage(ctx, "alice", r.ID, "notimage.jpg", []byte("notimage"))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "image")
		_, statErr := os.Stat(filepath.Join(f.root, filestore.RecipeImageDir))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := f.svc.UploadImage(ctx, "bob", r.ID, "photo.jpg", jpegBytes(t))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("valid jpeg replaces previous", func(t *testing.T) {
		first, err := f.svc.UploadImage(ctx, "alice", r.ID, "photo.jpg", jpegBytes(t))
		require.NoError(t, err)
		assert.Contains(t, first.Image, "/media/uploads/recipe/")
		firstPath := f.files.Path(first.Image)
		assert.FileExists(t, firstPath)

		second, err := f.svc.UploadImage(ctx, "alice", r.ID, "photo.jpg", jpegBytes(t))
		require.NoError(t, err)
		assert.NotEqual(t, first.Image, second.Image)
		assert.FileExists(t, f.files.Path(second.Image))
		assert.NoFileExists(t, firstPath)
	})
}
