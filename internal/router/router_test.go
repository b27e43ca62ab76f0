package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-recipe-api/config"
	"github.com/oksasatya/go-recipe-api/internal/container"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/filestore"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	helpers.PasswordCost = bcrypt.MinCost
	validation.Init()
	os.Exit(m.Run())
}

type envelope struct {
	Status  int                 `json:"status"`
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   map[string][]string `json:"error"`
}

type apiTest struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	files  *filestore.LocalStore
}

func newAPI(t *testing.T) *apiTest {
	t.Helper()
	store := memory.NewStore()
	files := filestore.NewLocalStore(t.TempDir(), "/media/")
	cfg := &config.Config{MaxUploadBytes: 1 << 20, AccessTTL: time.Hour}

	c := &container.Container{
		Config:      cfg,
		Logger:      helpers.NewDiscardLogger(),
		JWT:         helpers.NewJWTManager("test-secret", time.Hour),
		Users:       store.Users(),
		Tags:        store.Tags(),
		Ingredients: store.Ingredients(),
		Recipes:     store.Recipes(),
		Sessions:    store.Sessions(),
		Files:       files,
	}

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	reg := NewRegistry(engine)
	InitModules(reg, c)
	reg.RegisterAll()
	return &apiTest{t: t, engine: engine, store: store, files: files}
}

func (a *apiTest) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *apiTest) json(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

// login registers email and returns a bearer token for it.
func (a *apiTest) login(email string) string {
	a.t.Helper()
	w, _ := a.json(http.MethodPost, "/api/users", "", map[string]string{"email": email, "name": "Test", "password": "testpass123"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	w, env := a.json(http.MethodPost, "/api/users/token", "", map[string]string{"email": email, "password": "testpass123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &tok))
	require.NotEmpty(a.t, tok.Token)
	return tok.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type nameOut struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type flatOut struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Image       *string `json:"image"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

type expandedOut struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Tags        []nameOut `json:"tags"`
	Ingredients []nameOut `json:"ingredients"`
}

func TestUsers_Register(t *testing.T) {
	api := newAPI(t)

	w, env := api.json(http.MethodPost, "/api/users", "", map[string]string{
		"email": "Test@Example.com", "name": "Test Name", "password": "testpass123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[map[string]any](t, env.Data)
	assert.Equal(t, "test@example.com", body["email"])
	assert.Equal(t, "Test Name", body["name"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")

	w, env = api.json(http.MethodPost, "/api/users", "", map[string]string{"email": "test@example.com", "password": "testpass123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "email")
}

func TestUsers_RegisterShortPassword(t *testing.T) {
	api := newAPI(t)

	w, env := api.json(http.MethodPost, "/api/users", "", map[string]string{"email": "test@example.com", "name": "Test", "password": "pw"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "password")
	assert.Equal(t, 0, api.store.UserCount())
}

func TestUsers_RegisterInvalidEmail(t *testing.T) {
	api := newAPI(t)
	w, env := api.json(http.MethodPost, "/api/users", "", map[string]string{"email": "not-an-email", "password": "testpass123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "email")
}

func TestUsers_Token(t *testing.T) {
	api := newAPI(t)
	w, _ := api.json(http.MethodPost, "/api/users", "", map[string]string{"email": "test@example.com", "password": "goodpass"})
	require.Equal(t, http.StatusCreated, w.Code)

	for name, body := range map[string]map[string]string{
		"wrong password": {"email": "test@example.com", "password": "badpass"},
		"unknown user":   {"email": "nobody@example.com", "password": "goodpass"},
	} {
		t.Run(name, func(t *testing.T) {
			w, env := api.json(http.MethodPost, "/api/users/token", "", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, env.Error, "non_field_errors")
			assert.NotContains(t, string(env.Data), "token")
		})
	}

	t.Run("blank password", func(t *testing.T) {
		w, env := api.json(http.MethodPost, "/api/users/token", "", map[string]string{"email": "test@example.com", "password": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Error, "password")
	})
}

func TestUsers_Me(t *testing.T) {
	api := newAPI(t)

	w, _ := api.json(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = api.json(http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := api.login("me@example.com")

	w, env := api.json(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"name": "Test", "email": "me@example.com"}, decode[map[string]string](t, env.Data))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	w, _ = api.do(req, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = api.json(http.MethodPut, "/api/users/me", token, map[string]string{"password": "another123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "name")

	w, env = api.json(http.MethodPatch, "/api/users/me", token, map[string]string{"password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "password")

	w, env = api.json(http.MethodPatch, "/api/users/me", token, map[string]string{"name": "Updated", "password": "newpassword123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Updated", decode[map[string]string](t, env.Data)["name"])

	w, _ = api.json(http.MethodPost, "/api/users/token", "", map[string]string{"email": "me@example.com", "password": "newpassword123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsers_NewTokenRevokesOldSession(t *testing.T) {
	api := newAPI(t)
	first := api.login("me@example.com")

	w, _ := api.json(http.MethodPost, "/api/users/token", "", map[string]string{"email": "me@example.com", "password": "testpass123"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.json(http.MethodGet, "/api/users/me", first, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTags_OwnerScoped(t *testing.T) {
	api := newAPI(t)
	alice := api.login("alice@example.com")
	bob := api.login("bob@example.com")

	for _, name := range []string{"Vegan", "Dessert"} {
		w, _ := api.json(http.MethodPost, "/api/tags", alice, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w, _ := api.json(http.MethodPost, "/api/tags", bob, map[string]string{"name": "Fruity"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := api.json(http.MethodGet, "/api/tags", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[[]nameOut](t, env.Data)
	require.Len(t, tags, 2)
	assert.Equal(t, "Vegan", tags[0].Name)
	assert.Equal(t, "Dessert", tags[1].Name)

	w, env = api.json(http.MethodPost, "/api/tags", alice, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "name")

	w, _ = api.json(http.MethodGet, "/api/tags", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngredients_Create(t *testing.T) {
	api := newAPI(t)
	token := api.login("alice@example.com")

	w, env := api.json(http.MethodPost, "/api/ingredients", token, map[string]string{"name": "Kale"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[nameOut](t, env.Data)
	assert.Equal(t, "Kale", created.Name)

	w, env = api.json(http.MethodGet, "/api/ingredients", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []nameOut{created}, decode[[]nameOut](t, env.Data))
}

func createRecipe(t *testing.T, api *apiTest, token string, body map[string]any) flatOut {
	t.Helper()
	w, env := api.json(http.MethodPost, "/api/recipes", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[flatOut](t, env.Data)
}

func TestRecipes_CreateAndRetrieve(t *testing.T) {
	api := newAPI(t)
	alice := api.login("alice@example.com")
	bob := api.login("bob@example.com")

	w, env := api.json(http.MethodPost, "/api/tags", alice, map[string]string{"name": "Vegan"})
	require.Equal(t, http.StatusCreated, w.Code)
	tag := decode[nameOut](t, env.Data)

	r := createRecipe(t, api, alice, map[string]any{
		"title": "Title", "time_minutes": 5, "price": 5.00, "tags": []int64{tag.ID},
	})
	assert.Equal(t, "Title", r.Title)
	assert.Equal(t, "5.00", r.Price)
	assert.Equal(t, []int64{tag.ID}, r.Tags)
	assert.Equal(t, []int64{}, r.Ingredients)
	assert.Nil(t, r.Image)

	w, env = api.json(http.MethodGet, "/api/recipes/"+itoa(r.ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	expanded := decode[expandedOut](t, env.Data)
	assert.Equal(t, []nameOut{tag}, expanded.Tags)
	assert.Equal(t, []nameOut{}, expanded.Ingredients)

	w, _ = api.json(http.MethodGet, "/api/recipes/"+itoa(r.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = api.json(http.MethodGet, "/api/recipes", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]flatOut](t, env.Data))

	w, _ = api.json(http.MethodGet, "/api/recipes/abc", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipes_CreateValidation(t *testing.T) {
	api := newAPI(t)
	token := api.login("alice@example.com")

	w, env := api.json(http.MethodPost, "/api/recipes", token, map[string]any{"title": "x", "time_minutes": 5, "price": "1.234"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "price")

	w, env = api.json(http.MethodPost, "/api/recipes", token, map[string]any{"title": "x", "time_minutes": 5, "price": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "price")

	w, env = api.json(http.MethodPost, "/api/recipes", token, map[string]any{"title": "x", "time_minutes": 5, "price": "2.50", "ingredients": []int64{42}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{`invalid pk "42" - object does not exist`}, env.Error["ingredients"])

	w, env = api.json(http.MethodPost, "/api/recipes", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "time_minutes")
	assert.Contains(t, env.Error, "price")
}

func TestRecipes_PutClearsPatchKeeps(t *testing.T) {
	api := newAPI(t)
	token := api.login("alice@example.com")
	w, env := api.json(http.MethodPost, "/api/tags", token, map[string]string{"name": "Dinner"})
	require.Equal(t, http.StatusCreated, w.Code)
	tag := decode[nameOut](t, env.Data)

	r := createRecipe(t, api, token, map[string]any{
		"title": "Curry", "time_minutes": 30, "price": "7.50", "tags": []int64{tag.ID}, "link": "https://example.com",
	})
	path := "/api/recipes/" + itoa(r.ID)

	w, env = api.json(http.MethodPatch, path, token, map[string]any{"title": "Thai Curry"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[flatOut](t, env.Data)
	assert.Equal(t, "Thai Curry", patched.Title)
	assert.Equal(t, []int64{tag.ID}, patched.Tags)
	assert.Equal(t, "7.50", patched.Price)
	assert.Equal(t, "https://example.com", patched.Link)

	w, env = api.json(http.MethodPut, path, token, map[string]any{"title": "Spaghetti", "time_minutes": 25, "price": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode[flatOut](t, env.Data)
	assert.Equal(t, "Spaghetti", replaced.Title)
	assert.Equal(t, "5.00", replaced.Price)
	assert.Empty(t, replaced.Tags)
	assert.Empty(t, replaced.Link)

	w, env = api.json(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[expandedOut](t, env.Data).Tags)

	other := api.login("bob@example.com")
	w, _ = api.json(http.MethodPatch, path, other, map[string]any{"title": "mine now"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipes_ListFilters(t *testing.T) {
	api := newAPI(t)
	token := api.login("alice@example.com")
	w, env := api.json(http.MethodPost, "/api/tags", token, map[string]string{"name": "Vegan"})
	require.Equal(t, http.StatusCreated, w.Code)
	tag := decode[nameOut](t, env.Data)

	tagged := createRecipe(t, api, token, map[string]any{"title": "A", "time_minutes": 1, "price": 1, "tags": []int64{tag.ID}})
	createRecipe(t, api, token, map[string]any{"title": "B", "time_minutes": 1, "price": 1})

	w, env = api.json(http.MethodGet, "/api/recipes?tags="+itoa(tag.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]flatOut](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, tagged.ID, list[0].ID)

	w, env = api.json(http.MethodGet, "/api/tags?assigned_only=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]nameOut](t, env.Data), 1)

	w, env = api.json(http.MethodGet, "/api/recipes?tags=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "tags")

	w, _ = api.json(http.MethodGet, "/api/recipes?q=soup", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))
	return buf.Bytes()
}

func TestRecipes_UploadImage(t *testing.T) {
	api := newAPI(t)
	token := api.login("alice@example.com")
	r := createRecipe(t, api, token, map[string]any{"title": "Photo", "time_minutes": 5, "price": "5.00"})
	path := "/api/recipes/" + itoa(r.ID) + "/upload-image"

	w, env := api.do(uploadRequest(t, path, "notimage.jpg", []byte("notimage")), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "image")

	w, env = api.json(http.MethodPost, path, token, map[string]string{"image": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "image")

	w, env = api.do(uploadRequest(t, path, "photo.jpg", jpegBytes(t)), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[struct {
		ID    int64  `json:"id"`
		Image string `json:"image"`
	}](t, env.Data)
	assert.Equal(t, r.ID, out.ID)
	assert.Contains(t, out.Image, "uploads/recipe/")
	assert.FileExists(t, api.files.Path(out.Image))

	bob := api.login("bob@example.com")
	w, _ = api.do(uploadRequest(t, path, "photo.jpg", jpegBytes(t)), bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	api := newAPI(t)
	w, env := api.json(http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = api.json(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
