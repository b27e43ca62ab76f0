package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/response"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

type RecipeHandler struct {
	Svc            *app.RecipeService
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewRecipeHandler(svc *app.RecipeService, logger *logrus.Logger, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{Svc: svc, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

// recipeID parses :id; anything unparsable is reported as not found.
func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusNotFound, "not found", nil)
		return 0, false
	}
	return id, true
}

// List GET /api/recipes[?tags=1,2&ingredients=3&q=text]
func (h *RecipeHandler) List(c *gin.Context) {
	errs := validation.FieldErrors{}
	tagIDs, ok := parseIDList(c.Query("tags"))
	if !ok {
		errs.Add("tags", "must be a comma-separated list of ids")
	}
	ingIDs, ok := parseIDList(c.Query("ingredients"))
	if !ok {
		errs.Add("ingredients", "must be a comma-separated list of ids")
	}
	if len(errs) > 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid query", errs)
		return
	}

	recipes, err := h.Svc.List(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), app.ListRecipesQuery{
		TagIDs:        tagIDs,
		IngredientIDs: ingIDs,
		Search:        c.Query("q"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]any, 0, len(recipes))
	for i := range recipes {
		out = append(out, renderRecipe(OpList, &recipes[i]))
	}
	response.Success(c, http.StatusOK, out, "recipes", nil)
}

// Create POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, renderRecipe(OpCreate, r), "recipe created", nil)
}

// Retrieve GET /api/recipes/:id
func (h *RecipeHandler) Retrieve(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	r, err := h.Svc.Get(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, renderRecipe(OpRetrieve, r), "recipe", nil)
}

// Update PUT /api/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) { h.update(c, OpUpdate) }

// PartialUpdate PATCH /api/recipes/:id
func (h *RecipeHandler) PartialUpdate(c *gin.Context) { h.update(c, OpPartialUpdate) }

func (h *RecipeHandler) update(c *gin.Context, op OpKind) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	r, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), id, in, op == OpPartialUpdate)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, renderRecipe(op, r), "recipe updated", nil)
}

func (h *RecipeHandler) bindInput(c *gin.Context) (app.RecipeInput, bool) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return app.RecipeInput{}, false
	}
	in, errs := req.toInput()
	if len(errs) > 0 {
		response.Error[any](c, http.StatusBadRequest, "validation failed", errs)
		return app.RecipeInput{}, false
	}
	return in, true
}

// UploadImage POST /api/recipes/:id/upload-image (multipart field "image")
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "image too large", validation.FieldErrors{
				"image": {"file exceeds " + strconv.FormatInt(mbe.Limit, 10) + " bytes"},
			})
			return
		}
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.FieldErrors{
			"image": {"no file was submitted"},
		})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	r, err := h.Svc.UploadImage(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), id, fh.Filename, data)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, renderRecipe(OpUploadImage, r), "image uploaded", nil)
}
