package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/response"
)

// CatalogHandler serves the owner's tags and ingredients.
type CatalogHandler struct {
	Svc    *app.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *app.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListTags GET /api/tags[?assigned_only=1]
func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.Svc.ListTags(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), parseBoolFlag(c.Query("assigned_only")))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tagDTOs(tags), "tags", nil)
}

// CreateTag POST /api/tags
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	t, err := h.Svc.CreateTag(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, tagDTO(*t), "tag created", nil)
}

// ListIngredients GET /api/ingredients[?assigned_only=1]
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ings, err := h.Svc.ListIngredients(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), parseBoolFlag(c.Query("assigned_only")))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ingredientDTOs(ings), "ingredients", nil)
}

// CreateIngredient POST /api/ingredients
func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	in, err := h.Svc.CreateIngredient(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, ingredientDTO(*in), "ingredient created", nil)
}
