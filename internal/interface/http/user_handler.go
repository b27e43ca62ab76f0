package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/response"
)

type UserHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"max=255"`
	Password string `json:"password" binding:"required,pwd"`
}

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateMeRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,pwd"`
}

type userCreatedDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type profileDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokenDTO struct {
	Token string `json:"token"`
}

func profile(u *entity.User) profileDTO {
	return profileDTO{Name: u.Name, Email: u.Email}
}

// Create POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{Email: req.Email, Name: req.Name, Password: req.Password})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, userCreatedDTO{ID: u.ID, Email: u.Email, Name: u.Name}, "user created", nil)
}

// Token POST /api/users/token
func (h *UserHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	token, err := h.Svc.IssueToken(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tokenDTO{Token: token}, "token issued", nil)
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	meta := app.ViewMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), meta)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profile(u), "profile", nil)
}

// UpdateMe PUT|PATCH /api/users/me. PUT must carry name.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if c.Request.Method == http.MethodPut && req.Name == nil {
		verr := app.NewValidationError()
		verr.Add("name", "this field is required")
		writeError(c, h.Logger, verr)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), app.UpdateProfileInput{Name: req.Name, Password: req.Password})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profile(u), "profile updated", nil)
}
