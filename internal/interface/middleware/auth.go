package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
	"github.com/oksasatya/go-recipe-api/pkg/response"
)

const CtxUserIDKey = "userID"

// bearerToken accepts "Bearer <t>" and "Token <t>".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth validates the bearer token and, when sessions is non-nil, that it belongs
// to the user's active session. It sets userID, userName and userEmail on success.
func Auth(sessions repository.SessionRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "authentication credentials were not provided", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
			return
		}

		if sessions != nil {
			sess, err := sessions.Get(c.Request.Context(), claims.UserID)
			if err != nil || sess.SessionID != claims.SessionID {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			c.Set("userName", sess.Name)
			c.Set("userEmail", sess.Email)
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
