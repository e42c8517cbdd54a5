package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"imagedrop/internal/pkg/jwt"
	"imagedrop/internal/pkg/response"
)

// JWTAuth requires a bearer token and puts user_id into the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Empty token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
