package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeyRole = "reviewer_role"

// requireReviewer verifies the bearer token and stores its role claim on the
// request context. Role-vs-target matching happens in the handler, where the
// request body is available.
func (h *Handlers) requireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false, Error: "Authorization header is required",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false, Error: "invalid token format",
			})
			return
		}

		claims, err := h.issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false, Error: "invalid or expired token",
			})
			return
		}

		c.Set(contextKeyRole, claims.Role)
		c.Next()
	}
}
