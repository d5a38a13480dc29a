package middleware

import (
	"net/http"
	"strings"

	"github.com/chemtalent/jobchain/internal/services"
	"github.com/chemtalent/jobchain/internal/utils"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after JWTAuth. A request without an authenticated
// subject gets 401; one whose role is not allowed gets 403.
func RequireRole(allowed ...string) gin.HandlerFunc {
	allow := map[string]struct{}{}
	for _, a := range allowed {
		a = strings.TrimSpace(strings.ToLower(a))
		if a != "" {
			allow[a] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "login required",
			})
			return
		}

		role := strings.ToLower(strings.TrimSpace(c.GetString("role")))
		if _, ok := allow[role]; !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{
				Code:    utils.CodeForbidden,
				Message: "admin role required",
			})
			return
		}

		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(services.AdminRole) }
