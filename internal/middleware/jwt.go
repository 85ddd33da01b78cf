package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deptsched/timetable-api/internal/service"
	appErrors "github.com/deptsched/timetable-api/pkg/errors"
	"github.com/deptsched/timetable-api/pkg/response"
)

// ContextOperatorKey is the gin context key storing JWT claims.
const ContextOperatorKey = "currentOperator"

// JWT protects mutating routes by requiring a valid operator access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextOperatorKey, claims)
		c.Next()
	}
}
