package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"logikalmart.ca/storefront/api/pkg/global"
	"logikalmart.ca/storefront/api/pkg/models"
)

// RequestIDMiddleware tags every request with an id for log correlation,
// honoring one supplied by the caller.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// RequireRole maps the transmitted role tag onto the closed Role enum
// and denies the request unless it lands in the allowed set. Unknown
// or missing tags fail closed.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := models.ParseRole(c.GetHeader("X-Actor-Role"))
		if err != nil || !role.Can(allowed...) {
			c.JSON(http.StatusForbidden, global.ErrorResponse("Forbidden", []global.ValidationError{
				{Field: "X-Actor-Role", Message: "actor role is not permitted for this operation", Code: "forbidden"},
			}))
			c.Abort()
			return
		}
		c.Set("actor_role", role)
		c.Next()
	}
}
