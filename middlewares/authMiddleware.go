package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a bearer token signed with API_SECRET. With no secret configured every request passes.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.AuthRequired() {
			c.Next()
			return
		}

		auth := c.Request.Header.Get("Authorization")
		const bearer = "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		validate, err := utils.JwtValidate(strings.TrimSpace(auth[len(bearer):]))
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if customClaim, ok := validate.Claims.(*utils.JwtCustomClaim); ok {
			ctx = utils.SetUserIdInContext(ctx, customClaim.ID)
			ctx = utils.SetUserNameInContext(ctx, customClaim.Username)
			ctx = utils.SetRoleInContext(ctx, customClaim.Role)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
