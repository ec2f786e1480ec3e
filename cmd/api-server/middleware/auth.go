package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nosmoke-app/backend/internal/auth"
	"github.com/nosmoke-app/backend/pkg/types"
)

const identityKey = "identity"

// Auth validates the bearer identity token and stores the verified identity
// in the request context
func Auth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			identity, err := verifier.Verify(c.Request.Context(), token)
			if err == nil {
				c.Set(identityKey, identity)
				c.Next()
				return
			}
		}

		unauthorized := types.NewUnauthorized()
		c.JSON(unauthorized.Status, types.Failure(unauthorized.Code, unauthorized.Message))
		c.Abort()
	}
}

// IdentityFromContext extracts the verified identity from gin context
func IdentityFromContext(c *gin.Context) (*types.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*types.Identity)
	return identity, ok
}
