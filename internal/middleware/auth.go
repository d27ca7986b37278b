package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/meetdoc-api/internal/utils"
)

const (
	ContextEmail = "callerEmail"
	ContextRole  = "callerRole"
)

// Identify sets the caller's email and role in the context when the request
// carries a valid bearer token. Roles are advisory: the request always proceeds.
func Identify(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			Log(c).Debug().Err(err).Msg("ignoring invalid token")
			c.Next()
			return
		}

		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
