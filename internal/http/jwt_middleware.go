package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"notes-auth/internal/service"
)

const accountIDKey = "auth_account_id"

// TokenAuthMiddleware valida el bearer token de sesion y guarda el accountID en el contexto.
func TokenAuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"ok":      false,
				"kind":    service.KindDependencyFailure,
				"message": service.ErrDependencyFailure.Message,
			})
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
			abortInvalidToken(c)
			return
		}

		accountID, err := tokens.Validate(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			abortInvalidToken(c)
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

func abortInvalidToken(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"ok":      false,
		"kind":    service.KindInvalidToken,
		"message": service.ErrInvalidToken.Message,
	})
}

// GetAccountID obtiene el accountID autenticado desde el contexto.
func GetAccountID(c *gin.Context) (string, bool) {
	val, ok := c.Get(accountIDKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok
}
