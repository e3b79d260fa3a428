package httpx

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/auth"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

const (
	ctxAccountID = "account_id"
	ctxRole      = "role"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and stores the account id and role
// on the gin context.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abort(c, apperr.Unauthorized("not authorized, no token"))
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			abort(c, apperr.Unauthorized("not authorized, token failed"))
			return
		}
		c.Set(ctxAccountID, claims.AccountID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != user.RoleAdmin {
			abort(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

func AccountID(c *gin.Context) string { return c.GetString(ctxAccountID) }

func Role(c *gin.Context) string { return c.GetString(ctxRole) }
