package mockmall

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const accountKey = "account"

// auth resolves the session from the token header and loads the account.
func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("token")
		if tokenString == "" {
			fail(c, http.StatusUnauthorized, "token header is required")
			return
		}

		accountID, err := s.validateToken(tokenString)
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		var acct Account
		if err := s.db.First(&acct, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, http.StatusUnauthorized, "account not found")
				return
			}
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		c.Set(accountKey, acct)
		c.Next()
	}
}

// admin requires the authenticated account to carry the admin role.
func (s *Server) admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := currentAccount(c)
		if acct == nil || acct.Role != "admin" {
			fail(c, http.StatusForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *Account {
	raw, exists := c.Get(accountKey)
	if !exists {
		return nil
	}
	acct, ok := raw.(Account)
	if !ok {
		return nil
	}
	return &acct
}
