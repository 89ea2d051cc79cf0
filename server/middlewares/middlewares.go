package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moodtunes/moodtunes-backend/model"
	"github.com/moodtunes/moodtunes-backend/utils"
)

// UserIdKey is the gin context key under which Auth stores the
// authenticated user's id. Handlers reference the current user by this id
// string only, never by a partially loaded user object.
const UserIdKey = "userId"

// Auth fetches the bearer credential from the Authorization header and
// resolves it to a user row. It aborts with 401 on a missing, unknown or
// deleted-user token.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "missing access token",
			})
			return
		}

		var user model.User
		queryResult := db.Where("access_token = ?", token).First(&user)
		if queryResult.RowsAffected != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "invalid access token",
			})
			return
		}

		c.Set(UserIdKey, user.Id)
		c.Next()
	}
}

// CurrentUserId returns the authenticated user id stored by Auth.
func CurrentUserId(c *gin.Context) string {
	return c.GetString(UserIdKey)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(header)
}
