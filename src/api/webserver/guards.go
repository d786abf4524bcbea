package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/openassembly/election-api/src/api/data"
)

// RequireRole admits users whose role key matches any of the given roles.
// Legacy gate; new routes should prefer RequirePermission.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "authentication required"})
			return
		}
		for _, r := range roles {
			if user.Role.Key == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "insufficient permissions"})
	}
}

// RequirePermission admits users holding any of the listed permission keys.
// Resolved sets are cached in redis per role; roles are static seed data so
// a short TTL is safe.
func RequirePermission(db *gorm.DB, rdb *redis.Client, keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "authentication required"})
			return
		}

		held, ok := data.CachedRolePermissions(c, rdb, user.Role.Key)
		if !ok {
			var err error
			held, err = data.RolePermissionKeys(db, user.RoleID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "permission check failed"})
				return
			}
			data.CacheRolePermissions(c, rdb, user.Role.Key, held)
		}

		for _, want := range keys {
			for _, have := range held {
				if want == have {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "insufficient permissions"})
	}
}

// RequireVerified admits only accounts the admin has verified.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "authentication required"})
			return
		}
		if !user.IsVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "account verification required"})
			return
		}
		c.Next()
	}
}
