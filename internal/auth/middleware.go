package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

const actorKey = "diwan.actor"

// Middleware authenticates every request and stores the resolved actor in
// the gin context. Requests without a valid token get a 401 with the
// bilingual error body used across the API.
func Middleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := Resolve(db, secret, c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      err.Error(),
				"message_ar": "يجب تسجيل الدخول أولاً",
			})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the authenticated actor stored by Middleware.
func ActorFrom(c *gin.Context) (task.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return task.Actor{}, false
	}
	actor, ok := v.(task.Actor)
	return actor, ok
}
