package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmdatafocus/ghg_reports/utils"
	"github.com/mmdatafocus/ghg_reports/workflow"
)

const sessionKey = "formSession"

// UserIdMiddleware rejects requests whose :userId path parameter is not a
// usable record key and puts the id in the request context.
func UserIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Param("userId")
		if !utils.IsValidUserId(userId) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   utils.ErrorInvalidUserId.Error(),
			})
			return
		}
		c.Request = c.Request.WithContext(utils.SetUserIdInContext(c.Request.Context(), userId))
		c.Next()
	}
}

// SessionMiddleware resolves the user's form session, hydrating it on first
// use. It must run after UserIdMiddleware.
func SessionMiddleware(sessions *workflow.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Session(c.Request.Context(), c.Param("userId"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession returns the session stored by SessionMiddleware.
func GetSession(c *gin.Context) (*workflow.FormSession, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*workflow.FormSession)
	return sess, ok
}
