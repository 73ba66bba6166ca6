package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-portal/internal/session"
)

// HeaderHXRequest marks requests issued by htmx.
const HeaderHXRequest = "HX-Request"

// IsHTMX reports whether the request came from htmx and expects a fragment.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader(HeaderHXRequest) == "true"
}

// Guard runs the route guard on every page request. Redirects use 302 so the gated
// page never becomes a history entry; htmx callers get HX-Redirect instead.
func Guard(guard *session.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Evaluate(c.Request.URL.Path, SessionFromContext(c))
		if decision.Action != session.ActionRedirect {
			c.Next()
			return
		}
		if IsHTMX(c) {
			c.Header("HX-Redirect", decision.Location)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Redirect(http.StatusFound, decision.Location)
		c.Abort()
	}
}
