package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New returns a CORS middleware for cross-origin callers of the proxied backend API.
// Credentials are only advertised to explicitly allowed origins; with no allow-list the
// portal answers same-origin traffic only and adds no CORS headers.
func New(allowedOrigins []string, csrfHeader string) gin.HandlerFunc {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}

	allowHeaders := "Content-Type, X-Requested-With, X-Request-ID, HX-Request, HX-Current-URL"
	if csrfHeader != "" {
		allowHeaders += ", " + csrfHeader
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !hasOrigin(originSet, origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func hasOrigin(originSet map[string]struct{}, origin string) bool {
	_, ok := originSet[strings.TrimRight(origin, "/")]
	return ok
}
