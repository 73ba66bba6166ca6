package handler

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/pkg/middleware/requestid"
)

// ProxyHandler forwards browser-owned traffic (API calls, OAuth redirects, logout) to the
// backend untouched so its cookies stay first-party to the portal's origin.
type ProxyHandler struct {
	proxy *httputil.ReverseProxy
}

// NewProxyHandler builds a reverse proxy to target.
func NewProxyHandler(target *url.URL, logger *zap.Logger) *ProxyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		host := r.Host
		director(r)
		r.Header.Set("X-Forwarded-Host", host)
		if id := requestid.FromContext(r.Context()); id != "" {
			r.Header.Set(requestid.HeaderKey, id)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("proxy request failed", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	return &ProxyHandler{proxy: proxy}
}

// Forward hands the request to the backend.
func (h *ProxyHandler) Forward(c *gin.Context) {
	h.proxy.ServeHTTP(c.Writer, c.Request)
}
