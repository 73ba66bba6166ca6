package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/response"
)

// AuthHandler serves the login page and delegates the auth flows to the backend.
type AuthHandler struct {
	layout Layout
}

// NewAuthHandler builds the handler.
func NewAuthHandler(layout Layout) *AuthHandler {
	return &AuthHandler{layout: layout}
}

// Login renders the public login page.
func (h *AuthHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", view.LoginPage{Page: h.layout.page(c, "로그인")})
}

// Logout navigates the browser to the backend logout endpoint.
func (h *AuthHandler) Logout(c *gin.Context) {
	if middleware.IsHTMX(c) {
		c.Header("HX-Redirect", h.layout.LogoutURL)
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusFound, h.layout.LogoutURL)
}

// Session godoc
// @Summary Current session state
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	response.JSON(c, http.StatusOK, middleware.SessionFromContext(c))
}
