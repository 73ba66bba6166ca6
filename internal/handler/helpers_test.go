package handler

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/session"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

var testLayout = Layout{LoginURL: "/oauth2/authorization/google", LogoutURL: "/api/logout"}

func signedIn(u models.User) session.Snapshot {
	return session.Snapshot{State: session.StateAuthenticated, User: &u}
}

var (
	kim   = models.User{ID: 7, Name: "Kim", Email: "kim@hufs.ac.kr", Role: models.RoleUser}
	admin = models.User{ID: 1, Name: "Admin", Email: "admin@hufs.ac.kr", Role: models.RoleAdmin}
)

func newRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	renderer, err := view.New()
	require.NoError(t, err)
	return renderer
}

// newEngine returns a router whose requests already carry snap as the resolved session.
func newEngine(t *testing.T, snap session.Snapshot) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(newRenderer(t).Template())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSessionKey, snap)
		c.Set(middleware.ContextCredentialsKey, backend.CredentialsFromRequest(c.Request))
		c.Next()
	})
	return r
}

func multipartForm(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}
