package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/session"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

// Layout carries the URLs every page links to.
type Layout struct {
	LoginURL  string
	LogoutURL string
}

func (l Layout) page(c *gin.Context, title string) view.Page {
	return view.Page{
		Title:     title,
		Path:      c.Request.URL.Path,
		Session:   middleware.SessionFromContext(c),
		LoginURL:  l.LoginURL,
		LogoutURL: l.LogoutURL,
	}
}

// resolved renders the loading page while identity is still unknown and reports whether
// the caller may continue.
func (l Layout) resolved(c *gin.Context) (session.Snapshot, bool) {
	snap := middleware.SessionFromContext(c)
	if snap.Loading() {
		c.HTML(http.StatusOK, "loading.html", view.LoadingPage{Page: l.page(c, "")})
		return snap, false
	}
	return snap, true
}

func credentials(c *gin.Context) backend.Credentials {
	return middleware.CredentialsFromContext(c)
}

// statusOf returns the HTTP status to answer with for err.
func statusOf(err error) int {
	return appErrors.FromError(err).Status
}

// upstreamText mirrors what a failed fetch reports: the backend status when there is one.
func upstreamText(err error) string {
	if status, ok := backend.StatusCode(err); ok {
		return fmt.Sprintf("HTTP %d", status)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// adminLoadError picks the permission message for 403 and the generic one otherwise.
func adminLoadError(err error) string {
	if errors.Is(err, appErrors.ErrForbidden) {
		return view.MsgForbidden
	}
	return view.MsgLoadFailed
}
