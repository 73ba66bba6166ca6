package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/service"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
	"github.com/noah-isme/grading-portal/pkg/export"
	"github.com/noah-isme/grading-portal/pkg/response"
)

type adminService interface {
	Submissions(ctx context.Context, creds backend.Credentials) ([]models.AdminSubmission, error)
	ExportSubmissions(ctx context.Context, creds backend.Credentials, format export.Format) (*service.Download, error)
}

// AdminHandler serves the admin submission overview. Authorisation is the backend's call:
// a 403 from it is rendered as the permission message.
type AdminHandler struct {
	service adminService
	layout  Layout
}

// NewAdminHandler builds the handler.
func NewAdminHandler(svc adminService, layout Layout) *AdminHandler {
	return &AdminHandler{service: svc, layout: layout}
}

// Submissions renders every submission.
func (h *AdminHandler) Submissions(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	page := view.AdminPage{Page: h.layout.page(c, "전체 제출 현황")}
	list, err := h.service.Submissions(c.Request.Context(), credentials(c))
	if err != nil {
		page.Error = adminLoadError(err)
		c.HTML(statusOf(err), "admin.html", page)
		return
	}
	page.Submissions = list
	c.HTML(http.StatusOK, "admin.html", page)
}

// ExportSubmissions godoc
// @Summary Download all submissions
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /admin/submissions/export [get]
func (h *AdminHandler) ExportSubmissions(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format"))
		return
	}
	download, err := h.service.ExportSubmissions(c.Request.Context(), credentials(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, download.Filename, download.ContentType, download.Payload)
}
