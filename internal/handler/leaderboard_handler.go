package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/service"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
	"github.com/noah-isme/grading-portal/pkg/export"
	"github.com/noah-isme/grading-portal/pkg/response"
)

type leaderboardService interface {
	Get(ctx context.Context, creds backend.Credentials, role models.UserRole, assignmentID int64) ([]models.LeaderboardRow, error)
	Export(ctx context.Context, creds backend.Credentials, role models.UserRole, assignmentID int64, format export.Format) (*service.Download, error)
}

// LeaderboardHandler renders per-assignment rankings.
type LeaderboardHandler struct {
	service leaderboardService
	layout  Layout
}

// NewLeaderboardHandler builds the handler.
func NewLeaderboardHandler(svc leaderboardService, layout Layout) *LeaderboardHandler {
	return &LeaderboardHandler{service: svc, layout: layout}
}

// Page renders the leaderboard with its error and empty states.
func (h *LeaderboardHandler) Page(c *gin.Context) {
	snap, ok := h.layout.resolved(c)
	if !ok {
		return
	}
	page := view.LeaderboardPage{Page: h.layout.page(c, "리더보드")}
	id, err := strconv.ParseInt(c.Param("assignmentId"), 10, 64)
	if err != nil || id <= 0 {
		page.Error = "HTTP 400"
		c.HTML(http.StatusBadRequest, "leaderboard.html", page)
		return
	}
	page.AssignmentID = id

	rows, err := h.service.Get(c.Request.Context(), credentials(c), role(snap.User), id)
	if err != nil {
		page.Error = upstreamText(err)
		c.HTML(statusOf(err), "leaderboard.html", page)
		return
	}
	page.Rows = rows
	c.HTML(http.StatusOK, "leaderboard.html", page)
}

// Export godoc
// @Summary Download a leaderboard
// @Tags Leaderboard
// @Produce text/csv
// @Produce application/pdf
// @Param assignmentId path int true "Assignment ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /leaderboard/{assignmentId}/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	snap := middleware.SessionFromContext(c)
	id, err := strconv.ParseInt(c.Param("assignmentId"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment id"))
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format"))
		return
	}
	download, err := h.service.Export(c.Request.Context(), credentials(c), role(snap.User), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, download.Filename, download.ContentType, download.Payload)
}

func role(u *models.User) models.UserRole {
	if u == nil {
		return ""
	}
	return u.Role
}
