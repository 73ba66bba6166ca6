package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

type assignmentService interface {
	List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error)
	Create(ctx context.Context, creds backend.Credentials, req models.CreateAssignmentRequest) error
	Delete(ctx context.Context, creds backend.Credentials, id int64) error
	SetLeaderboardHidden(ctx context.Context, creds backend.Credentials, held models.Assignment, hidden bool) (models.Assignment, error)
	SetSubmissionsClosed(ctx context.Context, creds backend.Credentials, held models.Assignment, closed bool) (models.Assignment, error)
	UploadGradingScript(ctx context.Context, creds backend.Credentials, filename string, content io.Reader) (string, error)
}

// AssignmentHandler serves the admin assignment management page.
type AssignmentHandler struct {
	service assignmentService
	layout  Layout
	logger  *zap.Logger
}

// NewAssignmentHandler builds the handler.
func NewAssignmentHandler(svc assignmentService, layout Layout, logger *zap.Logger) *AssignmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentHandler{service: svc, layout: layout, logger: logger}
}

// Page renders the assignment table with the create and grading script forms.
func (h *AssignmentHandler) Page(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	h.render(c, http.StatusOK, view.AssignmentsPage{})
}

// Create registers an assignment. On failure the typed input is kept.
func (h *AssignmentHandler) Create(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	var req models.CreateAssignmentRequest
	bindErr := c.ShouldBind(&req)
	if bindErr == nil {
		bindErr = h.service.Create(c.Request.Context(), credentials(c), req)
	}
	if bindErr != nil {
		h.logger.Warn("create assignment failed", zap.Error(bindErr))
		h.render(c, statusOf(bindErr), view.AssignmentsPage{Message: view.MsgCreateFailed, Form: req})
		return
	}
	h.render(c, http.StatusOK, view.AssignmentsPage{Message: view.MsgCreateSuccess})
}

// Delete removes an assignment after the browser-side confirmation.
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil {
		err = h.service.Delete(c.Request.Context(), credentials(c), id)
	}
	if err != nil {
		h.logger.Warn("delete assignment failed", zap.String("id", c.Param("id")), zap.Error(err))
		h.render(c, http.StatusOK, view.AssignmentsPage{Message: view.MsgDeleteFailed})
		return
	}
	h.render(c, http.StatusOK, view.AssignmentsPage{Message: view.MsgDeleteSuccess})
}

// ToggleLeaderboard flips leaderboard visibility of one assignment.
func (h *AssignmentHandler) ToggleLeaderboard(c *gin.Context) {
	h.toggle(c, "hidden", view.MsgLeaderboardToggleFailed, h.service.SetLeaderboardHidden)
}

// ToggleSubmissions flips submission acceptance of one assignment.
func (h *AssignmentHandler) ToggleSubmissions(c *gin.Context) {
	h.toggle(c, "closed", view.MsgSubmissionsToggleFailed, h.service.SetSubmissionsClosed)
}

type toggleFunc func(ctx context.Context, creds backend.Credentials, held models.Assignment, value bool) (models.Assignment, error)

// toggle sends one PATCH for the held row posted with the form and re-renders only that
// row. Failures leave the held row as it was and attach a notice to it.
func (h *AssignmentHandler) toggle(c *gin.Context, field, failure string, apply toggleFunc) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	var held models.Assignment
	id, idErr := strconv.ParseInt(c.Param("id"), 10, 64)
	desired, valueErr := strconv.ParseBool(c.PostForm(field))
	if err := c.ShouldBind(&held); err != nil || idErr != nil || valueErr != nil {
		h.renderRow(c, view.AssignmentRow{Assignment: held, Notice: failure})
		return
	}
	held.ID = id

	row, err := apply(c.Request.Context(), credentials(c), held, desired)
	if err != nil {
		h.logger.Warn("assignment toggle failed", zap.Int64("assignment_id", id), zap.String("field", field), zap.Error(err))
		h.renderRow(c, view.AssignmentRow{Assignment: held, Notice: failure})
		return
	}
	h.renderRow(c, view.AssignmentRow{Assignment: row})
}

// renderRow answers htmx with the single row. Plain form posts get the whole page, with
// a failure notice as the page message.
func (h *AssignmentHandler) renderRow(c *gin.Context, row view.AssignmentRow) {
	if middleware.IsHTMX(c) {
		c.HTML(http.StatusOK, "assignment_row", row)
		return
	}
	if row.Notice != "" {
		h.render(c, http.StatusOK, view.AssignmentsPage{Message: row.Notice})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/assignments")
}

// GradingScript replaces the backend's grading script.
func (h *AssignmentHandler) GradingScript(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.render(c, http.StatusBadRequest, view.AssignmentsPage{ScriptMessage: view.MsgScriptRequired})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.render(c, http.StatusBadRequest, view.AssignmentsPage{ScriptMessage: view.MsgScriptRequired})
		return
	}
	defer file.Close()

	text, err := h.service.UploadGradingScript(c.Request.Context(), credentials(c), header.Filename, file)
	if err != nil {
		h.logger.Warn("grading script upload failed", zap.Error(err))
		h.render(c, statusOf(err), view.AssignmentsPage{ScriptMessage: view.MsgScriptFailedPrefix + failureText(err)})
		return
	}
	h.render(c, http.StatusOK, view.AssignmentsPage{ScriptMessage: view.MsgScriptSuccessPrefix + text})
}

// render fills the shared layout and the current assignment list into page.
func (h *AssignmentHandler) render(c *gin.Context, status int, page view.AssignmentsPage) {
	page.Page = h.layout.page(c, "과제 관리")
	list, err := h.service.List(c.Request.Context(), credentials(c))
	if err != nil {
		page.Error = adminLoadError(err)
		if status == http.StatusOK {
			status = statusOf(err)
		}
	} else {
		page.Rows = view.Rows(list)
	}
	c.HTML(status, "admin_assignments.html", page)
}

// failureText prefers the backend's own error body, as the upload form always did.
func failureText(err error) string {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		if text := statusErr.Text(); text != "" {
			return text
		}
	}
	return upstreamText(err)
}
