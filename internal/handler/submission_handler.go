package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/poller"
	"github.com/noah-isme/grading-portal/internal/service"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

type submissionService interface {
	ListMine(ctx context.Context, creds backend.Credentials) ([]models.Submission, error)
	Submit(ctx context.Context, creds backend.Credentials, req service.SubmitRequest, content io.Reader) (int64, error)
	Watch(creds backend.Credentials, name string, onUpdate poller.UpdateFunc) *poller.Poller
	AcceptedExtensions() string
	ModelWeightsName() string
}

type assignmentLister interface {
	List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error)
}

type fragmentRenderer interface {
	Fragment(name string, data interface{}) (string, error)
}

type streamObserver interface {
	StreamOpened()
	StreamClosed()
}

// SubmissionHandler serves the submit form, the status page and its live stream.
type SubmissionHandler struct {
	service     submissionService
	assignments assignmentLister
	renderer    fragmentRenderer
	streams     streamObserver
	layout      Layout
	logger      *zap.Logger
}

// NewSubmissionHandler builds the handler. streams may be nil.
func NewSubmissionHandler(svc submissionService, assignments assignmentLister, renderer fragmentRenderer, streams streamObserver, layout Layout, logger *zap.Logger) *SubmissionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionHandler{service: svc, assignments: assignments, renderer: renderer, streams: streams, layout: layout, logger: logger}
}

// SubmitPage renders the upload form.
func (h *SubmissionHandler) SubmitPage(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	page := h.submitPage(c)
	c.HTML(http.StatusOK, "submit.html", page)
}

// Submit forwards an upload and re-renders the form with the outcome. The selected
// assignment is kept either way.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	snap, ok := h.layout.resolved(c)
	if !ok {
		return
	}
	if !snap.Authenticated() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	page := h.submitPage(c)

	assignmentID, err := strconv.ParseInt(c.PostForm("assignmentId"), 10, 64)
	if err == nil {
		page.SelectedAssignment = assignmentID
	}
	header, fileErr := c.FormFile("file")
	if err != nil || fileErr != nil {
		page.Message, page.Failed = view.MsgSubmitFailed, true
		c.HTML(http.StatusBadRequest, "submit.html", page)
		return
	}

	file, err := header.Open()
	if err != nil {
		page.Message, page.Failed = view.MsgSubmitFailed, true
		c.HTML(http.StatusBadRequest, "submit.html", page)
		return
	}
	defer file.Close()

	// A confirmation only covers the file it was given for.
	confirmed, _ := strconv.ParseBool(c.PostForm("confirmed"))
	confirmed = confirmed && c.PostForm("confirmedFile") == header.Filename
	id, err := h.service.Submit(c.Request.Context(), credentials(c), service.SubmitRequest{
		StudentID:    snap.User.ID,
		AssignmentID: assignmentID,
		FileName:     header.Filename,
		Size:         header.Size,
		Confirmed:    confirmed,
	}, file)

	switch {
	case err == nil:
		page.Message = fmt.Sprintf(view.MsgSubmitSuccess, id)
		c.HTML(http.StatusOK, "submit.html", page)
	case errors.Is(err, appErrors.ErrConfirmationRequired):
		page.Message, page.NeedsConfirm = page.WeightsWarning(), true
		page.ConfirmedFile = header.Filename
		c.HTML(http.StatusConflict, "submit.html", page)
	case errors.Is(err, appErrors.ErrValidation):
		page.Message, page.Failed = view.MsgInvalidUpload, true
		c.HTML(http.StatusBadRequest, "submit.html", page)
	default:
		h.logger.Warn("submission failed", zap.Error(err))
		page.Message, page.Failed = view.MsgSubmitFailed, true
		c.HTML(statusOf(err), "submit.html", page)
	}
}

func (h *SubmissionHandler) submitPage(c *gin.Context) view.SubmitPage {
	page := view.SubmitPage{
		Page:        h.layout.page(c, "과제 제출"),
		Accept:      h.service.AcceptedExtensions(),
		WeightsName: h.service.ModelWeightsName(),
	}
	list, err := h.assignments.List(c.Request.Context(), credentials(c))
	if err != nil {
		h.logger.Warn("assignment list unavailable", zap.Error(err))
		page.AssignmentsError = view.MsgLoadFailed
		return page
	}
	page.Assignments = list
	for _, a := range list {
		if !a.SubmissionsClosed {
			page.SelectedAssignment = a.ID
			break
		}
	}
	return page
}

// Status renders the caller's submissions. An expired session is sent to the login page.
func (h *SubmissionHandler) Status(c *gin.Context) {
	if _, ok := h.layout.resolved(c); !ok {
		return
	}
	page := view.SubmissionsPage{Page: h.layout.page(c, "제출 현황"), StreamURL: "/submissions/stream"}
	list, err := h.service.ListMine(c.Request.Context(), credentials(c))
	if err != nil {
		if errors.Is(err, appErrors.ErrUnauthorized) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		page.Error = view.MsgLoadFailed
		c.HTML(statusOf(err), "submissions.html", page)
		return
	}
	page.Submissions = list
	c.HTML(http.StatusOK, "submissions.html", page)
}

// Stream keeps the status table live over Server-Sent Events. Opening the stream starts a
// poller; the client disconnecting stops it. Without a resolved user the answer is 204,
// which tells EventSource not to reconnect.
func (h *SubmissionHandler) Stream(c *gin.Context) {
	if !middleware.SessionFromContext(c).Authenticated() {
		c.Status(http.StatusNoContent)
		return
	}

	updates := make(chan []models.Submission, 1)
	streamID := uuid.NewString()
	p := h.service.Watch(credentials(c), "stream-"+streamID, func(list []models.Submission) {
		offerLatest(updates, list)
	})

	ctx := c.Request.Context()
	p.Start(ctx)
	defer p.Stop()
	if h.streams != nil {
		h.streams.StreamOpened()
		defer h.streams.StreamClosed()
	}
	h.logger.Debug("status stream opened", zap.String("stream_id", streamID))

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case list := <-updates:
			html, err := h.renderer.Fragment("submission_rows", list)
			if err != nil {
				h.logger.Error("render status rows", zap.Error(err))
				return false
			}
			c.SSEvent("submissions", html)
			return true
		}
	})
	h.logger.Debug("status stream closed", zap.String("stream_id", streamID))
}

// offerLatest replaces whatever is buffered with list so a slow client only ever sees the
// newest snapshot.
func offerLatest(ch chan []models.Submission, list []models.Submission) {
	for {
		select {
		case ch <- list:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
