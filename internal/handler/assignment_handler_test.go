package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

type assignmentSvcStub struct {
	list      []models.Assignment
	listErr   error
	createErr error
	created   models.CreateAssignmentRequest
	deleteErr error
	deleted   int64
	toggleErr error
	held      models.Assignment
	desired   bool
	toggles   int
	script    string
	scriptErr error
	scriptRaw string
}

func (s *assignmentSvcStub) List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error) {
	return s.list, s.listErr
}

func (s *assignmentSvcStub) Create(ctx context.Context, creds backend.Credentials, req models.CreateAssignmentRequest) error {
	s.created = req
	return s.createErr
}

func (s *assignmentSvcStub) Delete(ctx context.Context, creds backend.Credentials, id int64) error {
	s.deleted = id
	return s.deleteErr
}

func (s *assignmentSvcStub) SetLeaderboardHidden(ctx context.Context, creds backend.Credentials, held models.Assignment, hidden bool) (models.Assignment, error) {
	s.held, s.desired = held, hidden
	s.toggles++
	if s.toggleErr != nil {
		return held, s.toggleErr
	}
	held.LeaderboardHidden = hidden
	return held, nil
}

func (s *assignmentSvcStub) SetSubmissionsClosed(ctx context.Context, creds backend.Credentials, held models.Assignment, closed bool) (models.Assignment, error) {
	s.held, s.desired = held, closed
	s.toggles++
	if s.toggleErr != nil {
		return held, s.toggleErr
	}
	held.SubmissionsClosed = closed
	return held, nil
}

func (s *assignmentSvcStub) UploadGradingScript(ctx context.Context, creds backend.Credentials, filename string, content io.Reader) (string, error) {
	raw, _ := io.ReadAll(content)
	s.scriptRaw = string(raw)
	return s.script, s.scriptErr
}

func newAssignmentEngine(t *testing.T, svc *assignmentSvcStub) http.Handler {
	t.Helper()
	r := newEngine(t, signedIn(admin))
	h := NewAssignmentHandler(svc, testLayout, nil)
	r.GET("/admin/assignments", h.Page)
	r.POST("/admin/assignments", h.Create)
	r.POST("/admin/assignments/:id/delete", h.Delete)
	r.DELETE("/admin/assignments/:id", h.Delete)
	r.POST("/admin/assignments/:id/leaderboard", h.ToggleLeaderboard)
	r.POST("/admin/assignments/:id/submissions", h.ToggleSubmissions)
	r.POST("/admin/grading-script", h.GradingScript)
	return r
}

func postForm(r http.Handler, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set(middleware.HeaderHXRequest, "true")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func heldForm(a models.Assignment) url.Values {
	return url.Values{
		"id":                {"5"},
		"title":             {a.Title},
		"description":       {a.Description},
		"createdAt":         {a.CreatedAt},
		"leaderboardHidden": {"false"},
		"submissionsClosed": {"false"},
	}
}

var fifth = models.Assignment{ID: 5, Title: "Object Detection", Description: "YOLO", CreatedAt: "2025-03-01T09:00:00"}

func TestAssignmentsPageListsRows(t *testing.T) {
	svc := &assignmentSvcStub{list: []models.Assignment{{ID: 4, Title: "MNIST"}, fifth}}
	r := newAssignmentEngine(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/assignments", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="assignment-4"`)
	assert.Contains(t, w.Body.String(), `id="assignment-5"`)
}

func TestAssignmentsPageForbidden(t *testing.T) {
	svc := &assignmentSvcStub{listErr: appErrors.ErrForbidden}
	r := newAssignmentEngine(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/assignments", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgForbidden)
}

func TestToggleLeaderboardRerendersOnlyThatRow(t *testing.T) {
	svc := &assignmentSvcStub{list: []models.Assignment{{ID: 4, Title: "MNIST"}, fifth}}
	r := newAssignmentEngine(t, svc)

	form := heldForm(fifth)
	form.Set("hidden", "true")
	w := postForm(r, "/admin/assignments/5/leaderboard", form, true)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<tr id="assignment-5">`)
	assert.Contains(t, body, "리더보드 열기")
	assert.NotContains(t, body, "assignment-4")
	assert.NotContains(t, body, "<html")

	assert.Equal(t, 1, svc.toggles)
	assert.True(t, svc.desired)
	assert.Equal(t, fifth, svc.held)
}

func TestToggleSubmissionsFailureKeepsHeldRow(t *testing.T) {
	svc := &assignmentSvcStub{toggleErr: appErrors.ErrUpstream}
	r := newAssignmentEngine(t, svc)

	form := heldForm(fifth)
	form.Set("closed", "true")
	w := postForm(r, "/admin/assignments/5/submissions", form, true)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, view.MsgSubmissionsToggleFailed)
	assert.Contains(t, body, "제출 닫기")
	assert.Contains(t, body, `name="submissionsClosed" value="false"`)
}

func TestToggleWithoutHTMXRedirects(t *testing.T) {
	svc := &assignmentSvcStub{}
	r := newAssignmentEngine(t, svc)

	form := heldForm(fifth)
	form.Set("hidden", "true")
	w := postForm(r, "/admin/assignments/5/leaderboard", form, false)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/assignments", w.Header().Get("Location"))
}

func TestToggleRejectsMissingValue(t *testing.T) {
	svc := &assignmentSvcStub{}
	r := newAssignmentEngine(t, svc)

	w := postForm(r, "/admin/assignments/5/leaderboard", heldForm(fifth), true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgLeaderboardToggleFailed)
	assert.Zero(t, svc.toggles)
}

func TestCreateAssignment(t *testing.T) {
	svc := &assignmentSvcStub{}
	r := newAssignmentEngine(t, svc)

	w := postForm(r, "/admin/assignments", url.Values{"title": {"MNIST"}, "description": {"digits"}}, false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgCreateSuccess)
	assert.Equal(t, models.CreateAssignmentRequest{Title: "MNIST", Description: "digits"}, svc.created)
}

func TestCreateAssignmentFailureKeepsInput(t *testing.T) {
	svc := &assignmentSvcStub{createErr: appErrors.ErrValidation}
	r := newAssignmentEngine(t, svc)

	w := postForm(r, "/admin/assignments", url.Values{"title": {"MNIST"}, "description": {"digits"}}, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgCreateFailed)
	assert.Contains(t, w.Body.String(), `value="MNIST"`)
	assert.Contains(t, w.Body.String(), ">digits</textarea>")
}

func TestDeleteAssignment(t *testing.T) {
	svc := &assignmentSvcStub{}
	r := newAssignmentEngine(t, svc)

	w := postForm(r, "/admin/assignments/5/delete", url.Values{}, false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgDeleteSuccess)
	assert.Equal(t, int64(5), svc.deleted)
}

func TestDeleteAssignmentFailure(t *testing.T) {
	svc := &assignmentSvcStub{deleteErr: appErrors.ErrUpstream}
	r := newAssignmentEngine(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/admin/assignments/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), view.MsgDeleteFailed)
}

func TestGradingScriptUpload(t *testing.T) {
	svc := &assignmentSvcStub{script: "script updated"}
	r := newAssignmentEngine(t, svc)

	body, contentType := multipartForm(t, nil, "grader.py", []byte("print(1)"))
	req := httptest.NewRequest(http.MethodPost, "/admin/grading-script", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "✅ script updated")
	assert.Equal(t, "print(1)", svc.scriptRaw)
}

func TestGradingScriptFailureShowsBackendText(t *testing.T) {
	svc := &assignmentSvcStub{scriptErr: &backend.StatusError{Method: http.MethodPost, Path: "/api/admin/grading-script", StatusCode: http.StatusInternalServerError, Body: []byte("disk full")}}
	r := newAssignmentEngine(t, svc)

	body, contentType := multipartForm(t, nil, "grader.py", []byte("print(1)"))
	req := httptest.NewRequest(http.MethodPost, "/admin/grading-script", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "❌ 업로드 실패: disk full")
}

func TestGradingScriptRequiresFile(t *testing.T) {
	svc := &assignmentSvcStub{}
	r := newAssignmentEngine(t, svc)

	body, contentType := multipartForm(t, nil, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/grading-script", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), view.MsgScriptRequired)
}
