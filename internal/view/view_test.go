package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/session"
)

func render(t *testing.T, name string, data interface{}) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Template().ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func authenticated(role models.UserRole) session.Snapshot {
	return session.Snapshot{State: session.StateAuthenticated, User: &models.User{ID: 7, Name: "Kim", Role: role}}
}

func TestLoginHidesNavigation(t *testing.T) {
	html := render(t, "login.html", LoginPage{Page: Page{Path: "/login", LoginURL: "/oauth2/authorization/google"}})
	assert.NotContains(t, html, "<nav>")
	assert.Contains(t, html, "hufs.ac.kr 계정으로 로그인해주세요.")
	assert.Contains(t, html, `href="/oauth2/authorization/google"`)
}

func TestSubmitGreetsUser(t *testing.T) {
	html := render(t, "submit.html", SubmitPage{
		Page:        Page{Path: "/", Session: authenticated(models.RoleUser), LogoutURL: "/api/logout"},
		Accept:      ".zip,.pt",
		WeightsName: "z_best.pt",
		Assignments: []models.Assignment{{ID: 1, Title: "CNN 모델 구현"}, {ID: 2, Title: "RNN", LeaderboardHidden: true, SubmissionsClosed: true}},
	})
	assert.Contains(t, html, "Kim님, 안녕하세요!")
	assert.Contains(t, html, `accept=".zip,.pt"`)
	assert.Contains(t, html, `href="/leaderboard/1"`)
	assert.NotContains(t, html, `href="/leaderboard/2"`)
	assert.Contains(t, html, "(마감)")
	assert.NotContains(t, html, `href="/admin"`)
	assert.Contains(t, html, `href="/api/logout"`)
}

func TestSubmitConfirmationResetsOnFileChange(t *testing.T) {
	html := render(t, "submit.html", SubmitPage{
		Page:        Page{Path: "/", Session: authenticated(models.RoleUser)},
		WeightsName: "z_best.pt",
	})
	assert.Contains(t, html, `name="confirmed" value="false"`)
	assert.Contains(t, html, `name="confirmedFile" value=""`)
	assert.Contains(t, html, "getElementById('file').addEventListener('change'")

	html = render(t, "submit.html", SubmitPage{
		Page:          Page{Path: "/", Session: authenticated(models.RoleUser)},
		WeightsName:   "z_best.pt",
		NeedsConfirm:  true,
		ConfirmedFile: "model.pt",
	})
	assert.Contains(t, html, `name="confirmed" value="true"`)
	assert.Contains(t, html, `name="confirmedFile" value="model.pt"`)
}

func TestAdminLinksOnlyForAdmins(t *testing.T) {
	html := render(t, "submit.html", SubmitPage{Page: Page{Path: "/", Session: authenticated(models.RoleAdmin)}})
	assert.Contains(t, html, `href="/admin"`)
	assert.Contains(t, html, `href="/admin/assignments"`)
}

func TestSubmissionRowsFragment(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	score := 92.0
	html, err := r.Fragment("submission_rows", []models.Submission{
		{ID: 1, SubmissionTime: "2025-03-01T14:05:09", Status: models.StatusCompleted, Score: &score},
		{ID: 2, SubmissionTime: "2025-03-01T14:06:00", Status: models.StatusPending},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "status-COMPLETED")
	assert.Contains(t, html, "<td>92</td>")
	assert.Contains(t, html, "<td>N/A</td>")
	assert.Contains(t, html, "2025. 3. 1. 오후 2:05:09")
}

func TestLeaderboardStates(t *testing.T) {
	page := Page{Path: "/leaderboard/3", Session: authenticated(models.RoleUser)}

	html := render(t, "leaderboard.html", LeaderboardPage{Page: page, AssignmentID: 3, Error: "HTTP 500"})
	assert.Contains(t, html, "오류: HTTP 500")

	html = render(t, "leaderboard.html", LeaderboardPage{Page: page, AssignmentID: 3})
	assert.Contains(t, html, "데이터가 없습니다.")

	html = render(t, "leaderboard.html", LeaderboardPage{Page: page, AssignmentID: 3, Rows: []models.LeaderboardRow{
		{Rank: 1, StudentName: "Kim", BestScore: 92.456, LastSubmittedAt: "2025-03-01T14:05:09"},
	}})
	assert.Contains(t, html, "리더보드 (과제 #3)")
	assert.Contains(t, html, "92.46")
}

func TestAssignmentRowCarriesHeldState(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	html, err := r.Fragment("assignment_row", AssignmentRow{
		Assignment: models.Assignment{ID: 5, Title: "RNN", LeaderboardHidden: true},
		Notice:     MsgLeaderboardToggleFailed,
	})
	require.NoError(t, err)
	assert.Contains(t, html, `id="assignment-5"`)
	assert.Contains(t, html, `name="leaderboardHidden" value="true"`)
	assert.Contains(t, html, `name="hidden" value="false"`)
	assert.Contains(t, html, `name="closed" value="true"`)
	assert.Contains(t, html, "리더보드 열기")
	assert.Contains(t, html, "제출 닫기")
	assert.Contains(t, html, MsgLeaderboardToggleFailed)
	assert.Equal(t, 1, strings.Count(html, "<tr "))
}
