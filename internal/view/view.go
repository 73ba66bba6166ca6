// Package view holds the portal's embedded HTML templates and the data each page renders.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/session"
)

//go:embed templates/*.html
var files embed.FS

// Renderer owns the parsed template set.
type Renderer struct {
	tmpl *template.Template
}

// New parses every embedded template.
func New() (*Renderer, error) {
	tmpl, err := template.New("portal").Funcs(Funcs()).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Template exposes the set for gin's SetHTMLTemplate.
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// Fragment renders one named template to a string, used for streamed partials.
func (r *Renderer) Fragment(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatTime":  models.FormatTimestamp,
		"score":       models.FormatScore,
		"bestScore":   models.FormatBestScore,
		"statusClass": func(s models.SubmissionStatus) string { return "status status-" + string(s) },
		"lower":       strings.ToLower,
		"deletePrompt": func(title string) string {
			return fmt.Sprintf(MsgDeleteConfirm, title)
		},
	}
}

// Page is the layout data shared by every page.
type Page struct {
	Title     string
	Path      string
	Session   session.Snapshot
	LoginURL  string
	LogoutURL string
}

// ShowNav hides the navigation header on the login page.
func (p Page) ShowNav() bool {
	return p.Path != "/login"
}

type LoginPage struct {
	Page
}

// SubmitPage is the student upload form.
type SubmitPage struct {
	Page
	Assignments        []models.Assignment
	AssignmentsError   string
	SelectedAssignment int64
	Accept             string
	WeightsName        string
	Message            string
	Failed             bool
	NeedsConfirm       bool
	ConfirmedFile      string
}

// Greeting is the personalised header line.
func (p SubmitPage) Greeting() string {
	if p.Session.User == nil {
		return ""
	}
	return fmt.Sprintf(MsgGreeting, p.Session.User.Name)
}

// WeightsWarning is the confirmation prompt for misnamed model weights.
func (p SubmitPage) WeightsWarning() string {
	return fmt.Sprintf(MsgWeightsWarning, p.WeightsName)
}

type SubmissionsPage struct {
	Page
	Submissions []models.Submission
	Error       string
	StreamURL   string
}

type LeaderboardPage struct {
	Page
	AssignmentID int64
	Rows         []models.LeaderboardRow
	Error        string
}

type AdminPage struct {
	Page
	Submissions []models.AdminSubmission
	Error       string
}

// AssignmentRow is one row of the admin assignment table. Notice carries a toggle failure.
type AssignmentRow struct {
	models.Assignment
	Notice string
}

type AssignmentsPage struct {
	Page
	Rows          []AssignmentRow
	Error         string
	Message       string
	Form          models.CreateAssignmentRequest
	ScriptMessage string
}

// Rows wraps assignments for the admin table.
func Rows(list []models.Assignment) []AssignmentRow {
	rows := make([]AssignmentRow, len(list))
	for i, a := range list {
		rows[i] = AssignmentRow{Assignment: a}
	}
	return rows
}

type LoadingPage struct {
	Page
}
