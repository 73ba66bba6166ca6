package service

import (
	"context"
	"strconv"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
	"github.com/noah-isme/grading-portal/pkg/export"
)

type adminSubmissionStore interface {
	ListAll(ctx context.Context, creds backend.Credentials) ([]models.AdminSubmission, error)
}

// AdminService serves the admin submission overview.
type AdminService struct {
	repo adminSubmissionStore
}

// NewAdminService builds an AdminService.
func NewAdminService(repo adminSubmissionStore) *AdminService {
	return &AdminService{repo: repo}
}

// Submissions lists every submission with the student's identity.
func (s *AdminService) Submissions(ctx context.Context, creds backend.Credentials) ([]models.AdminSubmission, error) {
	return s.repo.ListAll(ctx, creds)
}

// ExportSubmissions renders the overview as CSV or PDF.
func (s *AdminService) ExportSubmissions(ctx context.Context, creds backend.Credentials, format export.Format) (*Download, error) {
	list, err := s.repo.ListAll(ctx, creds)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   "All submissions",
		Columns: []string{"ID", "Student", "Email", "Assignment", "Submitted", "Status", "Score"},
	}
	for _, sub := range list {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(sub.ID, 10),
			sub.StudentName,
			sub.StudentEmail,
			strconv.FormatInt(sub.AssignmentID, 10),
			models.FormatTimestamp(sub.SubmissionTime),
			string(sub.Status),
			models.FormatScore(sub.Score),
		})
	}
	return render(table, format, "submissions")
}
