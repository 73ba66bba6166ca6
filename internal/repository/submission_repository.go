package repository

import (
	"context"
	"io"
	"strconv"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

const (
	mySubmissionsPath    = "/api/submissions/me"
	submissionsPath      = "/api/submissions"
	adminSubmissionsPath = "/api/admin/submissions"
)

// SubmissionRepository talks to the submission endpoints.
type SubmissionRepository struct {
	client *backend.Client
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(client *backend.Client) *SubmissionRepository {
	return &SubmissionRepository{client: client}
}

// ListMine returns the caller's submissions.
func (r *SubmissionRepository) ListMine(ctx context.Context, creds backend.Credentials) ([]models.Submission, error) {
	resp, err := r.client.Get(ctx, creds, mySubmissionsPath)
	if err != nil {
		return nil, translate("list my submissions", err)
	}
	var list []models.Submission
	if err := resp.DecodeData(&list); err != nil {
		return nil, decodeFailed("list my submissions", err)
	}
	return list, nil
}

// Create uploads a submission and returns the id the backend assigned to it.
func (r *SubmissionRepository) Create(ctx context.Context, creds backend.Credentials, sub models.NewSubmission, content io.Reader) (int64, error) {
	body := backend.Multipart{
		Fields: []backend.Field{
			{Name: "studentId", Value: strconv.FormatInt(sub.StudentID, 10)},
			{Name: "assignmentId", Value: strconv.FormatInt(sub.AssignmentID, 10)},
		},
		Files: []backend.File{{Field: "file", Name: sub.FileName, Content: content}},
	}
	resp, err := r.client.Post(ctx, creds, submissionsPath, body)
	if err != nil {
		return 0, translate("create submission", err)
	}
	var id int64
	if err := resp.DecodeData(&id); err != nil {
		return 0, decodeFailed("create submission", err)
	}
	return id, nil
}

// ListAll returns every submission with the owning student's identity. Admin only.
func (r *SubmissionRepository) ListAll(ctx context.Context, creds backend.Credentials) ([]models.AdminSubmission, error) {
	resp, err := r.client.Get(ctx, creds, adminSubmissionsPath)
	if err != nil {
		return nil, translate("list all submissions", err)
	}
	var list []models.AdminSubmission
	if err := resp.DecodeData(&list); err != nil {
		return nil, decodeFailed("list all submissions", err)
	}
	return list, nil
}
