package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

const (
	assignmentsPath      = "/api/assignments"
	adminAssignmentsPath = "/api/admin/assignments"
)

// AssignmentRepository talks to the assignment endpoints.
type AssignmentRepository struct {
	client *backend.Client
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(client *backend.Client) *AssignmentRepository {
	return &AssignmentRepository{client: client}
}

// List returns every assignment.
func (r *AssignmentRepository) List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error) {
	resp, err := r.client.Get(ctx, creds, assignmentsPath)
	if err != nil {
		return nil, translate("list assignments", err)
	}
	var list []models.Assignment
	if err := resp.DecodeData(&list); err != nil {
		return nil, decodeFailed("list assignments", err)
	}
	return list, nil
}

// Create registers a new assignment. The response body is not used.
func (r *AssignmentRepository) Create(ctx context.Context, creds backend.Credentials, req models.CreateAssignmentRequest) error {
	payload := map[string]string{"title": req.Title, "description": req.Description}
	if _, err := r.client.Post(ctx, creds, adminAssignmentsPath, backend.JSON(payload)); err != nil {
		return translate("create assignment", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, creds backend.Credentials, id int64) error {
	if _, err := r.client.Delete(ctx, creds, fmt.Sprintf("%s/%d", adminAssignmentsPath, id)); err != nil {
		return translate("delete assignment", err)
	}
	return nil
}

// SetLeaderboardHidden toggles leaderboard visibility. The backend answers with a bare patch.
func (r *AssignmentRepository) SetLeaderboardHidden(ctx context.Context, creds backend.Credentials, id int64, hidden bool) (models.AssignmentPatch, error) {
	return r.patch(ctx, creds, fmt.Sprintf("%s/%d/leaderboard", adminAssignmentsPath, id), map[string]bool{"hidden": hidden})
}

// SetSubmissionsClosed toggles submission acceptance. The backend answers with a bare patch.
func (r *AssignmentRepository) SetSubmissionsClosed(ctx context.Context, creds backend.Credentials, id int64, closed bool) (models.AssignmentPatch, error) {
	return r.patch(ctx, creds, fmt.Sprintf("%s/%d/submissions", adminAssignmentsPath, id), map[string]bool{"closed": closed})
}

func (r *AssignmentRepository) patch(ctx context.Context, creds backend.Credentials, path string, body map[string]bool) (models.AssignmentPatch, error) {
	resp, err := r.client.Patch(ctx, creds, path, backend.JSON(body))
	if err != nil {
		return models.AssignmentPatch{}, translate("patch assignment", err)
	}
	var patch models.AssignmentPatch
	if len(resp.Body) == 0 {
		return patch, nil
	}
	if err := resp.Decode(&patch); err != nil {
		return models.AssignmentPatch{}, decodeFailed("patch assignment", err)
	}
	return patch, nil
}
