package repository

import (
	"context"
	"io"

	"github.com/noah-isme/grading-portal/pkg/backend"
)

const gradingScriptPath = "/api/admin/grading-script"

// GradingScriptRepository replaces the backend's grading script.
type GradingScriptRepository struct {
	client *backend.Client
}

// NewGradingScriptRepository constructs the repository.
func NewGradingScriptRepository(client *backend.Client) *GradingScriptRepository {
	return &GradingScriptRepository{client: client}
}

// Upload sends the script and returns the backend's plain text confirmation.
func (r *GradingScriptRepository) Upload(ctx context.Context, creds backend.Credentials, filename string, content io.Reader) (string, error) {
	body := backend.Multipart{Files: []backend.File{{Field: "file", Name: filename, Content: content}}}
	resp, err := r.client.Post(ctx, creds, gradingScriptPath, body)
	if err != nil {
		return "", translate("upload grading script", err)
	}
	return resp.Text(), nil
}
