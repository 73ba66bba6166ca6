package repository

import (
	"context"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

const userMePath = "/api/user/me"

// UserRepository resolves the caller's identity.
type UserRepository struct {
	client *backend.Client
}

// NewUserRepository constructs the repository.
func NewUserRepository(client *backend.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Me returns the user behind the session cookie.
func (r *UserRepository) Me(ctx context.Context, creds backend.Credentials) (*models.User, error) {
	resp, err := r.client.Get(ctx, creds, userMePath)
	if err != nil {
		return nil, translate("get current user", err)
	}
	var user models.User
	if err := resp.DecodeData(&user); err != nil {
		return nil, decodeFailed("get current user", err)
	}
	return &user, nil
}
