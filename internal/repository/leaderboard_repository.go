package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

// LeaderboardRepository reads ranked rows. Unlike most endpoints the payload is not
// wrapped in a data envelope.
type LeaderboardRepository struct {
	client *backend.Client
}

// NewLeaderboardRepository constructs the repository.
func NewLeaderboardRepository(client *backend.Client) *LeaderboardRepository {
	return &LeaderboardRepository{client: client}
}

// Get returns the leaderboard of one assignment.
func (r *LeaderboardRepository) Get(ctx context.Context, creds backend.Credentials, assignmentID int64) ([]models.LeaderboardRow, error) {
	resp, err := r.client.Get(ctx, creds, fmt.Sprintf("/api/leaderboard/%d", assignmentID))
	if err != nil {
		return nil, translate("get leaderboard", err)
	}
	var rows []models.LeaderboardRow
	if err := resp.Decode(&rows); err != nil {
		return nil, decodeFailed("get leaderboard", err)
	}
	return rows, nil
}
