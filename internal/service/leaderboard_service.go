package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
	"github.com/noah-isme/grading-portal/pkg/export"
)

type leaderboardStore interface {
	Get(ctx context.Context, creds backend.Credentials, assignmentID int64) ([]models.LeaderboardRow, error)
}

// Download is a rendered export ready to be sent as an attachment.
type Download struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// LeaderboardService reads leaderboards, optionally through the cache.
type LeaderboardService struct {
	repo   leaderboardStore
	cache  *CacheService
	logger *zap.Logger
}

// NewLeaderboardService builds a LeaderboardService. cache may be nil.
func NewLeaderboardService(repo leaderboardStore, cache *CacheService, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{repo: repo, cache: cache, logger: logger}
}

// Get returns the ranked rows of one assignment. Entries are cached per viewer role since
// the backend decides visibility of hidden leaderboards by role.
func (s *LeaderboardService) Get(ctx context.Context, creds backend.Credentials, role models.UserRole, assignmentID int64) ([]models.LeaderboardRow, error) {
	if assignmentID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid assignment id")
	}
	key := fmt.Sprintf("leaderboard:%d:%s", assignmentID, role)
	var rows []models.LeaderboardRow
	if s.cache.Get(ctx, key, &rows) {
		return rows, nil
	}
	rows, err := s.repo.Get(ctx, creds, assignmentID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, rows, 0)
	return rows, nil
}

// Export renders the leaderboard as CSV or PDF.
func (s *LeaderboardService) Export(ctx context.Context, creds backend.Credentials, role models.UserRole, assignmentID int64, format export.Format) (*Download, error) {
	rows, err := s.Get(ctx, creds, role, assignmentID)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   fmt.Sprintf("Leaderboard #%d", assignmentID),
		Columns: []string{"Rank", "Student", "Best score", "Last submitted"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(row.Rank),
			row.StudentName,
			models.FormatBestScore(row.BestScore),
			models.FormatTimestamp(row.LastSubmittedAt),
		})
	}
	return render(table, format, fmt.Sprintf("leaderboard-%d", assignmentID))
}

func render(table export.Table, format export.Format, basename string) (*Download, error) {
	renderer := export.For(format)
	payload, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &Download{
		Filename:    basename + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}
