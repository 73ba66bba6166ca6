package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

type assignmentStore interface {
	List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error)
	Create(ctx context.Context, creds backend.Credentials, req models.CreateAssignmentRequest) error
	Delete(ctx context.Context, creds backend.Credentials, id int64) error
	SetLeaderboardHidden(ctx context.Context, creds backend.Credentials, id int64, hidden bool) (models.AssignmentPatch, error)
	SetSubmissionsClosed(ctx context.Context, creds backend.Credentials, id int64, closed bool) (models.AssignmentPatch, error)
}

type gradingScriptStore interface {
	Upload(ctx context.Context, creds backend.Credentials, filename string, content io.Reader) (string, error)
}

// AssignmentService manages assignments and the grading script on behalf of admins.
type AssignmentService struct {
	repo      assignmentStore
	scripts   gradingScriptStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService builds an AssignmentService. cache may be nil.
func NewAssignmentService(repo assignmentStore, scripts gradingScriptStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, scripts: scripts, cache: cache, validator: validate, logger: logger}
}

// List returns every assignment.
func (s *AssignmentService) List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error) {
	return s.repo.List(ctx, creds)
}

// Create validates and registers a new assignment.
func (s *AssignmentService) Create(ctx context.Context, creds backend.Credentials, req models.CreateAssignmentRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.repo.Create(ctx, creds, req); err != nil {
		return err
	}
	s.logger.Info("assignment created", zap.String("title", req.Title))
	return nil
}

// Delete removes an assignment and drops its cached leaderboards.
func (s *AssignmentService) Delete(ctx context.Context, creds backend.Credentials, id int64) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid assignment id")
	}
	if err := s.repo.Delete(ctx, creds, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, leaderboardPattern(id))
	s.logger.Info("assignment deleted", zap.Int64("assignment_id", id))
	return nil
}

// SetLeaderboardHidden issues one PATCH and merges the answer into the held row. On
// failure the held row is returned untouched together with the error.
func (s *AssignmentService) SetLeaderboardHidden(ctx context.Context, creds backend.Credentials, held models.Assignment, hidden bool) (models.Assignment, error) {
	patch, err := s.repo.SetLeaderboardHidden(ctx, creds, held.ID, hidden)
	if err != nil {
		return held, err
	}
	s.cache.Invalidate(ctx, leaderboardPattern(held.ID))
	return patch.Apply(held), nil
}

// SetSubmissionsClosed issues one PATCH and merges the answer into the held row.
func (s *AssignmentService) SetSubmissionsClosed(ctx context.Context, creds backend.Credentials, held models.Assignment, closed bool) (models.Assignment, error) {
	patch, err := s.repo.SetSubmissionsClosed(ctx, creds, held.ID, closed)
	if err != nil {
		return held, err
	}
	return patch.Apply(held), nil
}

// UploadGradingScript replaces the grading script with a Python file.
func (s *AssignmentService) UploadGradingScript(ctx context.Context, creds backend.Credentials, filename string, content io.Reader) (string, error) {
	if strings.TrimSpace(filename) == "" || content == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "grading script file is required")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".py") {
		return "", appErrors.Clone(appErrors.ErrValidation, "grading script must be a .py file")
	}
	text, err := s.scripts.Upload(ctx, creds, filepath.Base(filename), content)
	if err != nil {
		return "", err
	}
	s.logger.Info("grading script replaced", zap.String("file", filepath.Base(filename)))
	return text, nil
}

func leaderboardPattern(assignmentID int64) string {
	return fmt.Sprintf("leaderboard:%d:*", assignmentID)
}
