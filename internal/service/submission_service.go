package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/poller"
	"github.com/noah-isme/grading-portal/pkg/backend"
	"github.com/noah-isme/grading-portal/pkg/config"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

type submissionStore interface {
	ListMine(ctx context.Context, creds backend.Credentials) ([]models.Submission, error)
	Create(ctx context.Context, creds backend.Credentials, sub models.NewSubmission, content io.Reader) (int64, error)
}

// SubmitRequest is a student upload as received from the submit form.
type SubmitRequest struct {
	StudentID    int64  `validate:"required,gt=0"`
	AssignmentID int64  `validate:"required,gt=0"`
	FileName     string `validate:"required"`
	Size         int64  `validate:"gte=0"`
	Confirmed    bool
}

// SubmissionService handles student uploads and the live status list.
type SubmissionService struct {
	repo         submissionStore
	uploads      config.UploadConfig
	pollInterval time.Duration
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSubmissionService builds a SubmissionService with sane defaults.
func NewSubmissionService(repo submissionStore, uploads config.UploadConfig, pollInterval time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(uploads.AllowedExtensions) == 0 {
		uploads.AllowedExtensions = []string{".zip", ".pt"}
	}
	if uploads.ModelWeightsName == "" {
		uploads.ModelWeightsName = "z_best.pt"
	}
	return &SubmissionService{
		repo:         repo,
		uploads:      uploads,
		pollInterval: pollInterval,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// AcceptedExtensions returns the file input accept list, e.g. ".zip,.pt".
func (s *SubmissionService) AcceptedExtensions() string {
	return strings.Join(s.uploads.AllowedExtensions, ",")
}

// ModelWeightsName is the file name model weight uploads are expected to carry.
func (s *SubmissionService) ModelWeightsName() string {
	return s.uploads.ModelWeightsName
}

// ListMine returns the caller's submissions.
func (s *SubmissionService) ListMine(ctx context.Context, creds backend.Credentials) ([]models.Submission, error) {
	return s.repo.ListMine(ctx, creds)
}

// NeedsConfirmation reports whether the file is model weights under an unexpected name.
func (s *SubmissionService) NeedsConfirmation(fileName string) bool {
	base := filepath.Base(fileName)
	return strings.EqualFold(filepath.Ext(base), ".pt") && base != s.uploads.ModelWeightsName
}

// Submit validates the upload and forwards it. A misnamed weights file is not rejected,
// but must be confirmed first: an unconfirmed one yields ErrConfirmationRequired.
func (s *SubmissionService) Submit(ctx context.Context, creds backend.Credentials, req SubmitRequest, content io.Reader) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission")
	}
	if !s.allowed(req.FileName) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "unsupported file type")
	}
	if s.uploads.MaxBytes > 0 && req.Size > s.uploads.MaxBytes {
		return 0, appErrors.Clone(appErrors.ErrValidation, "file too large")
	}
	if s.NeedsConfirmation(req.FileName) && !req.Confirmed {
		return 0, appErrors.ErrConfirmationRequired
	}

	id, err := s.repo.Create(ctx, creds, models.NewSubmission{
		StudentID:    req.StudentID,
		AssignmentID: req.AssignmentID,
		FileName:     filepath.Base(req.FileName),
	}, content)
	if err != nil {
		s.logger.Warn("submission upload failed", zap.Int64("assignment_id", req.AssignmentID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("submission created", zap.Int64("submission_id", id), zap.Int64("assignment_id", req.AssignmentID))
	return id, nil
}

// Watch builds a status poller for the caller's submissions. The caller owns Start/Stop.
func (s *SubmissionService) Watch(creds backend.Credentials, name string, onUpdate poller.UpdateFunc) *poller.Poller {
	fetch := func(ctx context.Context) ([]models.Submission, error) {
		return s.repo.ListMine(ctx, creds)
	}
	cfg := poller.Config{Name: name, Interval: s.pollInterval, Logger: s.logger}
	if s.metrics != nil {
		cfg.Observer = s.metrics
	}
	return poller.New(fetch, onUpdate, cfg)
}

func (s *SubmissionService) allowed(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, candidate := range s.uploads.AllowedExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
