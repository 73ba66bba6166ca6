package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

type assignmentRepoStub struct {
	list       []models.Assignment
	created    []models.CreateAssignmentRequest
	deleted    []int64
	patch      models.AssignmentPatch
	patchErr   error
	patchCalls []string
}

func (s *assignmentRepoStub) List(ctx context.Context, creds backend.Credentials) ([]models.Assignment, error) {
	return s.list, nil
}

func (s *assignmentRepoStub) Create(ctx context.Context, creds backend.Credentials, req models.CreateAssignmentRequest) error {
	s.created = append(s.created, req)
	return nil
}

func (s *assignmentRepoStub) Delete(ctx context.Context, creds backend.Credentials, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *assignmentRepoStub) SetLeaderboardHidden(ctx context.Context, creds backend.Credentials, id int64, hidden bool) (models.AssignmentPatch, error) {
	s.patchCalls = append(s.patchCalls, "leaderboard")
	return s.patch, s.patchErr
}

func (s *assignmentRepoStub) SetSubmissionsClosed(ctx context.Context, creds backend.Credentials, id int64, closed bool) (models.AssignmentPatch, error) {
	s.patchCalls = append(s.patchCalls, "submissions")
	return s.patch, s.patchErr
}

type scriptRepoStub struct {
	name string
	body string
}

func (s *scriptRepoStub) Upload(ctx context.Context, creds backend.Credentials, filename string, content io.Reader) (string, error) {
	raw, _ := io.ReadAll(content)
	s.name, s.body = filename, string(raw)
	return "채점 스크립트가 업데이트되었습니다.", nil
}

type cacheRepoStub struct {
	patterns []string
	entries  map[string]interface{}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if v, ok := c.entries[key]; ok {
		if rows, ok := dest.(*[]models.LeaderboardRow); ok {
			*rows = v.([]models.LeaderboardRow)
			return nil
		}
	}
	return appErrors.ErrCacheMiss
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = map[string]interface{}{}
	}
	c.entries[key] = value
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	return nil
}

func TestAssignmentServiceCreateValidates(t *testing.T) {
	repo := &assignmentRepoStub{}
	svc := NewAssignmentService(repo, &scriptRepoStub{}, nil, nil, nil)

	err := svc.Create(context.Background(), backend.Credentials{}, models.CreateAssignmentRequest{Title: "  ", Description: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.created)

	require.NoError(t, svc.Create(context.Background(), backend.Credentials{}, models.CreateAssignmentRequest{Title: " CNN ", Description: "build it"}))
	assert.Equal(t, []models.CreateAssignmentRequest{{Title: "CNN", Description: "build it"}}, repo.created)
}

func TestAssignmentServiceToggleMergesPatchIntoHeldRow(t *testing.T) {
	hidden := true
	repo := &assignmentRepoStub{patch: models.AssignmentPatch{LeaderboardHidden: &hidden}}
	cacheRepo := &cacheRepoStub{}
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	svc := NewAssignmentService(repo, &scriptRepoStub{}, cache, nil, nil)

	held := models.Assignment{ID: 5, Title: "RNN", Description: "seq", SubmissionsClosed: true}
	row, err := svc.SetLeaderboardHidden(context.Background(), backend.Credentials{}, held, true)
	require.NoError(t, err)
	assert.True(t, row.LeaderboardHidden)
	assert.True(t, row.SubmissionsClosed)
	assert.Equal(t, "RNN", row.Title)
	assert.Equal(t, []string{"leaderboard"}, repo.patchCalls)
	assert.Equal(t, []string{"leaderboard:5:*"}, cacheRepo.patterns)
}

func TestAssignmentServiceToggleFailureKeepsHeldRow(t *testing.T) {
	repo := &assignmentRepoStub{patchErr: appErrors.ErrUpstream}
	svc := NewAssignmentService(repo, &scriptRepoStub{}, nil, nil, nil)

	held := models.Assignment{ID: 5, Title: "RNN"}
	row, err := svc.SetSubmissionsClosed(context.Background(), backend.Credentials{}, held, true)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
	assert.Equal(t, held, row)
	assert.Len(t, repo.patchCalls, 1, "no retry")
}

func TestAssignmentServiceDeleteInvalidatesLeaderboard(t *testing.T) {
	repo := &assignmentRepoStub{}
	cacheRepo := &cacheRepoStub{}
	svc := NewAssignmentService(repo, &scriptRepoStub{}, NewCacheService(cacheRepo, nil, 0, nil, true), nil, nil)

	require.NoError(t, svc.Delete(context.Background(), backend.Credentials{}, 4))
	assert.Equal(t, []int64{4}, repo.deleted)
	assert.Equal(t, []string{"leaderboard:4:*"}, cacheRepo.patterns)

	assert.True(t, errors.Is(svc.Delete(context.Background(), backend.Credentials{}, 0), appErrors.ErrValidation))
}

func TestAssignmentServiceGradingScriptRequiresPython(t *testing.T) {
	scripts := &scriptRepoStub{}
	svc := NewAssignmentService(&assignmentRepoStub{}, scripts, nil, nil, nil)

	_, err := svc.UploadGradingScript(context.Background(), backend.Credentials{}, "grade.sh", strings.NewReader("echo"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	text, err := svc.UploadGradingScript(context.Background(), backend.Credentials{}, "grade.py", strings.NewReader("print(1)"))
	require.NoError(t, err)
	assert.Equal(t, "채점 스크립트가 업데이트되었습니다.", text)
	assert.Equal(t, "grade.py", scripts.name)
	assert.Equal(t, "print(1)", scripts.body)
}
