package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/grading-portal/internal/models"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

var guardPaths = []string{"/", "/login", "/submissions", "/leaderboard/3", "/admin", "/admin/assignments", "/login/"}

func TestGuardRedirectsIffUnauthenticatedOffLogin(t *testing.T) {
	outcomes := []struct {
		name string
		user *models.User
		err  error
	}{
		{name: "user", user: &models.User{ID: 1, Name: "Kim", Role: models.RoleUser}},
		{name: "admin", user: &models.User{ID: 2, Role: models.RoleAdmin}},
		{name: "401", err: appErrors.ErrUnauthorized},
		{name: "403", err: appErrors.ErrForbidden},
		{name: "500", err: appErrors.ErrUpstream},
		{name: "network", err: errors.New("dial tcp: refused")},
	}
	guard := NewGuard("/login")

	for _, outcome := range outcomes {
		store := NewStore()
		store.Load(context.Background(), func(context.Context) (*models.User, error) {
			return outcome.user, outcome.err
		})
		snap := store.Wait(context.Background())

		for _, p := range guardPaths {
			decision := guard.Evaluate(p, snap)
			wantRedirect := snap.State == StateUnauthenticated && p != "/login" && p != "/login/"
			assert.Equal(t, wantRedirect, decision.Action == ActionRedirect, "%s %s", outcome.name, p)
			if wantRedirect {
				assert.Equal(t, "/login", decision.Location)
			}
		}
	}
}

func TestGuardNeverRedirectsWhileLoading(t *testing.T) {
	guard := NewGuard("/login")
	loading := NewStore().Snapshot()

	for _, p := range guardPaths {
		assert.Equal(t, ActionNone, guard.Evaluate(p, loading).Action, p)
	}
}

func TestGuardExtraPublicPaths(t *testing.T) {
	guard := NewGuard("/login", "/about")
	anon := Snapshot{State: StateUnauthenticated}

	assert.Equal(t, ActionNone, guard.Evaluate("/about", anon).Action)
	assert.Equal(t, ActionRedirect, guard.Evaluate("/about/team", anon).Action)
	assert.True(t, guard.IsPublic("login"))
	assert.Equal(t, "/login", guard.LoginPath())
}
