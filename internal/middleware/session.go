package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/session"
	"github.com/noah-isme/grading-portal/pkg/backend"
)

const (
	// ContextSessionKey is the gin context key storing the resolved session.Snapshot.
	ContextSessionKey = "session"
	// ContextCredentialsKey stores the browser's backend.Credentials.
	ContextCredentialsKey = "backendCredentials"
)

type identityResolver interface {
	Me(ctx context.Context, creds backend.Credentials) (*models.User, error)
}

// Session resolves the caller's identity once per page request. The store is waited on
// for at most timeout; past that the request continues with a loading snapshot.
func Session(resolver identityResolver, timeout time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		creds := backend.CredentialsFromRequest(c.Request)
		store := session.NewStore()
		store.Load(c.Request.Context(), func(ctx context.Context) (*models.User, error) {
			user, err := resolver.Me(ctx, creds)
			if err != nil {
				logger.Debug("identity not resolved", zap.Error(err))
			}
			return user, err
		})

		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		snap := store.Wait(ctx)

		c.Set(ContextCredentialsKey, creds)
		c.Set(ContextSessionKey, snap)
		c.Next()
	}
}

// SessionFromContext returns the snapshot stored by Session, or a loading snapshot.
func SessionFromContext(c *gin.Context) session.Snapshot {
	if v, ok := c.Get(ContextSessionKey); ok {
		if snap, ok := v.(session.Snapshot); ok {
			return snap
		}
	}
	return session.Snapshot{State: session.StateLoading}
}

// CredentialsFromContext returns the credentials stored by Session, falling back to the
// request's own cookies.
func CredentialsFromContext(c *gin.Context) backend.Credentials {
	if v, ok := c.Get(ContextCredentialsKey); ok {
		if creds, ok := v.(backend.Credentials); ok {
			return creds
		}
	}
	return backend.CredentialsFromRequest(c.Request)
}
