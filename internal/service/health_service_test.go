package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-portal/pkg/backend"
)

type proberStub struct {
	resp *backend.Response
	err  error
	path string
}

func (p *proberStub) Get(ctx context.Context, creds backend.Credentials, path string) (*backend.Response, error) {
	p.path = path
	return p.resp, p.err
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(ctx context.Context) error { return p.err }

func TestHealthServiceReadyWhenBackendUp(t *testing.T) {
	prober := &proberStub{resp: &backend.Response{StatusCode: http.StatusOK}}
	report := NewHealthService(prober, "/actuator/health", nil, time.Second).Ready(context.Background())

	assert.True(t, report.Ready)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, http.StatusOK, report.Checks[0].StatusCode)
	assert.Equal(t, "/actuator/health", prober.path)
}

func TestHealthServiceClientErrorStillCountsAsReachable(t *testing.T) {
	prober := &proberStub{err: &backend.StatusError{StatusCode: http.StatusUnauthorized}}
	report := NewHealthService(prober, "", nil, time.Second).Ready(context.Background())
	assert.True(t, report.Ready)
}

func TestHealthServiceNotReady(t *testing.T) {
	t.Run("backend 5xx", func(t *testing.T) {
		prober := &proberStub{err: &backend.StatusError{StatusCode: http.StatusServiceUnavailable}}
		report := NewHealthService(prober, "", nil, time.Second).Ready(context.Background())
		assert.False(t, report.Ready)
		assert.Equal(t, "received status 503", report.Checks[0].Error)
	})

	t.Run("backend unreachable", func(t *testing.T) {
		prober := &proberStub{err: errors.New("connection refused")}
		report := NewHealthService(prober, "", nil, time.Second).Ready(context.Background())
		assert.False(t, report.Ready)
	})

	t.Run("cache down", func(t *testing.T) {
		prober := &proberStub{resp: &backend.Response{StatusCode: http.StatusOK}}
		report := NewHealthService(prober, "", pingerStub{err: errors.New("redis down")}, time.Second).Ready(context.Background())
		assert.False(t, report.Ready)
		require.Len(t, report.Checks, 2)
		assert.Equal(t, "cache", report.Checks[1].Target)
	})
}
