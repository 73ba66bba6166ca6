package repository

import (
	"fmt"

	"github.com/noah-isme/grading-portal/pkg/backend"
	appErrors "github.com/noah-isme/grading-portal/pkg/errors"
)

// translate maps a backend failure onto the portal's typed errors. Non-2xx answers keep
// their meaning for 401/403/404; everything else is an upstream failure.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if status, ok := backend.StatusCode(err); ok {
		return appErrors.FromStatus(status, fmt.Errorf("%s: %w", op, err))
	}
	return appErrors.Wrap(fmt.Errorf("%s: %w", op, err), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
}

func decodeFailed(op string, err error) error {
	return appErrors.Wrap(fmt.Errorf("%s: %w", op, err), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected response from grading backend")
}
