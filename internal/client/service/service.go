// Package service maps each inventory API resource onto typed calls over
// the authenticated api.Client. The services only shape requests: they do
// not retry, validate or transform payloads.
package service

import (
	"context"
	"net/http"
)

// Requester is the subset of api.Client the services need.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

func list[T any](ctx context.Context, r Requester, path string) ([]T, error) {
	var out []T
	if err := r.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
