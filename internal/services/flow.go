package services

import (
	"context"
	"errors"
	"time"

	"shopfront/internal/domain"
)

var ErrInFlight = errors.New("request already in progress")

// FlowStore records the lifecycle of orchestrated requests. Begin is the
// in-flight guard: it reports false while another request for key is still
// Processing and younger than ttl.
type FlowStore interface {
	Begin(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Finish(ctx context.Context, key string, l domain.Lifecycle) error
	Get(ctx context.Context, key string) (domain.Lifecycle, error)
}

// Navigator schedules a transition to path after delay. The caller that owns
// the view also owns the pending transition and drops it if that view goes
// away first.
type Navigator interface {
	NavigateAfter(delay time.Duration, path string)
}

// FlowOptions are shared by the purchase and offer orchestrators.
type FlowOptions struct {
	NavDelay    time.Duration
	ProfilePath string
	InFlightTTL time.Duration
}

func flowKey(kind, sessionID, productID string) string {
	return kind + ":" + sessionID + ":" + productID
}
