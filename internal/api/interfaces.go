package api

import (
	"context"
)

// HealthChecker reports database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MigrationChecker reports the applied schema version and whether
// migrations are still pending.
type MigrationChecker func(ctx context.Context) (current int64, pending bool, err error)

// ClientCounter reports connected event socket clients.
type ClientCounter interface {
	ClientCount() int
}
