package apps

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a task or application no longer maps to an installed application
	ErrNotFound = errors.New("application not found")

	// ErrInvalidArgument marks precondition failures raised before any platform query runs
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidArgument wraps ErrInvalidArgument with a description of the offending parameter
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// IsInvalidArgument reports whether err is a precondition failure
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// TaskSource exposes the platform's running tasks in recency order
type TaskSource interface {
	// RunningTasks returns up to limit tasks, most recently active first
	RunningTasks(ctx context.Context, limit int) ([]TaskRef, error)

	// ResolveTask returns the application owning the task, or ErrNotFound
	ResolveTask(ctx context.Context, task TaskRef) (AppID, error)
}

// UsageSource reports per-application last-used timestamps
type UsageSource interface {
	UsageStats(ctx context.Context, start, end time.Time) ([]UsageRecord, error)
}

// EventLogSource replays the foreground-event log in chronological order
type EventLogSource interface {
	ForegroundEvents(ctx context.Context, start, end time.Time) ([]ForegroundEvent, error)
}

// Catalog enumerates the applications currently installed on the host
type Catalog interface {
	InstalledApps(ctx context.Context) (map[AppID]struct{}, error)
}
