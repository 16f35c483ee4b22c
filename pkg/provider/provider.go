// Package provider turns raw platform activity signals into ordered,
// deduplicated most-recently-used application lists.
package provider

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/pkg/apps"
)

// Window is the trailing interval queried by the usage and event-log strategies
const Window = time.Hour

// Provider resolves the most recently used applications
type Provider interface {
	// RecentApps returns at most limit applications, most recent first.
	// An empty source yields an empty list, not an error.
	RecentApps(ctx context.Context, limit int) (apps.AppList, error)

	// Name identifies the strategy ("event-log", "usage-window", "running-tasks")
	Name() string
}

// Option configures a strategy
type Option func(*options)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

func defaultOptions() options {
	return options{
		now:    time.Now,
		logger: zerolog.Nop(),
	}
}

// WithClock replaces time.Now as the end of the trailing window
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used to report dropped entries
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func checkLimit(limit int) error {
	if limit < 0 {
		return apps.InvalidArgument("limit must not be negative, got %d", limit)
	}
	return nil
}

// dedupe keeps the first occurrence of every application and stops at limit
func dedupe(in []apps.AppID, limit int) apps.AppList {
	out := make(apps.AppList, 0, min(len(in), limit))
	seen := make(map[apps.AppID]struct{}, len(in))
	for _, app := range in {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[app]; ok {
			continue
		}
		seen[app] = struct{}{}
		out = append(out, app)
	}
	return out
}
