// Package recentapps answers which applications were most recently brought
// to the foreground, either once or as a live, deduplicated stream.
package recentapps

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/pkg/apps"
	"github.com/actionsum/recentapps/pkg/provider"
)

const (
	// DefaultLimit is the list length used when the caller does not pick one
	DefaultLimit = 10

	// DefaultPeriod is the resampling period used when the caller does not pick one
	DefaultPeriod = time.Second
)

// Client is the one-shot query surface over a single bound provider
type Client struct {
	provider provider.Provider
	logger   zerolog.Logger
	recorder Recorder
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used by the client and its observers
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRecorder sets the metrics hook used by the client and its observers
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New creates a client around a caller-supplied provider
func New(p provider.Provider, opts ...Option) (*Client, error) {
	if p == nil {
		return nil, apps.InvalidArgument("provider is required")
	}

	c := newClient(opts)
	c.provider = p
	return c, nil
}

// NewForHost selects the strategy matching the host's capability and binds
// the client to it for its whole lifetime
func NewForHost(host provider.Host, opts ...Option) (*Client, error) {
	c := newClient(opts)

	p, err := provider.Select(host, provider.WithLogger(c.logger))
	if err != nil {
		return nil, errors.Wrap(err, "failed to select recent apps provider")
	}
	c.provider = p

	c.logger.Info().Str("strategy", p.Name()).Msg("Recent apps provider selected")
	return c, nil
}

func newClient(opts []Option) *Client {
	c := &Client{
		logger:   zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strategy returns the name of the bound provider
func (c *Client) Strategy() string {
	return c.provider.Name()
}

// RecentApps returns up to limit applications, most recently used first
func (c *Client) RecentApps(ctx context.Context, limit int) (apps.AppList, error) {
	if limit < 0 {
		return nil, apps.InvalidArgument("limit must not be negative, got %d", limit)
	}

	start := time.Now()
	list, err := c.provider.RecentApps(ctx, limit)
	c.recorder.ObserveQuery(c.provider.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CurrentApp returns the most recently used application, if any
func (c *Client) CurrentApp(ctx context.Context) (apps.AppID, bool, error) {
	list, err := c.RecentApps(ctx, 1)
	if err != nil {
		return "", false, err
	}
	if len(list) == 0 {
		return "", false, nil
	}
	return list[0], true, nil
}

// CurrentAppOr returns the current application or def when there is none
func (c *Client) CurrentAppOr(ctx context.Context, def apps.AppID) (apps.AppID, error) {
	if def == "" {
		return "", apps.InvalidArgument("default application is required")
	}

	app, ok, err := c.CurrentApp(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return app, nil
}

// LastApp returns the application used before the current one, if any
func (c *Client) LastApp(ctx context.Context) (apps.AppID, bool, error) {
	list, err := c.RecentApps(ctx, 2)
	if err != nil {
		return "", false, err
	}
	if len(list) < 2 {
		return "", false, nil
	}
	return list[1], true, nil
}

// LastAppOr returns the previous application or def when there is none
func (c *Client) LastAppOr(ctx context.Context, def apps.AppID) (apps.AppID, error) {
	if def == "" {
		return "", apps.InvalidArgument("default application is required")
	}

	app, ok, err := c.LastApp(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return app, nil
}
