package cli

import (
	"context"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/internal/host"
	"github.com/actionsum/recentapps/pkg/recentapps"
)

// ErrNoSource is returned when neither the recorder database nor the X
// server is available
var ErrNoSource = errors.New(`no recency source available; start the recorder with "recentapps record --detach"`)

// openClient probes the host and binds a client to the strategy it supports.
// The returned environment must be closed by the caller.
func (o *RootOptions) openClient(ctx context.Context, opts ...recentapps.Option) (*recentapps.Client, *host.Environment, error) {
	env, err := o.probe(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]recentapps.Option{recentapps.WithLogger(o.log.Logger)}, opts...)
	client, err := recentapps.NewForHost(env.Host, opts...)
	if err != nil {
		_ = env.Close()
		return nil, nil, errors.Wrap(ErrNoSource, err.Error())
	}
	return client, env, nil
}

func (o *RootOptions) probe(ctx context.Context) (*host.Environment, error) {
	force, _ := o.cfg.Capability()
	return host.Probe(ctx, host.Options{
		DBPath:          o.cfg.Database.Path,
		Display:         o.cfg.Tracker.Display,
		ApplicationDirs: o.cfg.Provider.ApplicationDirs,
		Force:           force,
		Logger:          o.log.Logger,
	})
}
