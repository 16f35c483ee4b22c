// Package host inspects the local machine and reports which recency sources
// it can offer.
package host

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/internal/database"
	"github.com/actionsum/recentapps/pkg/apps"
	"github.com/actionsum/recentapps/pkg/integrations/desktop"
	"github.com/actionsum/recentapps/pkg/integrations/x11"
	"github.com/actionsum/recentapps/pkg/provider"
)

// Options selects the resources the probe looks at
type Options struct {
	DBPath          string
	Display         string
	ApplicationDirs []string

	// Force skips the capability ladder when not apps.CapabilityNone
	Force apps.Capability

	Logger zerolog.Logger
}

// Environment is a probed host with the resources it holds open
type Environment struct {
	Host provider.Host

	// Repo is nil when no focus-event database exists
	Repo *database.Repository

	closers []io.Closer
}

// Close releases every resource opened by Probe
func (e *Environment) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

type taskClient interface {
	apps.TaskSource
	io.Closer
}

// dialTasks is replaced in tests
var dialTasks = func(display string, logger zerolog.Logger) (taskClient, error) {
	return x11.Dial(display, x11.WithLogger(logger))
}

// Probe walks the capability ladder: event log when the focus database
// exists and desktop entries are installed, usage window when only the
// database exists, running tasks when only the X server answers.
func Probe(ctx context.Context, opts Options) (*Environment, error) {
	logger := opts.Logger.With().Str("component", "host").Logger()
	env := &Environment{}

	want := func(c apps.Capability) bool {
		return opts.Force == apps.CapabilityNone || opts.Force == c
	}

	if want(apps.CapabilityEventLog) || want(apps.CapabilityUsageWindow) {
		db, err := database.OpenExisting(opts.DBPath)
		switch {
		case err == nil:
			if err := db.Initialize(); err != nil {
				_ = db.Close()
				return nil, err
			}
			env.closers = append(env.closers, db)
			env.Repo = database.NewRepository(db)
			env.Host.Events = env.Repo
			env.Host.Usage = env.Repo
		case errors.Is(err, database.ErrNoDatabase):
			logger.Debug().Msg("No focus event database, is the recorder running?")
		default:
			return nil, err
		}
	}

	if env.Repo != nil && want(apps.CapabilityEventLog) {
		dirs := opts.ApplicationDirs
		if len(dirs) == 0 {
			dirs = desktop.DefaultDirs()
		}
		catalog := desktop.NewCatalog(dirs, desktop.WithLogger(logger))

		installed, err := catalog.InstalledApps(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read desktop entries")
		} else if len(installed) > 0 {
			env.Host.Catalog = catalog
		}
	}

	if want(apps.CapabilityRunningTasks) && (opts.Force == apps.CapabilityRunningTasks || env.Repo == nil) {
		tasks, err := dialTasks(opts.Display, logger)
		if err != nil {
			logger.Debug().Err(err).Msg("X server not reachable")
		} else {
			env.closers = append(env.closers, tasks)
			env.Host.Tasks = tasks
		}
	}

	env.Host.Capability = capability(env.Host, opts.Force)
	logger.Debug().Str("capability", env.Host.Capability.String()).Msg("Host probed")
	return env, nil
}

func capability(h provider.Host, force apps.Capability) apps.Capability {
	if force != apps.CapabilityNone {
		return force
	}
	switch {
	case h.Events != nil && h.Catalog != nil:
		return apps.CapabilityEventLog
	case h.Usage != nil:
		return apps.CapabilityUsageWindow
	case h.Tasks != nil:
		return apps.CapabilityRunningTasks
	}
	return apps.CapabilityNone
}
