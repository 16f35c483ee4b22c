package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/internal/daemon"
	"github.com/actionsum/recentapps/internal/metrics"
	"github.com/actionsum/recentapps/internal/reporter"
	"github.com/actionsum/recentapps/internal/web"
	"github.com/actionsum/recentapps/pkg/recentapps"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DaemonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recent applications over HTTP and WebSocket",
		Long: `Start the web server. It answers /api/recent, /api/current and /api/last,
streams changes on /api/watch and exposes Prometheus metrics on /metrics.

With --record the focus recorder runs in the same process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Port != 0 {
				if err := opts.cfg.SetWebPort(opts.Port); err != nil {
					return err
				}
			}
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Detach, "detach", "d", false, "run in the background")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "also run the focus recorder")
	return cmd
}

func runServe(cmd *cobra.Command, opts *DaemonOptions) error {
	dm := daemon.New(opts.cfg.Daemon.WebPIDFile)
	if err := ensureStopped(dm, "web server"); err != nil {
		return err
	}
	if opts.Record {
		if err := ensureStopped(daemon.New(opts.cfg.Daemon.PIDFile), "recorder"); err != nil {
			return err
		}
	}

	if opts.Detach && !daemon.IsChild() {
		return detach(cmd, "Web server")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := opts.log.Logger
	errCh := make(chan error, 2)

	// the recorder creates the database, so it starts before the probe
	if opts.Record {
		recorder, cleanup, err := newRecorder(opts.cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		recDaemon := daemon.New(opts.cfg.Daemon.PIDFile)
		if err := recDaemon.WritePID(); err != nil {
			return err
		}
		defer recDaemon.RemovePID()

		recCtx, cancelRec := context.WithCancel(ctx)
		recDone := make(chan struct{})
		go func() {
			defer close(recDone)
			if err := recorder.Start(recCtx); err != nil {
				errCh <- errors.Wrap(err, "recorder failed")
			}
		}()
		// runs before cleanup closes the database
		defer func() {
			cancelRec()
			<-recDone
		}()
	}

	m := metrics.New()

	env, err := opts.probe(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	client, err := recentapps.NewForHost(env.Host, recentapps.WithLogger(log), recentapps.WithRecorder(m))
	strategy := ""
	if err != nil {
		log.Warn().Err(err).Msg("No recency source, query endpoints will answer 503")
		client = nil
	} else {
		strategy = client.Strategy()
	}

	rep := reporter.New(opts.cfg, env.Repo, strategy)
	handler := web.NewHandler(opts.cfg, client, rep, m, log)
	server := web.NewServer(opts.cfg, handler, 0, log)

	if err := dm.WritePID(); err != nil {
		return err
	}
	defer dm.RemovePID()

	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Stopping web server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("Error shutting down web server")
	}
	return runErr
}
