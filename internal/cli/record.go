package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/internal/config"
	"github.com/actionsum/recentapps/internal/daemon"
	"github.com/actionsum/recentapps/internal/database"
	"github.com/actionsum/recentapps/internal/tracker"
	"github.com/actionsum/recentapps/pkg/detector"
	"github.com/actionsum/recentapps/pkg/integrations/screensaver"
	"github.com/actionsum/recentapps/pkg/window"
)

// DaemonOptions holds flags shared by record and serve
type DaemonOptions struct {
	*RootOptions
	Detach bool
	Record bool // serve only
	Port   int  // serve only
}

// NewRecordCommand creates the record command
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DaemonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record foreground application changes",
		Long: `Poll the focused window and append an event to the focus log each time
a different application comes to the foreground. Screen lock and unlock
are recorded as well. Events older than the retention period are pruned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Detach, "detach", "d", false, "run in the background")
	return cmd
}

func runRecord(cmd *cobra.Command, opts *DaemonOptions) error {
	dm := daemon.New(opts.cfg.Daemon.PIDFile)
	if err := ensureStopped(dm, "recorder"); err != nil {
		return err
	}

	if opts.Detach && !daemon.IsChild() {
		return detach(cmd, "Recorder")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder, cleanup, err := newRecorder(opts.cfg, opts.log.Logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := dm.WritePID(); err != nil {
		return err
	}
	defer dm.RemovePID()

	opts.log.Info().Msgf("Configuration:\n%s", opts.cfg.String())
	return recorder.Start(ctx)
}

// newRecorder opens the database and the window probes and builds the
// tracker service
func newRecorder(cfg *config.Config, log zerolog.Logger) (*tracker.Service, func(), error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	det, err := detector.New(cfg.Tracker.Display, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if !det.IsAvailable() {
		_ = db.Close()
		return nil, nil, errors.New("X server not available, is DISPLAY set?")
	}
	log.Info().Str("display_server", det.GetDisplayServer()).Msg("Window detector initialized")

	var locker window.LockDetector
	saver, err := screensaver.New(screensaver.WithLogger(log))
	if err != nil {
		log.Warn().Err(err).Msg("Screen lock state unavailable, lock events will not be recorded")
	} else {
		locker = saver
	}

	cleanup := func() {
		if saver != nil {
			_ = saver.Close()
		}
		_ = det.Close()
		_ = db.Close()
	}

	svc := tracker.NewService(cfg.Tracker, database.NewRepository(db), det, locker, log)
	return svc, cleanup, nil
}

func ensureStopped(dm *daemon.Daemon, what string) error {
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrapf(err, "failed to check %s status", what)
	}
	if running && pid != currentPID() {
		return errors.Errorf("%s is already running (PID: %d)", what, pid)
	}
	return nil
}

func detach(cmd *cobra.Command, what string) error {
	pid, err := daemon.Detach()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s started (PID: %d)\n", what, pid)
	return nil
}
