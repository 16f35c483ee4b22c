// Package cli implements the recentapps command line.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/internal/config"
	"github.com/actionsum/recentapps/internal/daemon"
	"github.com/actionsum/recentapps/internal/logger"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

// daemonLogFile is used by detached processes when no log file is configured
const daemonLogFile = "/tmp/recentapps.log"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags and the state they load
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Format     string // "json" | "text"

	cfg *config.Config
	log *logger.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recentapps",
		Short: "Most recently used applications",
		Long: `recentapps answers which applications were most recently brought to the
foreground, once or as a live stream.

Run "recentapps record --detach" to start the focus recorder; the query
commands then rank its event log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.config/recentapps/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(
		NewRecordCommand(opts),
		NewServeCommand(opts),
		NewStopCommand(opts),
		NewStatusCommand(opts),
		NewRecentCommand(opts),
		NewCurrentCommand(opts),
		NewLastCommand(opts),
		NewWatchCommand(opts),
		NewClearCommand(opts),
		NewVersionCommand(),
	)

	return cmd
}

func (o *RootOptions) load() error {
	if !slices.Contains(ValidFormats, o.Format) {
		return errors.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if daemon.IsChild() && cfg.Log.File == "" {
		cfg.Log.File = daemonLogFile
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}

	o.cfg, o.log = cfg, log
	return nil
}

// NewVersionCommand prints build information
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "recentapps version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func currentPID() int {
	return os.Getpid()
}
