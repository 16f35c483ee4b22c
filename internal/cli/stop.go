package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/internal/daemon"
)

// StopOptions holds flags for the stop command
type StopOptions struct {
	*RootOptions
	Web bool
	All bool
}

// NewStopCommand creates the stop command
func NewStopCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StopOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background recorder or web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Web, "web", false, "stop the web server instead of the recorder")
	cmd.Flags().BoolVar(&opts.All, "all", false, "stop both the recorder and the web server")
	cmd.MarkFlagsMutuallyExclusive("web", "all")
	return cmd
}

func runStop(cmd *cobra.Command, opts *StopOptions) error {
	type target struct {
		name    string
		pidFile string
	}

	var targets []target
	if opts.All || !opts.Web {
		targets = append(targets, target{"Recorder", opts.cfg.Daemon.PIDFile})
	}
	if opts.All || opts.Web {
		targets = append(targets, target{"Web server", opts.cfg.Daemon.WebPIDFile})
	}

	out := cmd.OutOrStdout()
	for _, t := range targets {
		err := daemon.New(t.pidFile).Stop()
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s stopped\n", t.name)
		case errors.Is(err, daemon.ErrNotRunning):
			fmt.Fprintf(out, "%s is not running\n", t.name)
		default:
			return errors.Wrapf(err, "failed to stop %s", t.name)
		}
	}
	return nil
}
