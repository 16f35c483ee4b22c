package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/pkg/apps"
	"github.com/actionsum/recentapps/pkg/recentapps"
)

// WatchOptions holds flags for the watch command
type WatchOptions struct {
	*RootOptions
	Limit   int
	Period  time.Duration
	Current bool
	Default string
}

// NewWatchCommand creates the watch command
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the recent applications whenever they change",
		Long: `Resample the recent applications every period and print the list each
time it differs from the previous one. With --current only the foreground
application is followed.

Examples:
  recentapps watch
  recentapps watch -n 5 --period 500ms
  recentapps watch --current --default desktop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				opts.Limit = opts.cfg.Observer.Limit
			}
			if !cmd.Flags().Changed("period") {
				opts.Period = opts.cfg.Observer.Period
			}
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", recentapps.DefaultLimit, "maximum number of applications")
	cmd.Flags().DurationVar(&opts.Period, "period", recentapps.DefaultPeriod, "resampling period")
	cmd.Flags().BoolVar(&opts.Current, "current", false, "follow only the foreground application")
	cmd.Flags().StringVar(&opts.Default, "default", "", "application to report when there is none (with --current)")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, env, err := opts.openClient(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	if opts.Format == "text" {
		mutedColor.Fprintf(out, "watching with %s every %v, Ctrl+C to stop\n", client.Strategy(), opts.Period)
	}

	if opts.Current {
		o, err := client.ObserveCurrentApp(opts.Period, apps.AppID(opts.Default))
		if err != nil {
			return err
		}
		return follow(ctx, o, func(app apps.AppID) error {
			if opts.Format == "json" {
				return writeJSON(out, map[string]any{"time": time.Now(), "app": app})
			}
			stamp(out)
			currentColor.Fprintln(out, app)
			return nil
		})
	}

	o, err := client.ObserveRecentApps(opts.Limit, opts.Period)
	if err != nil {
		return err
	}
	return follow(ctx, o, func(list apps.AppList) error {
		if opts.Format == "json" {
			if list == nil {
				list = apps.AppList{}
			}
			return writeJSON(out, map[string]any{"time": time.Now(), "apps": list})
		}
		stamp(out)
		fmt.Fprintln(out)
		printList(out, list)
		return nil
	})
}

func stamp(out io.Writer) {
	mutedColor.Fprintf(out, "[%s] ", time.Now().Format("15:04:05"))
}

// follow prints every update until ctx ends or the observer fails
func follow[T any](ctx context.Context, o *recentapps.Observer[T], emit func(T) error) error {
	if err := o.Start(ctx); err != nil {
		return err
	}
	defer o.Stop()

	for value := range o.Updates() {
		if err := emit(value); err != nil {
			return err
		}
	}
	return o.Err()
}
