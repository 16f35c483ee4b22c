package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/pkg/apps"
)

var (
	currentColor = color.New(color.FgGreen, color.Bold)
	mutedColor   = color.New(color.Faint)
)

// QueryOptions holds flags for recent, current and last
type QueryOptions struct {
	*RootOptions
	Limit   int
	Default string
}

// NewRecentCommand creates the recent command
func NewRecentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently used applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				opts.Limit = opts.cfg.Observer.Limit
			}
			return runRecent(cmd, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "maximum number of applications")
	return cmd
}

func runRecent(cmd *cobra.Command, opts *QueryOptions) error {
	ctx := cmd.Context()
	client, env, err := opts.openClient(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	list, err := client.RecentApps(ctx, opts.Limit)
	if err != nil {
		return errors.Wrap(err, "failed to query recent apps")
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if list == nil {
			list = apps.AppList{}
		}
		return writeJSON(out, map[string]any{"strategy": client.Strategy(), "apps": list})
	}

	printList(out, list)
	return nil
}

func printList(out io.Writer, list apps.AppList) {
	if len(list) == 0 {
		mutedColor.Fprintln(out, "no recently used applications")
		return
	}
	for i, app := range list {
		if i == 0 {
			currentColor.Fprintf(out, "%2d. %s\n", i+1, app)
			continue
		}
		fmt.Fprintf(out, "%2d. %s\n", i+1, app)
	}
}

// NewCurrentCommand creates the current command
func NewCurrentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the application currently in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, opts, "current")
		},
	}
	cmd.Flags().StringVar(&opts.Default, "default", "", "application to report when there is none")
	return cmd
}

// NewLastCommand creates the last command
func NewLastCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the application used before the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, opts, "last")
		},
	}
	cmd.Flags().StringVar(&opts.Default, "default", "", "application to report when there is none")
	return cmd
}

func runSingle(cmd *cobra.Command, opts *QueryOptions, which string) error {
	ctx := cmd.Context()
	client, env, err := opts.openClient(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	var (
		app apps.AppID
		ok  bool
	)
	switch {
	case which == "current" && opts.Default != "":
		app, err = client.CurrentAppOr(ctx, apps.AppID(opts.Default))
		ok = err == nil
	case which == "current":
		app, ok, err = client.CurrentApp(ctx)
	case opts.Default != "":
		app, err = client.LastAppOr(ctx, apps.AppID(opts.Default))
		ok = err == nil
	default:
		app, ok, err = client.LastApp(ctx)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to query %s app", which)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, map[string]any{"strategy": client.Strategy(), "app": app, "found": ok})
	}

	if !ok {
		mutedColor.Fprintf(out, "no %s application\n", which)
		return nil
	}
	fmt.Fprintln(out, app)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
