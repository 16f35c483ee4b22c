package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/internal/reporter"
	"github.com/actionsum/recentapps/pkg/recentapps"
)

// NewStatusCommand creates the status command
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show recorder and provider status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, rootOpts)
		},
	}
}

func runStatus(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()

	env, err := opts.probe(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	strategy := ""
	if client, err := recentapps.NewForHost(env.Host); err == nil {
		strategy = client.Strategy()
	}

	rep := reporter.New(opts.cfg, env.Repo, strategy)
	status, err := rep.Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		s, err := rep.FormatStatusJSON(status)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		return nil
	}
	fmt.Fprint(out, rep.FormatStatusText(status))
	return nil
}
