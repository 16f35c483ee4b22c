package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/actionsum/recentapps/internal/database"
)

// ClearOptions holds flags for the clear command
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded focus event and error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runClear(cmd *cobra.Command, opts *ClearOptions) error {
	out := cmd.OutOrStdout()

	db, err := database.OpenExisting(opts.cfg.Database.Path)
	if errors.Is(err, database.ErrNoDatabase) {
		fmt.Fprintln(out, "Nothing to clear")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	if !opts.Yes {
		fmt.Fprintf(out, "Delete all recorded events in %s? [y/N] ", db.Path())
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	if err := database.NewRepository(db).Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out, "All recorded events deleted")
	return nil
}
