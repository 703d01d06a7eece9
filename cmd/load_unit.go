package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/runplan"
)

// NewLoadUnitCmd creates the `load-unit` command. Its output is meant to be
// evaluated by the calling shell, so failures are reported as emitted
// `echo ... >&2` plus `exit 2` text rather than through this process's own
// exit code.
func NewLoadUnitCmd() *cobra.Command {
	var planPath string
	var unitName string

	cmd := &cobra.Command{
		Use:   "load-unit",
		Short: "Emit the shell environment assignments for one run-plan unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			lines, err := runplan.DeriveUnitExports(planPath, unitName)
			if err != nil {
				emitShellError(out, err)
				return nil
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to the run plan TOML file")
	cmd.Flags().StringVar(&unitName, "unit", "", "Name of the unit to resolve")
	cmd.MarkFlagRequired("plan")
	cmd.MarkFlagRequired("unit")
	return cmd
}

func emitShellError(w io.Writer, err error) {
	var lookupErr *runplan.UnitNotFoundError
	if errors.As(err, &lookupErr) {
		fmt.Fprintf(w, "echo %s >&2\n", shellescape.Quote(lookupErr.Error()))
		fmt.Fprintln(w, "exit 2")
		return
	}

	fmt.Fprintf(w, "echo %s >&2\n", shellescape.Quote("Run plan validation failed"))
	var verr *runplan.ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			fmt.Fprintf(w, "echo %s >&2\n", shellescape.Quote(fmt.Sprintf(" - %s", issue)))
		}
	} else {
		fmt.Fprintf(w, "echo %s >&2\n", shellescape.Quote(fmt.Sprintf(" - %s", err)))
	}
	fmt.Fprintln(w, "exit 2")
}
