package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/runplan"
)

// NewListUnitsCmd creates the `list-units` command.
func NewListUnitsCmd() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "list-units",
		Short: "List the units of a run plan as a tab-separated table",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := runplan.Load(planPath)
			if err != nil {
				printPlanError(cmd.ErrOrStderr(), planPath, err)
				return &exitError{code: 2, err: err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "name\tschedule\tenabled\tmode")
			for _, unit := range plan.Units {
				mode := unit.Mode
				if mode == "" {
					mode = plan.Global.Mode
				}
				if mode == "" {
					mode = unit.Name
				}
				fmt.Fprintf(out, "%s\t%s\t%t\t%s\n", unit.Name, unit.Schedule, unit.Enabled, mode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to the run plan TOML file")
	cmd.MarkFlagRequired("plan")
	return cmd
}
