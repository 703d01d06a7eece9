package cmd

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/runplan"
)

// NewNextRunsCmd creates the `next-runs` command, a small operator aid that
// shows when each enabled unit would fire next. Schedules that pass the
// lexical plan validation but that the cron parser cannot evaluate are shown
// with a dash.
func NewNextRunsCmd() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "next-runs",
		Short: "Show the next fire time for each enabled unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := runplan.Load(planPath)
			if err != nil {
				printPlanError(cmd.ErrOrStderr(), planPath, err)
				return &exitError{code: 2, err: err}
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "name\tschedule\tnext")
			for _, unit := range plan.Units {
				if !unit.Enabled {
					continue
				}
				next := "-"
				if schedule, err := cron.ParseStandard(unit.Schedule); err == nil {
					next = schedule.Next(now).Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", unit.Name, unit.Schedule, next)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to the run plan TOML file")
	cmd.MarkFlagRequired("plan")
	return cmd
}
