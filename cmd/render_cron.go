package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/runplan"
)

// NewRenderCronCmd creates the `render-cron` command.
func NewRenderCronCmd() *cobra.Command {
	var planPath string
	var systemCron bool

	cmd := &cobra.Command{
		Use:   "render-cron",
		Short: "Render crontab text for the enabled units of a run plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := runplan.RenderCron(planPath, systemCron)
			if err != nil {
				printPlanError(cmd.ErrOrStderr(), planPath, err)
				return &exitError{code: 2, err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to the run plan TOML file")
	cmd.Flags().BoolVar(&systemCron, "system-cron", false, "Emit system crontab lines carrying the root user field")
	cmd.MarkFlagRequired("plan")
	return cmd
}
