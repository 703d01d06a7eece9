package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/runplan"
)

// NewValidateCmd creates the `validate` command.
func NewValidateCmd() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a run plan document",
		Long: `Loads the run plan (or the built-in default when the file does not exist)
and reports every validation issue found in one pass.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := runplan.Load(planPath); err != nil {
				printPlanError(cmd.ErrOrStderr(), planPath, err)
				return &exitError{code: 2, err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Run plan is valid\n", color.GreenString("✓"))
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to the run plan TOML file")
	cmd.MarkFlagRequired("plan")
	return cmd
}

// printPlanError writes a plan load failure to w: one line per issue for
// validation errors, the wrapped parse error otherwise.
func printPlanError(w io.Writer, planPath string, err error) {
	var verr *runplan.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "%s Run plan validation failed for %s\n", color.RedString("✗"), planPath)
		for _, issue := range verr.Issues {
			fmt.Fprintf(w, " - %s\n", issue)
		}
		return
	}
	fmt.Fprintln(w, err)
}
