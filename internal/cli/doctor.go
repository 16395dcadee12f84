package cli

import (
	"fmt"

	"github.com/CageChen/nativefs/internal/report"
	"github.com/spf13/cobra"
)

var doctorHTML bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorHTML, "html", false, "Render the report as HTML")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Print a diagnostics report for the native module",
	Long: `Print where the native module was searched for, where it was loaded
from, and why loading failed if it did.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := module.Status()
		if !doctorHTML {
			fmt.Fprint(cmd.OutOrStdout(), report.Markdown(st))
			return nil
		}

		rep, err := report.NewRenderer().Generate(st)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), rep.HTML)
		return nil
	},
}
