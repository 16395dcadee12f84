package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the native module is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := module.Status()
		out := cmd.OutOrStdout()

		if statusJSON {
			data, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling status: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Platform:  %s\n", st.Platform)
		fmt.Fprintf(out, "Library:   %s\n", st.Library)
		if st.Available {
			fmt.Fprintf(out, "Available: yes (%s)\n", st.LoadedFrom)
		} else {
			fmt.Fprintf(out, "Available: no\n")
			fmt.Fprintf(out, "Reason:    %s\n", st.Reason)
		}
		printer.Fprintf(out, "Searched:  %d candidate(s)\n", len(st.Candidates))
		return nil
	},
}
