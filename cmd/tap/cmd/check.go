package cmd

import (
	"fmt"

	"github.com/lmaotrigine/homebrew-tap/pkg/tap"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [formula...]",
	Short: "Report formulas that are behind their latest release",
	Long: `Compares the version declared in each formula with the latest GitHub release
of its project. Nothing is downloaded or written.
Exit 0 if every formula is current; exit non-zero otherwise. Suitable for CI pipelines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(clientOptions{})
		if err != nil {
			return err
		}

		result, err := client.Check(cmd.Context(), args)
		if err != nil {
			return err
		}

		newPrinter().Check(result)
		if result.Clean {
			return nil
		}
		return fmt.Errorf("check failed: %d formula(s) out of date", outOfDate(result))
	},
}

func outOfDate(result *tap.CheckResult) int {
	n := 0
	for _, e := range result.Entries {
		if e.Status == tap.Stale || e.Status == tap.Missing {
			n++
		}
	}
	return n
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
