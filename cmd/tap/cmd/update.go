package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmaotrigine/homebrew-tap/pkg/tap"
)

var (
	updateDryRun       bool
	updateNoPush       bool
	updateKeepArchives bool
)

var updateCmd = &cobra.Command{
	Use:   "update [formula...]",
	Short: "Regenerate formulas behind their latest release and push them",
	Long: `Looks up the latest GitHub release of each configured project. Every formula
whose declared version differs is regenerated with fresh archive digests for
all four platforms, then the changes are committed and pushed to the tap.

If formula names are provided, only those formulas are considered. The run
stops at the first failure; formulas already written stay on disk uncommitted.

Requires GITHUB_TOKEN unless --dry-run is given or DRY_RUN is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(clientOptions{
			dryRun:       updateDryRun,
			keepArchives: updateKeepArchives,
		})
		if err != nil {
			return err
		}

		summary, err := client.Update(cmd.Context(), tap.UpdateOptions{Names: args})
		if summary != nil && !quiet {
			newPrinter().Summary(summary, client.DryRun())
		}
		if err != nil {
			return err
		}

		if err := client.Publish(cmd.Context(), summary, tap.PublishOptions{NoPush: updateNoPush}); err != nil {
			return fmt.Errorf("publishing: %w", err)
		}

		if dir := client.ArchiveDir(); dir != "" {
			size, err := client.ArchiveUsage()
			if err != nil {
				return fmt.Errorf("measuring archive directory: %w", err)
			}
			info("Archives kept in %s (%s)", dir, humanSize(size))
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "show what would change without downloading, writing or pushing")
	updateCmd.Flags().BoolVar(&updateNoPush, "no-push", false, "commit the bumped formulas but do not push")
	updateCmd.Flags().BoolVar(&updateKeepArchives, "keep-archives", false, "keep downloaded archives in the cache directory")
	rootCmd.AddCommand(updateCmd)
}
