package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmaotrigine/homebrew-tap/internal/logging"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	rootDir    string
	configPath string
	verbosity  int
	quiet      bool
	noColor    bool
	logFile    string
)

var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "tap",
	Short: "Keep Homebrew tap formulas in step with GitHub releases",
	Long: `tap checks the latest GitHub release of every project listed in the tap
configuration, regenerates the formula of each project whose declared version
is behind, and commits and pushes the result to the tap repository.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		closeLog = logging.Setup(logging.Options{
			Verbosity: verbosity,
			Quiet:     quiet,
			NoColor:   noColor || os.Getenv("NO_COLOR") != "",
			File:      logFile,
		})
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tap %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "tap repository root (default: directory of the config file, else the working directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: discovered in the tap root)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (warnings and errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", `log file path ("-" disables it)`)

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}
