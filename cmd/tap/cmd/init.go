package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default .tap.toml scaffold.
// It includes one complete formula and commented-out optional keys.
const initTemplate = `# tap configuration
# Each [[formula]] tracks the GitHub releases of one project.

# [tap]
# formula_dir = "Formula"
# push_branch = "mistress"
# author_name = "homebrew-tap"
# author_email = "isis@5ht2.me"

[[formula]]
repo = "your-org/your-tool"
homepage = "https://github.com/your-org/your-tool"
desc = "One line describing your tool"
license = "MIT"
bins = ["your-tool"]
# mans = ["doc/your-tool.1"]
# deps = ["git", "fzf#optional"]
# completions = ["completions/your-tool.bash", "completions/_your-tool"]

# Archive names default to "{name}-{arch}.{ext}" where {arch} is one of
# aarch64-apple-darwin, x86_64-apple-darwin, aarch64-unknown-linux-musl or
# x86_64-unknown-linux-musl.
# archive_fmt = "{name}-{version}-{arch}.{ext}"
# linux_ext = "tar.xz"
# darwin_ext = "tar.xz"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter .tap.toml configuration",
	Long: `Creates a .tap.toml file in the tap root with a well-commented template
containing one formula and the optional keys it accepts.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, err := initPath()
		if err != nil {
			return err
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Edit the file to list the projects your tap packages")
		info("  2. Run 'tap check' to see which formulas are behind")
		info("  3. Run 'tap update --dry-run' to preview the bump")
		return nil
	},
}

// initPath is --config when given, else .tap.toml in the tap root.
func initPath() (string, error) {
	outPath := configPath
	if outPath == "" {
		dir := rootDir
		if dir == "" {
			dir = "."
		}
		outPath = filepath.Join(dir, ".tap.toml")
	}
	abs, err := filepath.Abs(outPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
