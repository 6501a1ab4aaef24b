package cmd

import (
	"fmt"
	"os"

	"github.com/lmaotrigine/homebrew-tap/internal/config"
	"github.com/lmaotrigine/homebrew-tap/internal/ui"
	"github.com/lmaotrigine/homebrew-tap/pkg/tap"
)

// clientOptions collects the settings of a single command invocation.
type clientOptions struct {
	dryRun       bool
	keepArchives bool
}

// newClient loads the configuration and wires a tap client. Environment
// variables are read here and nowhere else.
func newClient(opts clientOptions) (*tap.Client, error) {
	client, err := tap.New(tap.Options{
		Root:         rootDir,
		ConfigPath:   configPath,
		Token:        os.Getenv("GITHUB_TOKEN"),
		DryRun:       opts.dryRun || config.EnvDryRun(),
		KeepArchives: opts.keepArchives,
	})
	if err != nil {
		return nil, fmt.Errorf("loading tap: %w", err)
	}
	return client, nil
}

// newPrinter returns a printer for stdout honouring --no-color.
func newPrinter() *ui.Printer {
	return ui.NewPrinter(os.Stdout, ui.ColorEnabled(os.Stdout, noColor))
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// humanSize formats a byte count with binary units.
func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
