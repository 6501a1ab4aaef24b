package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileNames are the configuration file names looked up in the tap root, in
// order of preference.
var FileNames = []string{".tap.toml", "tap.toml", ".tap.yaml", "tap.yaml", ".tap.yml", "tap.yml"}

// Discover returns the path of the first configuration file found in root.
func Discover(root string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no tap configuration found in %s (looked for %s)", root, strings.Join(FileNames, ", "))
}

// EnvDryRun reports whether DRY_RUN is present in the environment. Any value,
// including an empty one, enables dry-run.
func EnvDryRun() bool {
	_, ok := os.LookupEnv("DRY_RUN")
	return ok
}
