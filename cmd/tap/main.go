package main

import (
	"errors"
	"os"

	"github.com/lmaotrigine/homebrew-tap/cmd/tap/cmd"
	"github.com/lmaotrigine/homebrew-tap/internal/vcs"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode propagates the status of a failed git invocation.
func exitCode(err error) int {
	var cmdErr *vcs.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}
