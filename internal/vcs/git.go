// Package vcs commits regenerated formulas and pushes them back to the tap's
// remote through the git CLI.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CommandError is a git invocation that exited unsuccessfully. ExitCode is
// -1 when the process could not be started or was killed.
type CommandError struct {
	Args     []string // already redacted
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s in %s: %s", strings.Join(e.Args, " "), e.Dir, e.Err)
	if e.Stderr != "" {
		msg += " (stderr: " + e.Stderr + ")"
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Repository runs git commands against the working tree at Dir.
type Repository struct {
	Dir    string
	Logger zerolog.Logger
}

// Run executes git with args inside the repository and returns stdout.
// env entries are appended to the process environment. Stdin is empty.
func (r *Repository) Run(ctx context.Context, env []string, args ...string) (string, error) {
	shown, secrets := redact(args)
	r.Logger.Debug().Strs("args", shown).Msg("Running git")

	fullArgs := append([]string{"-C", r.Dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	if len(env) > 0 {
		command.Env = append(os.Environ(), env...)
	}

	start := time.Now()
	err := command.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		r.Logger.Error().
			Strs("args", shown).
			Int("status", exitCode).
			Dur("elapsed", elapsed).
			Msg("git failed")
		return "", &CommandError{
			Args:     shown,
			Dir:      r.Dir,
			ExitCode: exitCode,
			Stderr:   scrub(strings.TrimSpace(stderr.String()), secrets),
			Err:      err,
		}
	}

	r.Logger.Debug().
		Strs("args", shown).
		Dur("elapsed", elapsed).
		Msg("git succeeded")
	return stdout.String(), nil
}

// redact hides passwords embedded in URL arguments and returns them so
// they can be scrubbed from command output too.
func redact(args []string) ([]string, []string) {
	out := make([]string, len(args))
	var secrets []string
	for i, arg := range args {
		out[i] = arg
		if !strings.Contains(arg, "://") {
			continue
		}
		if remote, err := ParseRemote(arg); err == nil && remote.HasPassword && remote.Password != "" {
			out[i] = remote.WithBasicAuth(remote.User, "REDACTED").String()
			secrets = append(secrets, remote.Password)
		}
	}
	return out, secrets
}

func scrub(text string, secrets []string) string {
	for _, secret := range secrets {
		text = strings.ReplaceAll(text, secret, "REDACTED")
	}
	return text
}
