// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls logger setup.
type Options struct {
	// Verbosity: 0 info, 1 debug, 2 or more trace.
	Verbosity int
	// Quiet lowers console output to warnings and errors. Ignored when
	// Verbosity is set.
	Quiet   bool
	NoColor bool
	// File overrides the log file path. "-" disables the file.
	File string
	// Console defaults to os.Stderr.
	Console io.Writer
}

// Level maps the options to a zerolog level.
func (o Options) Level() zerolog.Level {
	switch {
	case o.Verbosity >= 2:
		return zerolog.TraceLevel
	case o.Verbosity == 1:
		return zerolog.DebugLevel
	case o.Quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup installs the global logger: human readable output on the console
// plus an append-only JSON log file. It returns a closer for the file.
func Setup(opts Options) func() error {
	zerolog.SetGlobalLevel(opts.Level())

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	}}

	logFile := opts.File
	if logFile == "" {
		logFile = DefaultLogFile()
	}

	closer := func() error { return nil }
	var fileErr error
	if logFile != "-" {
		var handle *os.File
		handle, fileErr = openLogFile(logFile)
		if fileErr == nil {
			writers = append(writers, handle)
			closer = handle.Close
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if opts.Verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}
	log.Debug().Int("verbosity", opts.Verbosity).Str("logFile", logFile).Msg("Logger initialized")
	return closer
}

// GetLogger returns the global logger tagged with a component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// DefaultLogFile is tap.log under the XDG state directory.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, "tap", "tap.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
