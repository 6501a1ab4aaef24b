// Package tap provides the Go library API for keeping a Homebrew tap's
// formulas in step with the GitHub releases of the projects it packages.
//
// # Basic Usage
//
//	client, err := tap.New(tap.Options{
//	    Root:  "/path/to/homebrew-tap",
//	    Token: os.Getenv("GITHUB_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Regenerate every stale formula
//	summary, err := client.Update(ctx, tap.UpdateOptions{})
//
//	// Commit and push the result
//	err = client.Publish(ctx, summary, tap.PublishOptions{})
package tap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lmaotrigine/homebrew-tap/internal/cache"
	"github.com/lmaotrigine/homebrew-tap/internal/config"
	"github.com/lmaotrigine/homebrew-tap/internal/engine"
	"github.com/lmaotrigine/homebrew-tap/internal/fetch"
	"github.com/lmaotrigine/homebrew-tap/internal/github"
	"github.com/lmaotrigine/homebrew-tap/internal/logging"
	"github.com/lmaotrigine/homebrew-tap/internal/platform"
	"github.com/lmaotrigine/homebrew-tap/internal/store"
	"github.com/lmaotrigine/homebrew-tap/internal/vcs"
)

// ErrNoToken is returned when a mutating operation needs GitHub
// credentials that were not supplied.
var ErrNoToken = errors.New("GITHUB_TOKEN is required unless running in dry-run mode")

// Options configures a tap client.
type Options struct {
	// Root is the tap checkout. If empty, defaults to the directory
	// containing ConfigPath.
	Root string

	// ConfigPath is the run configuration. If empty, it is discovered in Root.
	ConfigPath string

	// Token authenticates GitHub API calls and the final push.
	Token string

	// DryRun suppresses downloads, writes, commits and pushes. Archive
	// digests are derived from their URLs.
	DryRun bool

	// KeepArchives stores downloaded archives under ArchiveDir.
	KeepArchives bool

	// ArchiveDir defaults to the XDG cache directory.
	ArchiveDir string

	// APIURL overrides the GitHub API root.
	APIURL string

	// DownloadURL overrides the release download host.
	DownloadURL string

	// HTTPClient is used for every request. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger is the base for every component logger. If nil, the process
	// logger configured by internal/logging is used.
	Logger *zerolog.Logger
}

// UpdateOptions configures an update operation.
type UpdateOptions struct {
	Names []string // empty = every formula
}

// PublishOptions configures a publish operation.
type PublishOptions struct {
	NoPush bool
}

// Client is the main entry point for the library.
type Client struct {
	root       string
	cfg        *config.Config
	token      string
	dryRun     bool
	archives   *cache.Cache
	reconciler *engine.Reconciler
	baseLogger *zerolog.Logger
	logger     zerolog.Logger
}

// New loads the run configuration and wires a Client.
func New(opts Options) (*Client, error) {
	root := opts.Root
	configPath := opts.ConfigPath
	switch {
	case root == "" && configPath == "":
		root = "."
	case root == "":
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		root = filepath.Dir(abs)
	}
	if configPath == "" {
		discovered, err := config.Discover(root)
		if err != nil {
			return nil, err
		}
		configPath = discovered
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	releases, err := github.NewClient(github.Config{
		BaseURL:    opts.APIURL,
		Token:      opts.Token,
		HTTPClient: httpClient,
		Logger:     componentLogger(opts.Logger, "github"),
	})
	if err != nil {
		return nil, err
	}

	var archives *cache.Cache
	if opts.KeepArchives && !opts.DryRun {
		dir := opts.ArchiveDir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		archives, err = cache.New(dir)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		root:     root,
		cfg:      cfg,
		token:    opts.Token,
		dryRun:   opts.DryRun,
		archives: archives,
		reconciler: &engine.Reconciler{
			Releases: releases,
			Store: &store.Store{
				Root:   root,
				Dir:    cfg.Tap.FormulaDir,
				Logger: componentLogger(opts.Logger, "store"),
			},
			Fetcher: &fetch.Fetcher{
				Client:    httpClient,
				DryRun:    opts.DryRun,
				Cache:     archives,
				UserAgent: github.DefaultUserAgent,
				Logger:    componentLogger(opts.Logger, "fetch"),
			},
			Locator: &platform.Locator{BaseURL: opts.DownloadURL},
			DryRun:  opts.DryRun,
			Logger:  componentLogger(opts.Logger, "engine"),
		},
		baseLogger: opts.Logger,
		logger:     componentLogger(opts.Logger, "tap"),
	}, nil
}

func componentLogger(base *zerolog.Logger, component string) zerolog.Logger {
	if base == nil {
		return logging.GetLogger(component)
	}
	return base.With().Str("component", component).Logger()
}

// Config returns the loaded run configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// ArchiveDir returns where downloaded archives are kept, or "" when they
// are not kept.
func (c *Client) ArchiveDir() string {
	if c.archives == nil {
		return ""
	}
	return c.archives.Path()
}

// ArchiveUsage returns the bytes held in the archive directory.
func (c *Client) ArchiveUsage() (int64, error) {
	if c.archives == nil {
		return 0, nil
	}
	return c.archives.Size()
}

// DryRun reports whether the client only simulates changes.
func (c *Client) DryRun() bool {
	return c.dryRun
}

// Check reports which formulas are behind their latest release.
func (c *Client) Check(ctx context.Context, names []string) (*CheckResult, error) {
	return c.reconciler.Check(ctx, c.cfg.Formulas, names)
}

// Update regenerates every formula whose stored version differs from the
// latest release. On error the partial summary is returned as well.
func (c *Client) Update(ctx context.Context, opts UpdateOptions) (*Summary, error) {
	if c.token == "" && !c.dryRun {
		return &Summary{}, ErrNoToken
	}
	if c.dryRun {
		c.logger.Info().Msg("Dry run enabled")
	}
	return c.reconciler.Update(ctx, c.cfg.Formulas, engine.UpdateOptions{Names: opts.Names})
}

// Publish commits the bumped formulas in summary and pushes the commit.
func (c *Client) Publish(ctx context.Context, summary *Summary, opts PublishOptions) error {
	bumped := summary.Bumped()
	bumps := make([]vcs.Bump, 0, len(bumped))
	for _, o := range bumped {
		bumps = append(bumps, vcs.Bump{Formula: o.Formula, Version: o.To})
	}
	if len(bumps) > 0 && c.token == "" && !c.dryRun && !opts.NoPush {
		return ErrNoToken
	}

	publisher := &vcs.Publisher{
		Repo: &vcs.Repository{
			Dir:    c.root,
			Logger: componentLogger(c.baseLogger, "git"),
		},
		Author: vcs.Author{Name: c.cfg.Tap.AuthorName, Email: c.cfg.Tap.AuthorEmail},
		Branch: c.cfg.Tap.PushBranch,
		Token:  c.token,
		DryRun: c.dryRun,
		NoPush: opts.NoPush,
	}
	return publisher.Publish(ctx, bumps)
}
