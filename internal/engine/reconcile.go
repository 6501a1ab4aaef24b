// Package engine decides, per tracked formula, whether its document must be
// regenerated and carries out the regeneration.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lmaotrigine/homebrew-tap/internal/config"
	"github.com/lmaotrigine/homebrew-tap/internal/formula"
	"github.com/lmaotrigine/homebrew-tap/internal/platform"
)

// FetchWorkers bounds the concurrent archive downloads for one formula.
const FetchWorkers = 4

// ReleaseSource resolves the latest released version of a project.
type ReleaseSource interface {
	LatestVersion(ctx context.Context, org, name string) (string, bool, error)
}

// DefinitionStore persists formula documents.
type DefinitionStore interface {
	Path(name string) (string, error)
	DeclaredVersion(name string) (string, bool, error)
	Write(name, content string) (string, error)
}

// Digester computes the content digest of a remote archive.
type Digester interface {
	Digest(ctx context.Context, url string) (string, error)
}

// Reconciler brings stored formula documents in line with upstream releases.
type Reconciler struct {
	Releases ReleaseSource
	Store    DefinitionStore
	Fetcher  Digester
	Locator  *platform.Locator
	DryRun   bool // log intended writes instead of performing them
	Logger   zerolog.Logger
}

// UpdateOptions configures an update run.
type UpdateOptions struct {
	Names []string // empty = every formula
}

// Update reconciles formulas one at a time, in order. It stops at the first
// error and returns the outcomes gathered so far together with that error.
func (r *Reconciler) Update(ctx context.Context, formulas []config.Formula, opts UpdateOptions) (*Summary, error) {
	selected, err := Select(formulas, opts.Names)
	if err != nil {
		return &Summary{}, err
	}

	summary := &Summary{}
	for _, f := range selected {
		outcome, err := r.Reconcile(ctx, f)
		if err != nil {
			return summary, err
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return summary, nil
}

// Reconcile resolves, compares, fetches, renders and persists one formula.
func (r *Reconciler) Reconcile(ctx context.Context, f config.Formula) (Outcome, error) {
	name := f.Name()
	log := r.Logger.With().Str("formula", name).Logger()
	log.Info().Msg("Checking formula")

	latest, ok, err := r.Releases.LatestVersion(ctx, f.Org(), name)
	if err != nil {
		return Outcome{}, &FormulaError{Formula: name, Err: err}
	}
	if !ok {
		log.Info().Msg("No release found, skipping")
		return Outcome{Kind: Skipped, Formula: name}, nil
	}

	declared, declaredOK, err := r.Store.DeclaredVersion(name)
	if err != nil {
		return Outcome{}, &FormulaError{Formula: name, Err: err}
	}
	if declaredOK && declared == latest {
		log.Info().Str("version", latest).Msg("Formula is up to date")
		return Outcome{Kind: UpToDate, Formula: name, From: declared, FromOK: true, To: latest}, nil
	}

	if declaredOK {
		log.Info().Str("from", declared).Str("to", latest).Msg("New version available")
	} else {
		log.Info().Str("to", latest).Msg("No existing formula, generating")
	}

	archives, err := r.fetchArchives(ctx, f, latest)
	if err != nil {
		return Outcome{}, &FormulaError{Formula: name, Err: err}
	}

	document, err := formula.Render(formula.Input{Formula: f, Version: latest, Archives: archives})
	if err != nil {
		return Outcome{}, &FormulaError{Formula: name, Err: err}
	}

	var path string
	if r.DryRun {
		path, err = r.Store.Path(name)
		if err != nil {
			return Outcome{}, &FormulaError{Formula: name, Err: err}
		}
		log.Info().Str("path", path).Msg("Dry run: would write formula")
		log.Info().Msg("Formula content:\n" + document)
	} else {
		path, err = r.Store.Write(name, document)
		if err != nil {
			return Outcome{}, &FormulaError{Formula: name, Err: err}
		}
	}

	return Outcome{
		Kind:    Updated,
		Formula: name,
		From:    declared,
		FromOK:  declaredOK,
		To:      latest,
		Path:    path,
	}, nil
}

// fetchArchives downloads the four platform archives with at most
// FetchWorkers in flight. Any single failure fails the whole set.
func (r *Reconciler) fetchArchives(ctx context.Context, f config.Formula, version string) (formula.Archives, error) {
	artifacts := r.Locator.LocateAll(f, version)
	digests := make([]string, len(artifacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(FetchWorkers)
	for i, a := range artifacts {
		g.Go(func() error {
			digest, err := r.Fetcher.Digest(gctx, a.URL)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Target, err)
			}
			digests[i] = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formula.Archives{}, err
	}

	var archives formula.Archives
	for i, a := range artifacts {
		if err := archives.Set(a.Target, formula.Artifact{URL: a.URL, SHA256: digests[i]}); err != nil {
			return formula.Archives{}, err
		}
	}
	return archives, nil
}

// Select returns the formulas named in names, in names order, or every
// formula when names is empty. An unknown name is a configuration error.
func Select(formulas []config.Formula, names []string) ([]config.Formula, error) {
	if len(names) == 0 {
		return formulas, nil
	}

	byName := make(map[string]config.Formula, len(formulas))
	for _, f := range formulas {
		byName[f.Name()] = f
	}

	selected := make([]config.Formula, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("formula '%s' not found in config: %w", name, config.ErrInvalid)
		}
		selected = append(selected, f)
	}
	return selected, nil
}
