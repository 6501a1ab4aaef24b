package tap

import "github.com/lmaotrigine/homebrew-tap/internal/engine"

// Type aliases re-export engine result types as the public API.
// Users import "github.com/lmaotrigine/homebrew-tap/pkg/tap" and use
// tap.Summary, tap.CheckResult, etc.

type Outcome = engine.Outcome
type OutcomeKind = engine.OutcomeKind
type Summary = engine.Summary
type CheckResult = engine.CheckResult
type CheckEntry = engine.CheckEntry
type CheckStatus = engine.CheckStatus
type FormulaError = engine.FormulaError

const (
	UpToDate = engine.UpToDate
	Skipped  = engine.Skipped
	Updated  = engine.Updated
)

const (
	Current   = engine.Current
	Stale     = engine.Stale
	Missing   = engine.Missing
	NoRelease = engine.NoRelease
)
