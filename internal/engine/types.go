package engine

import "fmt"

// OutcomeKind classifies the result of reconciling one formula.
type OutcomeKind int

const (
	// UpToDate means the stored document already declares the latest version.
	UpToDate OutcomeKind = iota
	// Skipped means upstream has no tagged release.
	Skipped
	// Updated means a new document was rendered (and written unless dry-run).
	Updated
)

func (k OutcomeKind) String() string {
	switch k {
	case UpToDate:
		return "up-to-date"
	case Skipped:
		return "skipped"
	case Updated:
		return "updated"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of reconciling one formula.
type Outcome struct {
	Kind    OutcomeKind
	Formula string
	From    string // previously declared version, valid when FromOK
	FromOK  bool
	To      string // resolved version; empty when Skipped
	Path    string // document path; set for Updated
}

// Summary collects the outcomes of an Update run in processing order.
type Summary struct {
	Outcomes []Outcome
}

// Bumped returns the Updated outcomes.
func (s *Summary) Bumped() []Outcome {
	var bumped []Outcome
	for _, o := range s.Outcomes {
		if o.Kind == Updated {
			bumped = append(bumped, o)
		}
	}
	return bumped
}

// FormulaError ties a failure to the formula being reconciled.
type FormulaError struct {
	Formula string
	Err     error
}

func (e *FormulaError) Error() string {
	return e.Formula + ": " + e.Err.Error()
}

func (e *FormulaError) Unwrap() error {
	return e.Err
}

// CheckStatus classifies a formula in a staleness report.
type CheckStatus int

const (
	Current CheckStatus = iota
	Stale
	Missing
	NoRelease
)

func (s CheckStatus) String() string {
	switch s {
	case Current:
		return "current"
	case Stale:
		return "stale"
	case Missing:
		return "missing"
	case NoRelease:
		return "no release"
	default:
		return fmt.Sprintf("CheckStatus(%d)", int(s))
	}
}

// CheckEntry reports one formula's declared and latest versions.
type CheckEntry struct {
	Formula  string
	Declared string
	Latest   string
	Status   CheckStatus
}

// CheckResult holds the outcome of a check operation.
type CheckResult struct {
	Clean   bool // no formula is Stale or Missing
	Entries []CheckEntry
}
