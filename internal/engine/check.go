package engine

import (
	"context"

	"github.com/lmaotrigine/homebrew-tap/internal/config"
)

// Check compares stored documents with the latest upstream releases without
// fetching archives or writing anything. It stops at the first error.
func (r *Reconciler) Check(ctx context.Context, formulas []config.Formula, names []string) (*CheckResult, error) {
	selected, err := Select(formulas, names)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Clean: true}
	for _, f := range selected {
		name := f.Name()

		latest, ok, err := r.Releases.LatestVersion(ctx, f.Org(), name)
		if err != nil {
			return result, &FormulaError{Formula: name, Err: err}
		}
		declared, declaredOK, err := r.Store.DeclaredVersion(name)
		if err != nil {
			return result, &FormulaError{Formula: name, Err: err}
		}

		entry := CheckEntry{Formula: name, Declared: declared, Latest: latest}
		switch {
		case !ok:
			entry.Status = NoRelease
		case !declaredOK:
			entry.Status = Missing
			result.Clean = false
		case declared != latest:
			entry.Status = Stale
			result.Clean = false
		default:
			entry.Status = Current
		}

		r.Logger.Debug().
			Str("formula", name).
			Str("declared", declared).
			Str("latest", latest).
			Stringer("status", entry.Status).
			Msg("Checked formula")
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}
