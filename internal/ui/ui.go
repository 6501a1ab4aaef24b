// Package ui renders run results for the operator.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/lmaotrigine/homebrew-tap/internal/engine"
)

// ColorEnabled reports whether styled output should be written to w.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}

// Printer writes summaries to an output stream.
type Printer struct {
	w      io.Writer
	name   lipgloss.Style
	old    lipgloss.Style
	new    lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
	status map[engine.CheckStatus]lipgloss.Style
}

// NewPrinter returns a Printer for w. With color false every style renders
// as plain text.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	style := r.NewStyle
	return &Printer{
		w:      w,
		name:   style().Foreground(lipgloss.Color("14")),
		old:    style().Foreground(lipgloss.Color("9")),
		new:    style().Foreground(lipgloss.Color("10")).Bold(true),
		muted:  style().Foreground(lipgloss.Color("8")),
		header: style().Bold(true),
		status: map[engine.CheckStatus]lipgloss.Style{
			engine.Current:   style().Foreground(lipgloss.Color("10")),
			engine.Stale:     style().Foreground(lipgloss.Color("11")).Bold(true),
			engine.Missing:   style().Foreground(lipgloss.Color("9")).Bold(true),
			engine.NoRelease: style().Foreground(lipgloss.Color("8")),
		},
	}
}

// Summary prints the outcome of an update run.
func (p *Printer) Summary(summary *engine.Summary, dryRun bool) {
	bumped := summary.Bumped()
	if len(bumped) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("No formulas were bumped"))
	} else {
		title := "Formulas bumped:"
		if dryRun {
			title = "Formulas that would be bumped:"
		}
		fmt.Fprintln(p.w, p.header.Render(title))
		for _, o := range bumped {
			from := "(new)"
			if o.FromOK {
				from = o.From
			}
			fmt.Fprintf(p.w, "  %s %s → %s\n", p.name.Render(o.Formula), p.old.Render(from), p.new.Render(o.To))
		}
	}

	var upToDate, skipped int
	for _, o := range summary.Outcomes {
		switch o.Kind {
		case engine.UpToDate:
			upToDate++
		case engine.Skipped:
			skipped++
		}
	}
	if upToDate+skipped > 0 {
		fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf("%d up to date, %d without a release", upToDate, skipped)))
	}
}

// Check prints a staleness table.
func (p *Printer) Check(result *engine.CheckResult) {
	width := len("FORMULA")
	for _, e := range result.Entries {
		width = max(width, len(e.Formula))
	}
	row := lipgloss.NewStyle().Width(width + 2).Render

	fmt.Fprintln(p.w, p.header.Render(row("FORMULA")+fmt.Sprintf("%-12s%-12s%s", "DECLARED", "LATEST", "STATUS")))
	for _, e := range result.Entries {
		declared := e.Declared
		if e.Status == engine.Missing {
			declared = "-"
		}
		latest := e.Latest
		if e.Status == engine.NoRelease {
			latest = "-"
		}
		fmt.Fprintf(p.w, "%s%-12s%-12s%s\n",
			p.name.Render(row(e.Formula)), declared, latest, p.status[e.Status].Render(e.Status.String()))
	}

	if result.Clean {
		fmt.Fprintln(p.w, p.muted.Render("All formulas are current"))
	}
}
