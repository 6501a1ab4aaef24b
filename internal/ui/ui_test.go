package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmaotrigine/homebrew-tap/internal/engine"
)

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, ColorEnabled(&buf, false), "non-file writers are never styled")
	assert.False(t, ColorEnabled(os.Stdout, true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stdout, false))
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Summary(&engine.Summary{Outcomes: []engine.Outcome{
		{Kind: engine.Updated, Formula: "tool", From: "1.2.0", FromOK: true, To: "1.3.0"},
		{Kind: engine.Updated, Formula: "fresh", To: "0.1.0"},
		{Kind: engine.UpToDate, Formula: "same", From: "2.0.0", FromOK: true, To: "2.0.0"},
		{Kind: engine.Skipped, Formula: "untagged"},
	}}, false)

	out := buf.String()
	assert.Contains(t, out, "Formulas bumped:\n")
	assert.Contains(t, out, "  tool 1.2.0 → 1.3.0\n")
	assert.Contains(t, out, "  fresh (new) → 0.1.0\n")
	assert.Contains(t, out, "1 up to date, 1 without a release")
	assert.NotContains(t, out, "\x1b[", "plain output carries no escape codes")
}

func TestSummaryNothingBumped(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Summary(&engine.Summary{}, true)
	assert.Equal(t, "No formulas were bumped\n", buf.String())
}

func TestSummaryDryRunTitle(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Summary(&engine.Summary{Outcomes: []engine.Outcome{
		{Kind: engine.Updated, Formula: "tool", To: "1.0.0"},
	}}, true)
	assert.True(t, strings.HasPrefix(buf.String(), "Formulas that would be bumped:\n"))
}

func TestCheckTable(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Check(&engine.CheckResult{
		Clean: false,
		Entries: []engine.CheckEntry{
			{Formula: "a", Declared: "1.0.0", Latest: "1.0.0", Status: engine.Current},
			{Formula: "longer-name", Declared: "1.0.0", Latest: "2.0.0", Status: engine.Stale},
			{Formula: "c", Latest: "3.0.0", Status: engine.Missing},
			{Formula: "d", Declared: "4.0.0", Status: engine.NoRelease},
		},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "FORMULA"))
	assert.Contains(t, lines[2], "longer-name")
	assert.Contains(t, lines[2], "stale")
	assert.Contains(t, lines[3], "missing")
	assert.Contains(t, lines[4], "no release")
	assert.NotContains(t, buf.String(), "All formulas are current")

	// Columns line up after the name column.
	assert.Equal(t, strings.Index(lines[1], "1.0.0"), strings.Index(lines[2], "1.0.0"))
}

func TestCheckClean(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Check(&engine.CheckResult{Clean: true})
	assert.Contains(t, buf.String(), "All formulas are current")
}
