// Package platform maps a tracked project and version to the download URLs
// of its four prebuilt release archives.
package platform

import (
	"strings"

	"github.com/lmaotrigine/homebrew-tap/internal/config"
)

// Target is an architecture triple naming one prebuilt archive.
type Target string

const (
	DarwinARM   Target = "aarch64-apple-darwin"
	DarwinIntel Target = "x86_64-apple-darwin"
	LinuxARM    Target = "aarch64-unknown-linux-musl"
	LinuxIntel  Target = "x86_64-unknown-linux-musl"
)

// All lists every target in the order archives are located and fetched.
var All = []Target{DarwinARM, DarwinIntel, LinuxARM, LinuxIntel}

// DefaultBaseURL is the host serving release downloads.
const DefaultBaseURL = "https://github.com"

// IsDarwin reports whether the target is a macOS triple.
func (t Target) IsDarwin() bool {
	return strings.HasSuffix(string(t), "darwin")
}

func (t Target) String() string {
	return string(t)
}

// Artifact is the located download for one target.
type Artifact struct {
	Target Target
	URL    string
}

// Locator builds release download URLs. The zero value uses DefaultBaseURL.
type Locator struct {
	BaseURL string
}

// Locate returns the download URL of the archive for target t.
// It is pure: equal inputs always give equal URLs.
func (l *Locator) Locate(f config.Formula, version string, t Target) string {
	base := DefaultBaseURL
	if l != nil && l.BaseURL != "" {
		base = strings.TrimRight(l.BaseURL, "/")
	}
	return base + "/" + f.Org() + "/" + f.Name() + "/releases/download/" + version + "/" + ArchiveName(f, version, t)
}

// LocateAll returns one artifact per target, in All order.
func (l *Locator) LocateAll(f config.Formula, version string) []Artifact {
	artifacts := make([]Artifact, 0, len(All))
	for _, t := range All {
		artifacts = append(artifacts, Artifact{Target: t, URL: l.Locate(f, version, t)})
	}
	return artifacts
}

// ArchiveName expands the formula's archive pattern for target t.
func ArchiveName(f config.Formula, version string, t Target) string {
	ext := f.LinuxExt
	if t.IsDarwin() {
		ext = f.DarwinExt
	}
	pattern := f.ArchiveFormat
	if pattern == "" {
		pattern = config.DefaultArchiveFormat
	}
	return strings.NewReplacer(
		"{name}", f.Name(),
		"{version}", version,
		"{arch}", string(t),
		"{ext}", ext,
	).Replace(pattern)
}
