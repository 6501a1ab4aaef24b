package config

import "strings"

// Defaults applied when the corresponding keys are absent.
const (
	DefaultArchiveFormat = "{name}-{arch}.{ext}"
	DefaultExtension     = "tar.xz"
	DefaultFormulaDir    = "Formula"
	DefaultPushBranch    = "mistress"
	DefaultAuthorName    = "homebrew-tap"
	DefaultAuthorEmail   = "isis@5ht2.me"
)

// File is the on-disk shape of the tap configuration (.tap.toml or .tap.yaml).
type File struct {
	Tap     TapSettings   `toml:"tap" yaml:"tap"`
	Formula []FormulaFile `toml:"formula" yaml:"formula"`
}

// TapSettings holds repository-wide settings.
type TapSettings struct {
	FormulaDir  string `toml:"formula_dir" yaml:"formula_dir"`
	PushBranch  string `toml:"push_branch" yaml:"push_branch"`
	AuthorName  string `toml:"author_name" yaml:"author_name"`
	AuthorEmail string `toml:"author_email" yaml:"author_email"`
}

// FormulaFile is a single [[formula]] entry as written by the user.
// Optional fields are pointers so that an explicit empty value can be
// told apart from an absent key.
type FormulaFile struct {
	Repo        string   `toml:"repo" yaml:"repo"`
	Homepage    string   `toml:"homepage" yaml:"homepage"`
	Desc        string   `toml:"desc" yaml:"desc"`
	License     string   `toml:"license" yaml:"license"`
	Bins        []string `toml:"bins" yaml:"bins"`
	Mans        []string `toml:"mans" yaml:"mans"`
	Deps        []string `toml:"deps" yaml:"deps"`
	Completions []string `toml:"completions" yaml:"completions"`
	ArchiveFmt  *string  `toml:"archive_fmt" yaml:"archive_fmt"`
	LinuxExt    *string  `toml:"linux_ext" yaml:"linux_ext"`
	DarwinExt   *string  `toml:"darwin_ext" yaml:"darwin_ext"`
}

// Config is the validated tap configuration.
type Config struct {
	Tap      TapSettings
	Formulas []Formula
}

// Formula is a tracked upstream project. Immutable once loaded.
type Formula struct {
	Repo          string
	Homepage      string
	Desc          string
	License       string
	Bins          []string
	Mans          []Manpage
	Deps          []Dependency
	Completions   []Completion
	ArchiveFormat string
	LinuxExt      string
	DarwinExt     string
}

// Org returns the GitHub organization (the part of Repo before the slash).
func (f Formula) Org() string {
	org, _, _ := strings.Cut(f.Repo, "/")
	return org
}

// Name returns the project name (the part of Repo after the slash).
func (f Formula) Name() string {
	_, name, _ := strings.Cut(f.Repo, "/")
	return name
}

// DependencyKind qualifies a depends_on declaration.
type DependencyKind string

const (
	DependencyRequired    DependencyKind = ""
	DependencyOptional    DependencyKind = "optional"
	DependencyRecommended DependencyKind = "recommended"
)

// Dependency is a formula dependency with an optional qualifier.
type Dependency struct {
	Name string
	Kind DependencyKind
}

// Manpage is a manual page to install into man<Section>.
type Manpage struct {
	Section int
	Path    string
}

// Completion is a shell completion script for the given shell.
type Completion struct {
	Shell string
	Path  string
}
