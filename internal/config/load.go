package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads, schema-checks and validates a tap configuration file.
// The format is chosen from the file extension (.toml, .yaml or .yml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, formatOf(path))
}

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes and validates configuration data in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	var doc map[string]any
	if err := decode(data, format, &doc); err != nil {
		return nil, err
	}
	if errs := checkSchema(doc); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	var file File
	if err := decode(data, format, &file); err != nil {
		return nil, err
	}

	cfg, errs := build(&file)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

func decode(data []byte, format Format, v any) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

var (
	repoPattern        = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
	placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)
)

var archivePlaceholders = map[string]bool{
	"name":    true,
	"version": true,
	"arch":    true,
	"ext":     true,
}

func build(f *File) (*Config, []string) {
	var errs []string
	cfg := &Config{Tap: withTapDefaults(f.Tap)}

	if len(f.Formula) == 0 {
		errs = append(errs, "at least one [[formula]] entry is required")
	}

	names := make(map[string]bool)
	for i, ff := range f.Formula {
		prefix := fmt.Sprintf("formula[%d]", i)
		if ff.Repo != "" {
			prefix = fmt.Sprintf("formula '%s'", ff.Repo)
		}

		formula, ferrs := buildFormula(ff, prefix)
		errs = append(errs, ferrs...)
		if len(ferrs) > 0 {
			continue
		}

		if names[formula.Name()] {
			errs = append(errs, fmt.Sprintf("%s: duplicate formula name '%s'", prefix, formula.Name()))
			continue
		}
		names[formula.Name()] = true
		cfg.Formulas = append(cfg.Formulas, formula)
	}

	if strings.Contains(cfg.Tap.FormulaDir, "..") || filepath.IsAbs(cfg.Tap.FormulaDir) {
		errs = append(errs, fmt.Sprintf("tap: formula_dir '%s' must be a relative path inside the tap", cfg.Tap.FormulaDir))
	}

	return cfg, errs
}

func buildFormula(ff FormulaFile, prefix string) (Formula, []string) {
	var errs []string

	switch {
	case ff.Repo == "":
		errs = append(errs, fmt.Sprintf("%s: 'repo' is required — use 'organization/name'", prefix))
	case !repoPattern.MatchString(ff.Repo) || strings.Contains(ff.Repo, ".."):
		errs = append(errs, fmt.Sprintf("%s: 'repo' must have the form 'organization/name'", prefix))
	}
	required := []struct{ key, value string }{
		{"homepage", ff.Homepage},
		{"desc", ff.Desc},
		{"license", ff.License},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Sprintf("%s: '%s' is required", prefix, r.key))
		}
	}

	f := Formula{
		Repo:          ff.Repo,
		Homepage:      ff.Homepage,
		Desc:          ff.Desc,
		License:       ff.License,
		Bins:          ff.Bins,
		ArchiveFormat: stringOr(ff.ArchiveFmt, DefaultArchiveFormat),
		LinuxExt:      stringOr(ff.LinuxExt, DefaultExtension),
		DarwinExt:     stringOr(ff.DarwinExt, DefaultExtension),
	}

	for _, b := range ff.Bins {
		if strings.TrimSpace(b) == "" {
			errs = append(errs, fmt.Sprintf("%s: 'bins' entries must not be empty", prefix))
		}
	}
	for _, s := range ff.Deps {
		dep, err := ParseDependency(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", prefix, err))
			continue
		}
		f.Deps = append(f.Deps, dep)
	}
	for _, s := range ff.Mans {
		man, err := ParseManpage(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", prefix, err))
			continue
		}
		f.Mans = append(f.Mans, man)
	}
	for _, s := range ff.Completions {
		c, err := ParseCompletion(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", prefix, err))
			continue
		}
		f.Completions = append(f.Completions, c)
	}

	errs = append(errs, checkArchiveFormat(f.ArchiveFormat, prefix)...)
	if f.LinuxExt == "" {
		errs = append(errs, fmt.Sprintf("%s: 'linux_ext' must not be empty", prefix))
	}
	if f.DarwinExt == "" {
		errs = append(errs, fmt.Sprintf("%s: 'darwin_ext' must not be empty", prefix))
	}

	return f, errs
}

func checkArchiveFormat(format, prefix string) []string {
	var errs []string
	hasArch := false
	for _, m := range placeholderPattern.FindAllStringSubmatch(format, -1) {
		switch {
		case m[1] == "arch":
			hasArch = true
		case !archivePlaceholders[m[1]]:
			errs = append(errs, fmt.Sprintf("%s: 'archive_fmt' has unknown placeholder {%s} — use {name}, {version}, {arch} or {ext}", prefix, m[1]))
		}
	}
	if !hasArch {
		errs = append(errs, fmt.Sprintf("%s: 'archive_fmt' must contain {arch} so each platform gets its own archive", prefix))
	}
	return errs
}

func withTapDefaults(t TapSettings) TapSettings {
	if t.FormulaDir == "" {
		t.FormulaDir = DefaultFormulaDir
	}
	if t.PushBranch == "" {
		t.PushBranch = DefaultPushBranch
	}
	if t.AuthorName == "" {
		t.AuthorName = DefaultAuthorName
	}
	if t.AuthorEmail == "" {
		t.AuthorEmail = DefaultAuthorEmail
	}
	return t
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
