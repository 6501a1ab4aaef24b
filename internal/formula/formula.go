// Package formula renders Homebrew formula documents.
package formula

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/lmaotrigine/homebrew-tap/internal/config"
	"github.com/lmaotrigine/homebrew-tap/internal/platform"
)

//go:embed formula.rb.tmpl
var formulaTemplate string

var tmpl = template.Must(template.New("formula").
	Option("missingkey=error").
	Funcs(template.FuncMap{
		"dependsOn":  DependencyDirective,
		"manpage":    ManpageDirective,
		"completion": CompletionDirective,
	}).
	Parse(formulaTemplate))

// Artifact is a downloadable archive and its content digest.
type Artifact struct {
	URL    string
	SHA256 string
}

// Archives holds the archive for each supported platform.
type Archives struct {
	MacARM     Artifact
	MacIntel   Artifact
	LinuxARM   Artifact
	LinuxIntel Artifact
}

// Set records the artifact for target t.
func (a *Archives) Set(t platform.Target, artifact Artifact) error {
	switch t {
	case platform.DarwinARM:
		a.MacARM = artifact
	case platform.DarwinIntel:
		a.MacIntel = artifact
	case platform.LinuxARM:
		a.LinuxARM = artifact
	case platform.LinuxIntel:
		a.LinuxIntel = artifact
	default:
		return fmt.Errorf("unknown platform %q", t)
	}
	return nil
}

// Complete returns an error naming the first platform without a URL or digest.
func (a *Archives) Complete() error {
	for _, entry := range []struct {
		target   platform.Target
		artifact Artifact
	}{
		{platform.DarwinARM, a.MacARM},
		{platform.DarwinIntel, a.MacIntel},
		{platform.LinuxARM, a.LinuxARM},
		{platform.LinuxIntel, a.LinuxIntel},
	} {
		if entry.artifact.URL == "" || entry.artifact.SHA256 == "" {
			return fmt.Errorf("missing archive for %s", entry.target)
		}
	}
	return nil
}

// Input is everything needed to render one formula.
type Input struct {
	Formula  config.Formula
	Version  string
	Archives Archives
}

type view struct {
	ClassName   string
	Desc        string
	Homepage    string
	Version     string
	License     string
	Deps        []config.Dependency
	Bins        []string
	Mans        []config.Manpage
	Completions []config.Completion
	Archives    Archives
}

// Render produces the formula document text. Output depends only on in.
func Render(in Input) (string, error) {
	if in.Version == "" {
		return "", fmt.Errorf("rendering %s: empty version", in.Formula.Name())
	}
	if err := in.Archives.Complete(); err != nil {
		return "", fmt.Errorf("rendering %s: %w", in.Formula.Name(), err)
	}

	f := in.Formula
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, view{
		ClassName:   ClassName(f.Name()),
		Desc:        f.Desc,
		Homepage:    f.Homepage,
		Version:     in.Version,
		License:     f.License,
		Deps:        f.Deps,
		Bins:        f.Bins,
		Mans:        f.Mans,
		Completions: f.Completions,
		Archives:    in.Archives,
	})
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", f.Name(), err)
	}
	return buf.String(), nil
}

// ClassName turns a project name into the Ruby class name of its formula:
// "my-cool-tool" becomes "MyCoolTool".
func ClassName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	var b strings.Builder
	for _, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// DependencyDirective renders a depends_on argument list.
func DependencyDirective(d config.Dependency) string {
	switch d.Kind {
	case config.DependencyOptional, config.DependencyRecommended:
		return fmt.Sprintf("%q => :%s", d.Name, d.Kind)
	default:
		return fmt.Sprintf("%q", d.Name)
	}
}

// ManpageDirective renders the install line for a manual page.
func ManpageDirective(m config.Manpage) string {
	return fmt.Sprintf("man%d.install %q", m.Section, m.Path)
}

// CompletionDirective renders the install line for a completion script.
func CompletionDirective(c config.Completion) string {
	return fmt.Sprintf("%s_completion.install %q", c.Shell, c.Path)
}
