package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalid is matched by every configuration error, whether it comes from
// a single malformed declaration or from whole-file validation.
var ErrInvalid = errors.New("invalid tap configuration")

// DeclarationError reports a malformed dependency, manpage or completion entry.
type DeclarationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("%s entry %q: %s", e.Field, e.Value, e.Reason)
}

func (e *DeclarationError) Is(target error) bool {
	return target == ErrInvalid
}

// completionShells are the shells Homebrew installs completions for.
var completionShells = map[string]bool{
	"bash": true,
	"zsh":  true,
	"fish": true,
	"pwsh": true,
}

// ParseDependency parses "name" or "name#keyword" where keyword is
// "optional" or "recommended".
func ParseDependency(s string) (Dependency, error) {
	parts := strings.Split(s, "#")
	if parts[0] == "" {
		return Dependency{}, &DeclarationError{Field: "deps", Value: s, Reason: "dependency name is empty"}
	}
	switch len(parts) {
	case 1:
		return Dependency{Name: parts[0]}, nil
	case 2:
		switch kind := DependencyKind(parts[1]); kind {
		case DependencyOptional, DependencyRecommended:
			return Dependency{Name: parts[0], Kind: kind}, nil
		default:
			return Dependency{}, &DeclarationError{
				Field:  "deps",
				Value:  s,
				Reason: fmt.Sprintf("unknown dependency keyword %q — use 'optional' or 'recommended'", parts[1]),
			}
		}
	default:
		return Dependency{}, &DeclarationError{
			Field:  "deps",
			Value:  s,
			Reason: `invalid dependency syntax — use "name" or "name#keyword"`,
		}
	}
}

// ParseManpage parses a manpage path whose final character is its section digit.
func ParseManpage(s string) (Manpage, error) {
	if s == "" {
		return Manpage{}, &DeclarationError{Field: "mans", Value: s, Reason: "path is empty"}
	}
	last := s[len(s)-1]
	if last < '0' || last > '9' {
		return Manpage{}, &DeclarationError{
			Field:  "mans",
			Value:  s,
			Reason: "path must end with the manual section digit (e.g. 'doc/tool.1')",
		}
	}
	return Manpage{Section: int(last - '0'), Path: s}, nil
}

// ParseCompletion infers the shell from the file extension. A file without an
// extension (the "_prog" convention) is a zsh completion.
func ParseCompletion(s string) (Completion, error) {
	if s == "" {
		return Completion{}, &DeclarationError{Field: "completions", Value: s, Reason: "path is empty"}
	}
	shell := strings.TrimPrefix(extension(s), ".")
	if shell == "" {
		shell = "zsh"
	}
	if !completionShells[shell] {
		return Completion{}, &DeclarationError{
			Field:  "completions",
			Value:  s,
			Reason: fmt.Sprintf("unknown shell %q — use a .bash, .fish or .pwsh extension, or none for zsh", shell),
		}
	}
	return Completion{Shell: shell, Path: s}, nil
}

// extension returns the extension of the last path element, ignoring leading
// dots so that ".hidden" has no extension.
func extension(p string) string {
	base := strings.TrimLeft(path.Base(p), ".")
	return path.Ext(base)
}
