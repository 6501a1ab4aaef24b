// Package store reads and writes formula documents inside a tap checkout.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Store locates formula documents under Root/Dir.
type Store struct {
	Root   string // tap checkout
	Dir    string // formula directory relative to Root
	Logger zerolog.Logger
}

// Path returns the absolute path of the formula document for name. The
// result is guaranteed to lie within Root after symlink resolution.
func (s *Store) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid formula name %q", name)
	}
	return containedPath(s.Root, filepath.Join(s.Dir, name+".rb"))
}

// DeclaredVersion returns the version recorded in the stored document for
// name. ok is false when the document does not exist. A document without a
// parseable version line is also reported as absent so it gets regenerated.
func (s *Store) DeclaredVersion(name string) (string, bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}

	version, ok := ParseVersion(data)
	if !ok {
		s.Logger.Warn().Str("path", path).Msg("No version line found, formula will be regenerated")
	}
	return version, ok, nil
}

// ParseVersion extracts the value of the first line starting with the token
// "version": the text between its first and second double quote.
func ParseVersion(document []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(document))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "version") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 3 {
			return "", false
		}
		return parts[1], true
	}
	return "", false
}

// Write replaces the document for name with content, creating the formula
// directory when needed, and returns the path written.
func (s *Store) Write(name, content string) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Temp file in the same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".tap-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	s.Logger.Info().Str("path", path).Msg("Formula written")
	return path, nil
}

// containedPath joins rel onto root and verifies that the result, with
// symlinks resolved, stays inside root.
func containedPath(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving tap root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving tap root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, rel))
	resolved, err := resolveExisting(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", rel, err)
	}

	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the tap root '%s'", rel, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExisting resolves symlinks for the longest existing prefix of path
// and appends the rest unchanged.
func resolveExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir, base := filepath.Dir(path), filepath.Base(path)
	if dir == path {
		return path, nil
	}
	resolvedDir, err := resolveExisting(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
