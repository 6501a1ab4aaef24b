// Package cache keeps downloaded release archives on disk, addressed by
// their SHA-256 digest, together with an index recording which URL each
// digest was computed from.
package cache

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// IndexFile is the name of the digest index inside the cache directory. Its
// lines use the sha256sum layout: "<digest>  <url>".
const IndexFile = "SHA256SUMS"

// Cache provides content-addressed archive storage.
// Archives are stored by their SHA256 digest and verified on retrieval.
type Cache struct {
	dir string
	mu  sync.Mutex // serialises index appends
}

// Entry is one line of the index.
type Entry struct {
	Digest string
	URL    string
}

// New creates a Cache at the given directory.
// The directory is created if it does not exist.
func New(dir string) (*Cache, error) {
	objDir := filepath.Join(dir, "objects")
	if err := os.MkdirAll(objDir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive cache %s: %w", objDir, err)
	}
	return &Cache{dir: dir}, nil
}

// DefaultDir returns the default archive directory under the XDG cache home.
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "tap", "archives")
}

// Get returns the archive stored under digest. A missing object is a miss.
// An object whose bytes no longer hash to digest is deleted and reported as
// a miss.
func (c *Cache) Get(digest string) ([]byte, bool, error) {
	path := c.objectPath(digest)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("reading archive %s: %w", digest, err)
	case ComputeHash(data) != digest:
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("dropping corrupt archive %s: %w", digest, err)
		}
		return nil, false, nil
	}
	return data, true, nil
}

// Put stores content under digest, which it must hash to. An archive that is
// already present is left alone.
func (c *Cache) Put(digest string, content []byte) error {
	if actual := ComputeHash(content); actual != digest {
		return fmt.Errorf("archive hashes to %s, not %s", actual, digest)
	}
	if c.Has(digest) {
		return nil
	}
	return writeAtomic(c.objectPath(digest), content)
}

// Lookup returns the digest most recently noted for url, provided its object
// is still present.
func (c *Cache) Lookup(url string) (string, bool, error) {
	entries, err := c.Entries()
	if err != nil {
		return "", false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].URL == url && c.Has(entries[i].Digest) {
			return entries[i].Digest, true, nil
		}
	}
	return "", false, nil
}

// Note appends a digest/URL pair to the index. Safe for concurrent use.
func (c *Cache) Note(url, digest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(c.dir, IndexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening archive index: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s  %s\n", digest, url); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing archive index: %w", err)
	}
	return f.Close()
}

// Entries returns the index in the order it was written. A missing index
// yields no entries.
func (c *Cache) Entries() ([]Entry, error) {
	f, err := os.Open(filepath.Join(c.dir, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening archive index: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		digest, url, ok := strings.Cut(scanner.Text(), "  ")
		if !ok || digest == "" {
			continue
		}
		entries = append(entries, Entry{Digest: digest, URL: url})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading archive index: %w", err)
	}
	return entries, nil
}

// Has reports whether an object file exists for digest. Its content is not
// verified.
func (c *Cache) Has(digest string) bool {
	info, err := os.Stat(c.objectPath(digest))
	return err == nil && info.Mode().IsRegular()
}

// Size returns the total size of the cache in bytes.
func (c *Cache) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// Path returns the cache directory path.
func (c *Cache) Path() string {
	return c.dir
}

func (c *Cache) objectPath(digest string) string {
	if len(digest) < 2 {
		return filepath.Join(c.dir, "objects", digest)
	}
	return filepath.Join(c.dir, "objects", digest[:2], digest)
}

func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return fmt.Errorf("storing archive: %w", err)
	}

	_, err = tmp.Write(content)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("storing archive %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ComputeHash computes the SHA256 digest of content as lowercase hex.
func ComputeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
