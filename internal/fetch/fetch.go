// Package fetch downloads release archives and computes their SHA-256 digests.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lmaotrigine/homebrew-tap/internal/cache"
)

// ErrFetchFailed is matched by every failure to obtain an artifact.
var ErrFetchFailed = errors.New("artifact fetch failed")

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Error describes a failed download of a single artifact.
type Error struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
	Hint       string
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.StatusCode != 0:
		msg = fmt.Sprintf("failed to download %s: HTTP status %d", e.URL, e.StatusCode)
	default:
		msg = fmt.Sprintf("failed to download %s: %s", e.URL, e.Err)
	}
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// Fetcher downloads artifacts and returns their digests.
type Fetcher struct {
	Client    HTTPClient
	DryRun    bool          // return a placeholder digest derived from the URL; no network
	MaxSize   int64         // max archive size in bytes (0 = no limit)
	Timeout   time.Duration // per-download timeout (0 = no extra timeout beyond context)
	Cache     *cache.Cache  // when set, archive bytes are kept content-addressed
	UserAgent string
	Logger    zerolog.Logger
}

// Digest returns the lowercase hex SHA-256 of the resource at url.
//
// In dry-run mode the digest is the SHA-256 of the URL string itself. The
// value is deterministic and obviously synthetic.
func (f *Fetcher) Digest(ctx context.Context, url string) (string, error) {
	if f.DryRun {
		f.Logger.Debug().Str("url", url).Msg("Dry run, hashing URL instead of downloading")
		return hashHex([]byte(url)), nil
	}

	if f.Cache != nil {
		if digest, ok := f.reuse(url); ok {
			return digest, nil
		}
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	f.Logger.Info().Str("url", url).Msg("Downloading")
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: err, Hint: "check network connectivity and URL"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			URL:        url,
			StatusCode: resp.StatusCode,
			Hint:       "check that the release publishes an archive for every platform",
		}
	}

	var reader io.Reader = resp.Body
	if f.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, f.MaxSize+1)
	}

	h := sha256.New()
	var sink io.Writer = h
	var kept *bytes.Buffer
	if f.Cache != nil {
		kept = &bytes.Buffer{}
		sink = io.MultiWriter(h, kept)
	}

	n, err := io.Copy(sink, reader)
	if err != nil {
		return "", &Error{URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}
	if f.MaxSize > 0 && n > f.MaxSize {
		return "", &Error{
			URL:  url,
			Err:  fmt.Errorf("archive exceeds max size %d bytes", f.MaxSize),
			Hint: "raise the download size limit",
		}
	}

	digest := sumHex(h)
	f.Logger.Info().
		Str("url", url).
		Int64("bytes", n).
		Dur("elapsed", time.Since(start)).
		Str("sha256", digest).
		Msg("Downloaded")

	if kept != nil {
		if err := f.keep(url, digest, kept.Bytes()); err != nil {
			f.Logger.Warn().Err(err).Str("url", url).Msg("Could not keep archive")
		}
	}

	return digest, nil
}

// reuse returns the digest of an archive kept by an earlier run for url. The
// bytes are re-hashed before they are trusted.
func (f *Fetcher) reuse(url string) (string, bool) {
	digest, ok, err := f.Cache.Lookup(url)
	if err == nil && ok {
		_, ok, err = f.Cache.Get(digest)
	}
	if err != nil {
		f.Logger.Warn().Err(err).Str("url", url).Msg("Could not read kept archive, downloading")
		return "", false
	}
	if !ok {
		return "", false
	}
	f.Logger.Info().Str("url", url).Str("sha256", digest).Msg("Using kept archive")
	return digest, true
}

func (f *Fetcher) keep(url, digest string, content []byte) error {
	if err := f.Cache.Put(digest, content); err != nil {
		return err
	}
	return f.Cache.Note(url, digest)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sumHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
