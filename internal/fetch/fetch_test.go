package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmaotrigine/homebrew-tap/internal/cache"
)

func sha(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestDigest(t *testing.T) {
	const body = "archive contents"
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte(body))
	}))
	defer server.Close()

	f := &Fetcher{Client: server.Client(), UserAgent: "tap-test", Logger: zerolog.Nop()}
	digest, err := f.Digest(context.Background(), server.URL+"/tool-x86_64-apple-darwin.tar.xz")
	require.NoError(t, err)
	assert.Equal(t, sha(body), digest)
	assert.Len(t, digest, 64)
	assert.Equal(t, "tap-test", userAgent)
}

func TestDigestDryRun(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	url := server.URL + "/tool-aarch64-apple-darwin.tar.xz"
	f := &Fetcher{Client: server.Client(), DryRun: true}

	first, err := f.Digest(context.Background(), url)
	require.NoError(t, err)
	second, err := f.Digest(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, sha(url), first)
	assert.Equal(t, first, second)
	assert.Zero(t, hits.Load(), "dry run must not touch the network")
}

func TestDigestNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := &Fetcher{Client: server.Client()}
	_, err := f.Digest(context.Background(), server.URL+"/missing.tar.xz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP status 404")
}

func TestDigestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL + "/a.tar.xz"
	server.Close()

	f := &Fetcher{Client: http.DefaultClient}
	_, err := f.Digest(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestDigestCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Fetcher{Client: server.Client()}).Digest(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDigestMaxSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	_, err := (&Fetcher{Client: server.Client(), MaxSize: 5}).Digest(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "max size")

	digest, err := (&Fetcher{Client: server.Client(), MaxSize: 10}).Digest(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, sha("0123456789"), digest)
}

func TestDigestKeepsArchive(t *testing.T) {
	const body = "kept archive"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	c, err := cache.New(t.TempDir())
	require.NoError(t, err)

	url := server.URL + "/tool-x86_64-unknown-linux-musl.tar.xz"
	digest, err := (&Fetcher{Client: server.Client(), Cache: c}).Digest(context.Background(), url)
	require.NoError(t, err)

	data, found, err := c.Get(digest)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, body, string(data))

	entries, err := c.Entries()
	require.NoError(t, err)
	assert.Equal(t, []cache.Entry{{Digest: digest, URL: url}}, entries)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{URL: "https://x/y", Err: errors.New("boom"), Hint: "try again"}
	assert.Equal(t, "failed to download https://x/y: boom — try again", err.Error())
}

func TestDigestReusesKeptArchive(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("release bytes"))
	}))
	defer server.Close()

	c, err := cache.New(t.TempDir())
	require.NoError(t, err)
	f := &Fetcher{Client: server.Client(), Cache: c, Logger: zerolog.Nop()}
	url := server.URL + "/tool-aarch64-unknown-linux-musl.tar.xz"

	first, err := f.Digest(context.Background(), url)
	require.NoError(t, err)
	second, err := f.Digest(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, sha("release bytes"), first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, hits.Load(), "second digest must come from the kept archive")
}

func TestDigestRedownloadsCorruptKeptArchive(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("release bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	c, err := cache.New(dir)
	require.NoError(t, err)
	f := &Fetcher{Client: server.Client(), Cache: c, Logger: zerolog.Nop()}
	url := server.URL + "/tool.tar.xz"

	digest, err := f.Digest(context.Background(), url)
	require.NoError(t, err)
	object := filepath.Join(dir, "objects", digest[:2], digest)
	require.NoError(t, os.WriteFile(object, []byte("tampered"), 0644))

	again, err := f.Digest(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, digest, again)
	assert.EqualValues(t, 2, hits.Load())
}
