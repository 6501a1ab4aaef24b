// Package github resolves the latest published release of a repository
// through the GitHub REST API.
//
// Only the "latest release" endpoint is used. Any non-2xx answer is an
// upstream failure; a release without a tag is a valid "nothing to do".
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// apiVersion pins the REST API version so response shapes stay stable.
const apiVersion = "2022-11-28"

const (
	// DefaultBaseURL is the root of the public GitHub API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultUserAgent identifies this tool to GitHub.
	DefaultUserAgent = "github.com/lmaotrigine/homebrew-tap@1.0"

	maxResponseSize = 8 << 20
)

// ErrUpstreamUnavailable is matched by every failure to obtain a release
// from GitHub, whether a transport error or a non-2xx response.
var ErrUpstreamUnavailable = errors.New("upstream release index unavailable")

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to DefaultBaseURL.
	// Must use HTTPS.
	BaseURL string

	// Token is sent as the Authorization credential. May be empty for
	// unauthenticated (heavily rate limited) access.
	Token string

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// Client is a minimal GitHub releases client.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client from the given configuration.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		token:      config.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     config.Logger,
	}, nil
}

// Release is the subset of a GitHub release object this tool reads.
type Release struct {
	TagName     *string   `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// LatestRelease fetches the latest published release of owner/repo.
func (client *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", client.baseURL, owner, repo)
	client.logger.Info().
		Str("repository", owner+"/"+repo).
		Str("url", url).
		Msg("Fetching latest release")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}
	request.Header.Set("User-Agent", client.userAgent)
	request.Header.Set("Accept", "application/vnd.github.v3+json")
	request.Header.Set("X-GitHub-Api-Version", apiVersion)
	if client.token != "" {
		request.Header.Set("Authorization", "token "+client.token)
	}

	start := time.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w: %w", url, ErrUpstreamUnavailable, err)
	}
	defer response.Body.Close()

	client.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("status", response.StatusCode).
		Msg("Request completed")

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("github: reading response body: %w: %w", ErrUpstreamUnavailable, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		client.logger.Debug().Str("body", string(body)).Msg("Error response")
		return nil, parseAPIError(response.StatusCode, body)
	}

	client.logger.Debug().Int("bytes", len(body)).Msg("Response body read")

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("github: decoding release: %w: %w", ErrUpstreamUnavailable, err)
	}
	return &release, nil
}

// LatestVersion returns the normalized version of the latest release.
// ok is false when the release carries no tag, which callers treat as
// "skip this project" rather than an error.
func (client *Client) LatestVersion(ctx context.Context, owner, repo string) (string, bool, error) {
	release, err := client.LatestRelease(ctx, owner, repo)
	if IsNotFound(err) {
		client.logger.Warn().
			Str("repository", owner+"/"+repo).
			Msg("No published release, or the repository is not visible to the token")
	}
	if err != nil {
		return "", false, err
	}
	client.logger.Debug().
		Str("release", release.Name).
		Str("url", release.HTMLURL).
		Time("published", release.PublishedAt).
		Msg("Latest release")
	if release.TagName == nil || *release.TagName == "" {
		client.logger.Info().Str("repository", owner+"/"+repo).Msg("Release found but no tag_name present")
		return "", false, nil
	}
	version := NormalizeVersion(*release.TagName)
	if version == "" {
		return "", false, nil
	}
	return version, true, nil
}

// NormalizeVersion strips a single leading "v" from a tag.
func NormalizeVersion(tag string) string {
	return strings.TrimPrefix(tag, "v")
}
