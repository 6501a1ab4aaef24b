package vcs

import (
	"fmt"
	"net/url"
	"strings"
)

// RemoteURL is a git remote address broken into its URL components.
type RemoteURL struct {
	Scheme      string
	User        string
	Password    string
	HasPassword bool
	Host        string
	Path        string
	RawQuery    string
	Fragment    string
}

// ParseRemote parses a remote address. The scp-like SSH form
// "git@host:org/repo.git" is rewritten to "https://host/org/repo.git".
func ParseRemote(raw string) (RemoteURL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RemoteURL{}, fmt.Errorf("empty remote URL")
	}

	if !strings.Contains(raw, "://") {
		userHost, path, ok := strings.Cut(raw, ":")
		if !ok || path == "" {
			return RemoteURL{}, fmt.Errorf("unsupported remote URL %q", raw)
		}
		_, host, hasUser := strings.Cut(userHost, "@")
		if !hasUser {
			host = userHost
		}
		raw = "https://" + host + "/" + strings.TrimPrefix(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return RemoteURL{}, fmt.Errorf("parsing remote URL: %w", err)
	}
	if u.Host == "" {
		return RemoteURL{}, fmt.Errorf("remote URL %q has no host", raw)
	}

	remote := RemoteURL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}
	if u.User != nil {
		remote.User = u.User.Username()
		remote.Password, remote.HasPassword = u.User.Password()
	}
	return remote, nil
}

// WithBasicAuth returns a copy of r whose userinfo is replaced by
// user:password. Any credentials already present are dropped.
func (r RemoteURL) WithBasicAuth(user, password string) RemoteURL {
	r.User = user
	r.Password = password
	r.HasPassword = true
	return r
}

// String reassembles the URL.
func (r RemoteURL) String() string {
	u := url.URL{
		Scheme:   r.Scheme,
		Host:     r.Host,
		Path:     r.Path,
		RawQuery: r.RawQuery,
		Fragment: r.Fragment,
	}
	switch {
	case r.HasPassword:
		u.User = url.UserPassword(r.User, r.Password)
	case r.User != "":
		u.User = url.User(r.User)
	}
	return u.String()
}

// OrgRepo returns "org/repo" from the URL path, without a ".git" suffix.
func (r RemoteURL) OrgRepo() string {
	parts := strings.Split(strings.Trim(strings.TrimSuffix(r.Path, ".git"), "/"), "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}

// pushRemote picks the push URL from `git remote -v` output.
func pushRemote(remotes string) (RemoteURL, error) {
	for _, line := range strings.Split(remotes, "\n") {
		if !strings.Contains(line, "(push)") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		return ParseRemote(fields[1])
	}
	return RemoteURL{}, fmt.Errorf("no push remote configured")
}
