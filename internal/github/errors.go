package github

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the GitHub REST API.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the top-level error description from GitHub, or the raw
	// body when it is not GitHub's JSON error shape.
	Message string

	// DocumentationURL points to the relevant API documentation.
	DocumentationURL string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("github: failed to get latest release: HTTP status %d: %s", err.StatusCode, err.Message)
}

// Unwrap makes every APIError match ErrUpstreamUnavailable.
func (err *APIError) Unwrap() error {
	return ErrUpstreamUnavailable
}

// IsNotFound reports whether err is a GitHub API 404 response. For the
// latest-release endpoint this usually means the repository has no
// published releases or is not visible to the token.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
		apiError.DocumentationURL = wireError.DocumentationURL
	} else {
		apiError.Message = string(body)
	}
	return apiError
}
