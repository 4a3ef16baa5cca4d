// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// GetAndValidateURLParam extracts and decodes a URL parameter from the request.
// chi matches against RawPath when it is set, so the value is still escaped
// in that case and already decoded otherwise; it is decoded exactly once.
// Activity names contain spaces, so only empty values are rejected.
func GetAndValidateURLParam(r *http.Request, paramName string) (string, error) {
	decoded := chi.URLParam(r, paramName)

	if r.URL.RawPath != "" {
		var err error
		decoded, err = url.PathUnescape(decoded)
		if err != nil {
			return "", fmt.Errorf("invalid URL encoding in %s", paramName)
		}
	}

	if strings.TrimSpace(decoded) == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}

	return decoded, nil
}
