// Package fetcher downloads leaderboard pages over HTTP.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body. The caller
	// closes the body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// BuildURL sets the skip and limit pagination parameters on base, keeping
// any other query parameters it already carries.
func BuildURL(base string, skip, limit int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: parse url %q", base)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", eris.Errorf("fetcher: url %q must be absolute", base)
	}
	q := u.Query()
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
