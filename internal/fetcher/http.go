package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

const maxErrorBody = 512

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RateLimit caps requests per second; zero means one per second.
	RateLimit rate.Limit
	Burst     int
}

// HTTPFetcher implements Fetcher with a single GET per call. It does not
// retry.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "leaderboard-cli/1.0"
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 1
	}
	if opts.Burst == 0 {
		opts.Burst = 1
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:    opts,
		limiter: rate.NewLimiter(opts.RateLimit, opts.Burst),
	}
}

// Download fetches the URL and returns the response body. Transport errors
// and any status other than 200 are reported as leaderboard fetch failures.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	op := "GET " + rawURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, leaderboard.NewFetchFailed(op, 0, eris.Wrap(err, "create request"))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, leaderboard.NewFetchFailed(op, 0, eris.Wrap(err, "rate limiter wait"))
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Warn("leaderboard request failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil, leaderboard.NewFetchFailed(op, 0, err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		zap.L().Warn("leaderboard request returned unexpected status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, leaderboard.NewFetchFailed(op, resp.StatusCode, eris.Errorf("unexpected status %d", resp.StatusCode))
	}

	zap.L().Debug("leaderboard request succeeded",
		zap.String("url", rawURL),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("content_length", resp.ContentLength),
	)
	return resp.Body, nil
}
