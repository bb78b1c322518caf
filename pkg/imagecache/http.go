package imagecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/pointscape/pkg/httputil"
)

// HTTPLoader confirms remote images by fetching them over HTTP. Transient
// failures (network errors, 5xx, rate limits) are retried with backoff;
// anything else fails fast and leaves the card skeletal.
type HTTPLoader struct {
	// Client overrides the HTTP client. Nil uses http.DefaultClient.
	Client *http.Client
}

// Load implements Loader.
func (l HTTPLoader) Load(ctx context.Context, src string) error {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	return httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return &httputil.RetryableError{Err: fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
		}
		return nil
	})
}

// Ensure HTTPLoader implements Loader.
var _ Loader = HTTPLoader{}
