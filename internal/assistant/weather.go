package assistant

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/spec-kit/voice-support-agent/internal/config"
)

// WttrClient looks up current conditions from a wttr.in-compatible endpoint.
type WttrClient struct {
	baseURL string
	timeout time.Duration
}

// NewWttrClient creates a client from config.
func NewWttrClient(cfg config.WeatherConfig) *WttrClient {
	return &WttrClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.WeatherTimeout(),
	}
}

// Current returns a short "<condition> <temperature>" string for the location.
// Returns early with ctx.Err() when the context ends before the lookup does.
func (c *WttrClient) Current(ctx context.Context, location string) (string, error) {
	type lookupResult struct {
		body   string
		status int
		err    error
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(fmt.Sprintf("%s/%s?format=%%C+%%t", c.baseURL, url.PathEscape(location)))
	req.Header.SetMethod(fasthttp.MethodGet)

	// The goroutine owns req and resp from here on. They go back to the
	// fasthttp pools only after DoTimeout has returned and the body has been
	// copied out, even when the caller already left on ctx.Done.
	resC := make(chan lookupResult, 1)
	go func() {
		err := fasthttp.DoTimeout(req, resp, c.timeout)
		res := lookupResult{err: err}
		if err == nil {
			res.status = resp.StatusCode()
			res.body = strings.TrimSpace(string(resp.Body()))
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
		resC <- res
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resC:
		if res.err != nil {
			return "", fmt.Errorf("weather request: %w", res.err)
		}
		if res.status != fasthttp.StatusOK {
			return "", fmt.Errorf("weather lookup failed with status %d", res.status)
		}
		return res.body, nil
	}
}
