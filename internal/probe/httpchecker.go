package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/statusnotifier/internal/domain"
)

// maxBodyBytes caps how much of a status file is read.
const maxBodyBytes = 1 << 10

// HTTPChecker reports Online only for an exact 200 response.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context, t domain.Target) Outcome {
	start := time.Now()
	resp, err := get(ctx, h.Client, t.URL)
	out := Outcome{Target: t.Name, Latency: time.Since(start)}
	if err != nil {
		out.Err = &ProbeError{Target: t.Name, Err: err}
		return out
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	out.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		out.Err = &ProbeError{Target: t.Name, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
		return out
	}
	out.Classified = domain.Online
	return out
}

// BodyChecker reads a small text resource whose content is the status word.
// The response code is not consulted; an error page simply fails to classify.
type BodyChecker struct {
	Client *http.Client
}

func NewBodyChecker(timeout time.Duration) *BodyChecker {
	return &BodyChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (b *BodyChecker) Check(ctx context.Context, t domain.Target) Outcome {
	start := time.Now()
	resp, err := get(ctx, b.Client, t.URL)
	out := Outcome{Target: t.Name}
	if err != nil {
		out.Latency = time.Since(start)
		out.Err = &ProbeError{Target: t.Name, Err: err}
		return out
	}
	defer resp.Body.Close()
	out.StatusCode = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	out.Latency = time.Since(start)
	if err != nil {
		out.Err = &ProbeError{Target: t.Name, StatusCode: resp.StatusCode, Err: err}
		return out
	}
	st, ok := ClassifyBody(string(raw))
	if !ok {
		out.Err = &ProbeError{Target: t.Name, StatusCode: resp.StatusCode, Err: ErrUnknownBody}
		return out
	}
	out.Classified = st
	return out
}

// ClassifyBody maps a status file body to a status. The second result is
// false when the body is not a known status word.
func ClassifyBody(body string) (domain.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "up":
		return domain.Online, true
	case "down":
		return domain.Offline, true
	case "care", "bakim", "maintenance":
		return domain.Care, true
	default:
		return domain.Offline, false
	}
}

func get(ctx context.Context, c *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
