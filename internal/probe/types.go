package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamed0406/statusnotifier/internal/domain"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrUnknownBody      = errors.New("unrecognized status body")
)

// ProbeError keeps the reason a probe could not produce a status.
// StatusCode is 0 for transport failures.
type ProbeError struct {
	Target     string
	StatusCode int
	Err        error
}

func (e *ProbeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("probe %s: %v (http %d)", e.Target, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("probe %s: %v", e.Target, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Outcome is the result of one probe: either a classified status or an error.
type Outcome struct {
	Target     string
	StatusCode int
	Latency    time.Duration
	Classified domain.Status
	Err        error
}

// Status collapses the outcome to a status. Any error means Offline.
func (o Outcome) Status() domain.Status {
	if o.Err != nil {
		return domain.Offline
	}
	return o.Classified
}

// Transport reports whether the probe failed before any HTTP response.
func (o Outcome) Transport() bool {
	return o.Err != nil && o.StatusCode == 0
}

// Checker probes a single target. Implementations never panic on network
// failures; they report them in Outcome.Err.
type Checker interface {
	Check(ctx context.Context, t domain.Target) Outcome
}
