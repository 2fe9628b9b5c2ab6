package probe

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/statusnotifier/internal/domain"
)

// Prober dispatches each target to the checker for its kind.
type Prober struct {
	HTTP Checker
	Body Checker
}

func NewProber(timeout time.Duration) *Prober {
	return &Prober{
		HTTP: NewHTTPChecker(timeout),
		Body: NewBodyChecker(timeout),
	}
}

func (p *Prober) Check(ctx context.Context, t domain.Target) Outcome {
	if t.Kind == domain.KindBody {
		return p.Body.Check(ctx, t)
	}
	return p.HTTP.Check(ctx, t)
}

// ProbeAll checks every target in parallel and waits for all of them.
// Results keep the order of targets.
func ProbeAll(ctx context.Context, c Checker, targets []domain.Target) []Outcome {
	out := make([]Outcome, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t domain.Target) {
			defer wg.Done()
			out[i] = c.Check(ctx, t)
		}(i, t)
	}
	wg.Wait()
	return out
}
