package uptime

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/repo"
)

// Accumulator owns the per-target uptime counters. The in-memory copy is
// authoritative; the store only mirrors it.
type Accumulator struct {
	store repo.UptimeStore
	log   *zap.Logger

	mu       sync.RWMutex
	counters map[string]domain.UptimeCounter
}

// New loads the stored counters. A missing or unreadable store starts from
// zero; the problem is logged and the next Record overwrites it.
func New(ctx context.Context, store repo.UptimeStore, log *zap.Logger) *Accumulator {
	a := &Accumulator{store: store, log: log, counters: map[string]domain.UptimeCounter{}}
	loaded, err := store.Load(ctx)
	if err != nil {
		log.Warn("uptime_load_failed", zap.Error(err))
		return a
	}
	for name, c := range loaded {
		if c.Total < 0 || c.Up < 0 || c.Up > c.Total {
			log.Warn("uptime_counter_invalid",
				zap.String("target", name),
				zap.Int64("up", c.Up),
				zap.Int64("total", c.Total),
			)
			continue
		}
		a.counters[name] = c
	}
	log.Info("uptime_loaded", zap.Int("targets", len(a.counters)))
	return a
}

// Record counts one tick for target and persists the whole set before
// returning. A failed write is logged and otherwise ignored.
func (a *Accumulator) Record(ctx context.Context, target string, s domain.Status) domain.UptimeCounter {
	a.mu.Lock()
	c := a.counters[target].Add(s)
	a.counters[target] = c
	snapshot := repo.Clone(a.counters)
	a.mu.Unlock()

	if err := a.store.Save(ctx, snapshot); err != nil {
		a.log.Error("uptime_persist_failed",
			zap.String("target", target),
			zap.Error(err),
		)
	}
	return c
}

func (a *Accumulator) Counter(target string) domain.UptimeCounter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.counters[target]
}

func (a *Accumulator) Snapshot() map[string]domain.UptimeCounter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return repo.Clone(a.counters)
}

// Percentage is 100*up/total rounded to two decimals, or 0 with no ticks.
func Percentage(c domain.UptimeCounter) float64 {
	if c.Total <= 0 {
		return 0
	}
	return math.Round(float64(c.Up)*10000/float64(c.Total)) / 100
}

// Elapsed approximates tracked time as ticks times the current period.
// It drifts when the period changed during the history; that is accepted.
func Elapsed(c domain.UptimeCounter, period time.Duration) time.Duration {
	return time.Duration(c.Total) * period
}

// Stats is the view of one counter handed to the renderer.
type Stats struct {
	Target     string
	Counter    domain.UptimeCounter
	Percentage float64
	Elapsed    time.Duration
}

func NewStats(target string, c domain.UptimeCounter, period time.Duration) Stats {
	return Stats{
		Target:     target,
		Counter:    c,
		Percentage: Percentage(c),
		Elapsed:    Elapsed(c, period),
	}
}
