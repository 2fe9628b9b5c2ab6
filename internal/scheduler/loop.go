package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/probe"
	"github.com/hamed0406/statusnotifier/internal/render"
	"github.com/hamed0406/statusnotifier/internal/uptime"
)

var ErrStopped = errors.New("scheduler: loop stopped")

// State is everything a tick reads and writes. Only the Run goroutine
// touches it, so it needs no locking.
type State struct {
	Mode         Mode
	Period       time.Duration
	Destinations map[string]*notify.Destination // by guild id
	Statuses     map[string]domain.Status       // latest per target
	LastTick     time.Time
	Last         *render.Presentation
}

// Snapshot is a copy of State safe to hand to other goroutines.
type Snapshot struct {
	Mode         Mode
	Period       time.Duration
	LastTick     time.Time
	Statuses     map[string]domain.Status
	Uptime       []uptime.Stats
	Destinations []notify.Destination
	Presentation *render.Presentation
}

// Loop probes, records, renders and upserts on a timer whose period follows
// the observed health.
type Loop struct {
	Logger    *zap.Logger
	Targets   []domain.Target
	Checker   probe.Checker
	Uptime    *uptime.Accumulator
	Renderer  render.Renderer
	Upserter  *notify.Upserter
	Intervals Intervals

	// Optional.
	Notifier notify.Notifier
	Resolver probe.Resolver

	state   *State
	watches chan notify.Destination
	stopped chan struct{}

	snapMu sync.RWMutex
	snap   Snapshot
}

func New(
	logger *zap.Logger,
	targets []domain.Target,
	checker probe.Checker,
	acc *uptime.Accumulator,
	renderer render.Renderer,
	upserter *notify.Upserter,
	intervals Intervals,
) *Loop {
	if intervals.Calm <= 0 {
		intervals.Calm = DefaultIntervals.Calm
	}
	if intervals.Alert <= 0 {
		intervals.Alert = DefaultIntervals.Alert
	}
	l := &Loop{
		Logger:    logger,
		Targets:   targets,
		Checker:   checker,
		Uptime:    acc,
		Renderer:  renderer,
		Upserter:  upserter,
		Intervals: intervals,
		state: &State{
			Mode:         Calm,
			Period:       intervals.Calm,
			Destinations: map[string]*notify.Destination{},
			Statuses:     map[string]domain.Status{},
		},
		watches: make(chan notify.Destination, 16),
		stopped: make(chan struct{}),
	}
	l.publish()
	return l
}

// Watch asks the loop to track a destination and run a tick right away.
// It is the entry point for the status command.
func (l *Loop) Watch(ctx context.Context, guildID, channelID string) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	select {
	case l.watches <- notify.Destination{GuildID: guildID, ChannelID: channelID}:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives ticks until ctx is cancelled. Ticks never overlap: the timer
// is re-armed only after a tick finishes, so a slow tick delays the next
// one instead of racing it.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	timer := time.NewTimer(l.state.Period)
	defer timer.Stop()

	l.Logger.Info("loop_started",
		zap.Duration("calm", l.Intervals.Calm),
		zap.Duration("alert", l.Intervals.Alert),
	)
	for {
		select {
		case <-ctx.Done():
			l.Logger.Info("loop_stopped")
			return
		case d := <-l.watches:
			l.register(ctx, d)
			l.tick(ctx)
			rearm(timer, l.state.Period)
		case <-timer.C:
			l.tick(ctx)
			rearm(timer, l.state.Period)
		}
	}
}

func rearm(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// register adds or moves the guild's destination. A move deletes the old
// message so the guild keeps a single live one.
func (l *Loop) register(ctx context.Context, d notify.Destination) {
	prev, ok := l.state.Destinations[d.GuildID]
	if ok && prev.ChannelID == d.ChannelID {
		return
	}
	if ok {
		if err := l.Upserter.Retire(ctx, *prev); err != nil {
			l.Logger.Warn("retire_failed",
				zap.String("guild_id", prev.GuildID),
				zap.String("channel_id", prev.ChannelID),
				zap.Error(err),
			)
		}
	}
	l.state.Destinations[d.GuildID] = &notify.Destination{GuildID: d.GuildID, ChannelID: d.ChannelID}
	l.Logger.Info("destination_registered",
		zap.String("guild_id", d.GuildID),
		zap.String("channel_id", d.ChannelID),
		zap.Int("destinations", len(l.state.Destinations)),
	)
	l.publish()
}

func (l *Loop) tick(ctx context.Context) {
	if len(l.state.Destinations) == 0 {
		return
	}
	log := l.Logger.With(zap.String("tick_id", uuid.New().String()))
	start := time.Now()

	outcomes := probe.ProbeAll(ctx, l.Checker, l.Targets)
	if ctx.Err() != nil {
		// shutting down: the readings are cancellations, not outages
		log.Info("tick_abandoned", zap.Error(ctx.Err()))
		return
	}

	statuses := make(map[string]domain.Status, len(outcomes))
	counters := make(map[string]domain.UptimeCounter, len(outcomes))
	for _, o := range outcomes {
		st := o.Status()
		if o.Err != nil {
			log.Info("probe_failed",
				zap.String("target", o.Target),
				zap.Int("http_status", o.StatusCode),
				zap.Duration("latency", o.Latency),
				zap.Error(o.Err),
			)
			l.diagnose(ctx, log, o)
		}
		statuses[o.Target] = st
		counters[o.Target] = l.Uptime.Record(ctx, o.Target, st)
	}

	period := l.state.Period
	pres := l.Renderer.Render(statuses[domain.TargetWeb], statuses[domain.TargetApp], render.Uptime{
		Web: uptime.NewStats(domain.TargetWeb, counters[domain.TargetWeb], period),
		App: uptime.NewStats(domain.TargetApp, counters[domain.TargetApp], period),
	})

	for _, d := range l.sortedDestinations() {
		if _, err := l.Upserter.Upsert(ctx, d, pres); err != nil {
			log.Warn("upsert_failed",
				zap.String("guild_id", d.GuildID),
				zap.String("channel_id", d.ChannelID),
				zap.Error(err),
			)
		}
	}

	l.state.Statuses = statuses
	l.state.LastTick = start
	l.state.Last = &pres
	l.transition(ctx, log)
	l.publish()

	log.Info("tick_done",
		zap.String("web", statuses[domain.TargetWeb].String()),
		zap.String("app", statuses[domain.TargetApp].String()),
		zap.String("color", pres.Color.String()),
		zap.Duration("took", time.Since(start)),
		zap.Duration("next_in", l.state.Period),
	)
}

// transition applies the mode for the latest statuses. The new period takes
// effect when Run re-arms the timer after this tick.
func (l *Loop) transition(ctx context.Context, log *zap.Logger) {
	latest := make([]domain.Status, 0, len(l.Targets))
	for _, t := range l.Targets {
		latest = append(latest, l.state.Statuses[t.Name])
	}
	desired := Next(latest...)
	if desired == l.state.Mode {
		return
	}
	l.state.Mode = desired
	l.state.Period = l.Intervals.Period(desired)
	log.Info("interval_changed",
		zap.String("mode", desired.String()),
		zap.Duration("period", l.state.Period),
	)

	if l.Notifier == nil {
		return
	}
	title := "🔴 Health degraded"
	if desired == Calm {
		title = "🟢 All targets healthy"
	}
	if err := l.Notifier.Send(ctx, title, l.statusLines()); err != nil {
		log.Warn("transition_notify_failed", zap.Error(err))
	}
}

// diagnose logs a DNS explanation when the web target first goes dark
// without any HTTP response.
func (l *Loop) diagnose(ctx context.Context, log *zap.Logger, o probe.Outcome) {
	if o.Target != domain.TargetWeb || !o.Transport() {
		return
	}
	if prev, seen := l.state.Statuses[o.Target]; seen && prev == domain.Offline {
		return
	}
	var url string
	for _, t := range l.Targets {
		if t.Name == o.Target {
			url = t.URL
		}
	}
	dns := probe.DiagnoseDNS(ctx, l.Resolver, url)
	log.Info("dns_check",
		zap.String("target", o.Target),
		zap.String("host", dns.Host),
		zap.String("class", dns.Class),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("resolver_error", dns.ResolverError),
	)
}

func (l *Loop) statusLines() string {
	var b strings.Builder
	for i, t := range l.Targets {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", t.Name, l.state.Statuses[t.Name])
	}
	return b.String()
}

func (l *Loop) sortedDestinations() []*notify.Destination {
	out := make([]*notify.Destination, 0, len(l.state.Destinations))
	for _, d := range l.state.Destinations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

func (l *Loop) publish() {
	s := Snapshot{
		Mode:     l.state.Mode,
		Period:   l.state.Period,
		LastTick: l.state.LastTick,
		Statuses: make(map[string]domain.Status, len(l.state.Statuses)),
	}
	for k, v := range l.state.Statuses {
		s.Statuses[k] = v
	}
	for _, t := range l.Targets {
		s.Uptime = append(s.Uptime, uptime.NewStats(t.Name, l.Uptime.Counter(t.Name), l.state.Period))
	}
	for _, d := range l.sortedDestinations() {
		s.Destinations = append(s.Destinations, *d)
	}
	if l.state.Last != nil {
		p := *l.state.Last
		s.Presentation = &p
	}

	l.snapMu.Lock()
	l.snap = s
	l.snapMu.Unlock()
}

// Snapshot returns the state as of the last finished tick.
func (l *Loop) Snapshot() Snapshot {
	l.snapMu.RLock()
	defer l.snapMu.RUnlock()
	return l.snap
}
