// Package poller keeps a submission list fresh while any entry is still being graded.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/models"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 5 * time.Second

// Fetcher loads the full submission list.
type Fetcher func(ctx context.Context) ([]models.Submission, error)

// UpdateFunc receives every newly held list. It runs while the poller holds its lock and
// must not call back into the Poller.
type UpdateFunc func([]models.Submission)

// Ticker abstracts time.Ticker so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Observer is told about every tick and whether it led to a fetch.
type Observer interface {
	ObservePollTick(fetched bool)
}

// Config tunes a Poller.
type Config struct {
	Name      string
	Interval  time.Duration
	Logger    *zap.Logger
	Observer  Observer
	NewTicker func(time.Duration) Ticker
}

// Poller fetches once on Start and then, on every tick, refetches only when no fetch has
// succeeded yet or the held snapshot still contains a PENDING or RUNNING entry. Each fetch fully replaces the
// snapshot; overlapping fetches are not deduplicated and the last one to resolve wins.
type Poller struct {
	fetch    Fetcher
	onUpdate UpdateFunc
	cfg      Config

	mu       sync.Mutex
	snapshot []models.Submission
	loaded   bool
	stopped  bool

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// New builds an idle poller.
func New(fetch Fetcher, onUpdate UpdateFunc, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewStdTicker
	}
	if onUpdate == nil {
		onUpdate = func([]models.Submission) {}
	}
	return &Poller{fetch: fetch, onUpdate: onUpdate, cfg: cfg, stop: make(chan struct{})}
}

// Start performs the initial fetch and starts the ticker. Cancelling ctx tears the poller
// down like Stop. Fetches run on a context detached from ctx: teardown discards their
// results instead of aborting them.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		fetchCtx := context.WithoutCancel(ctx)
		ticker := p.cfg.NewTicker(p.cfg.Interval)

		go p.refresh(fetchCtx)

		p.wg.Add(1)
		go p.loop(ctx, fetchCtx, ticker)

		p.cfg.Logger.Debug("poller started", zap.String("poller", p.cfg.Name), zap.Duration("interval", p.cfg.Interval))
	})
}

// Stop cancels the ticker unconditionally. No update is delivered after Stop returns.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.markStopped()
		close(p.stop)
		p.wg.Wait()
		p.cfg.Logger.Debug("poller stopped", zap.String("poller", p.cfg.Name))
	})
}

// Snapshot returns the currently held list.
func (p *Poller) Snapshot() []models.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func (p *Poller) loop(ctx, fetchCtx context.Context, ticker Ticker) {
	defer p.wg.Done()
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			p.markStopped()
			return
		case <-ticker.C():
			p.tick(fetchCtx)
		}
	}
}

// tick decides purely from the held snapshot whether to refetch. Until a fetch has
// succeeded there is nothing held to judge by, so every tick retries.
func (p *Poller) tick(ctx context.Context) {
	fetch := p.needsFetch()
	if p.cfg.Observer != nil {
		p.cfg.Observer.ObservePollTick(fetch)
	}
	if fetch {
		go p.refresh(ctx)
	}
}

func (p *Poller) needsFetch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.loaded || models.HasPending(p.snapshot)
}

func (p *Poller) refresh(ctx context.Context) {
	list, err := p.fetch(ctx)
	if err != nil {
		p.cfg.Logger.Warn("poll fetch failed, keeping previous list", zap.String("poller", p.cfg.Name), zap.Error(err))
		return
	}
	p.publish(list)
}

func (p *Poller) publish(list []models.Submission) {
	held := make([]models.Submission, len(list))
	copy(held, list)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.snapshot = held
	p.loaded = true
	p.onUpdate(held)
}

func (p *Poller) markStopped() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}
