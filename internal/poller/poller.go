// Package poller keeps the open group and the directory fresh while the
// client runs.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matheus3301/tsched/internal/directory"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when Start is called twice.
var ErrAlreadyRunning = errors.New("poller already running")

// ErrNotRunning is returned when stopping an idle poller.
var ErrNotRunning = errors.New("poller not running")

// Reloader fetches one group's messages into the store.
type Reloader interface {
	Reload(ctx context.Context, groupID string) error
}

// Refresher reloads the group directory in the background, keeping the
// current list when the backend is unreachable.
type Refresher interface {
	Resync(ctx context.Context) directory.Result
}

// Poller re-fetches the active group on a fixed interval and, optionally,
// the whole directory on a slower one.
type Poller struct {
	reloader  Reloader
	refresher Refresher
	interval  time.Duration
	dirEvery  time.Duration
	logger    *zap.Logger

	mu         sync.Mutex
	active     string
	running    bool
	refreshing bool
	cancel   context.CancelFunc
	loop     sync.WaitGroup
	inflight sync.WaitGroup
}

// New builds a poller. A non-positive interval uses 5s. A non-positive
// dirEvery disables the directory refresh.
func New(reloader Reloader, refresher Refresher, interval, dirEvery time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		reloader:  reloader,
		refresher: refresher,
		interval:  interval,
		dirEvery:  dirEvery,
		logger:    logger.Named("poller"),
	}
}

// SetActive selects the group polled on each tick. An empty id pauses
// message polling. Fetches already started are not cancelled.
func (p *Poller) SetActive(groupID string) {
	p.mu.Lock()
	p.active = groupID
	p.mu.Unlock()
}

// Active returns the group being polled.
func (p *Poller) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Start begins the background loops.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.loop.Add(1)
	go p.run(loopCtx)

	p.logger.Info("poller started",
		zap.Duration("interval", p.interval),
		zap.Duration("directory_interval", p.dirEvery),
	)
	return nil
}

// Stop cancels the loops and waits for them and any in-flight fetch to
// return.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.loop.Wait()
	p.inflight.Wait()
	p.logger.Info("poller stopped")
	return nil
}

// IsRunning reports whether the loops are active.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) run(ctx context.Context) {
	defer p.loop.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var dirC <-chan time.Time
	if p.dirEvery > 0 && p.refresher != nil {
		dirTicker := time.NewTicker(p.dirEvery)
		defer dirTicker.Stop()
		dirC = dirTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-dirC:
			p.refreshDirectory(ctx)
		}
	}
}

// poll starts a fetch of the active group without waiting for earlier
// ones. The store's sequence tickets keep a slow response from
// overwriting a newer one.
func (p *Poller) poll(ctx context.Context) {
	groupID := p.Active()
	if groupID == "" {
		return
	}
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		if err := p.reloader.Reload(ctx, groupID); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Debug("poll failed", zap.String("group", groupID), zap.Error(err))
		}
	}()
}

// refreshDirectory starts a directory resync unless one is still running,
// so the message ticks keep firing while it waits on history fetches.
func (p *Poller) refreshDirectory(ctx context.Context) {
	p.mu.Lock()
	if p.refreshing {
		p.mu.Unlock()
		p.logger.Debug("directory resync still running, skipping tick")
		return
	}
	p.refreshing = true
	p.mu.Unlock()

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer func() {
			p.mu.Lock()
			p.refreshing = false
			p.mu.Unlock()
		}()
		res := p.refresher.Resync(ctx)
		if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			p.logger.Debug("directory resync failed", zap.Error(res.Err))
		}
	}()
}
