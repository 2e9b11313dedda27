package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheus3301/tsched/internal/directory"
	"go.uber.org/zap"
)

type recordingReloader struct {
	mu    sync.Mutex
	calls map[string]int
	delay time.Duration
}

func (r *recordingReloader) Reload(ctx context.Context, groupID string) error {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[groupID]++
	return nil
}

func (r *recordingReloader) count(groupID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[groupID]
}

type countingRefresher struct {
	n atomic.Int32
}

func (c *countingRefresher) Resync(context.Context) directory.Result {
	c.n.Add(1)
	return directory.Result{}
}

// blockingRefresher holds every resync until ctx is cancelled.
type blockingRefresher struct {
	started atomic.Int32
}

func (b *blockingRefresher) Resync(ctx context.Context) directory.Result {
	b.started.Add(1)
	<-ctx.Done()
	return directory.Result{Err: ctx.Err()}
}

func TestStartStop(t *testing.T) {
	p := New(&recordingReloader{}, nil, 10*time.Millisecond, 0, zap.NewNop())

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := p.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop() = %v, want ErrNotRunning", err)
	}
}

func TestPollsActiveGroup(t *testing.T) {
	r := &recordingReloader{}
	p := New(r, nil, 10*time.Millisecond, 0, zap.NewNop())
	p.SetActive("-1001")

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond)
	p.SetActive("")
	_ = p.Stop()

	if got := r.count("-1001"); got < 2 {
		t.Errorf("reloads = %d, want at least 2", got)
	}
}

func TestNoActiveGroupNoPolling(t *testing.T) {
	r := &recordingReloader{}
	p := New(r, nil, 10*time.Millisecond, 0, zap.NewNop())

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	_ = p.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) != 0 {
		t.Errorf("unexpected reloads: %v", r.calls)
	}
}

func TestTicksDoNotWaitForSlowFetch(t *testing.T) {
	r := &recordingReloader{delay: 30 * time.Millisecond}
	p := New(r, nil, 10*time.Millisecond, 0, zap.NewNop())
	p.SetActive("@slowgroup")

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	p.SetActive("")
	// Let fetches started before the switch finish.
	time.Sleep(50 * time.Millisecond)
	_ = p.Stop()

	// A serial loop would manage at most three 30ms fetches in 100ms.
	if got := r.count("@slowgroup"); got < 5 {
		t.Errorf("reloads = %d, want overlapping fetches", got)
	}
}

func TestDirectoryRefresh(t *testing.T) {
	ref := &countingRefresher{}
	p := New(&recordingReloader{}, ref, time.Hour, 10*time.Millisecond, zap.NewNop())

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(60 * time.Millisecond)
	_ = p.Stop()

	if ref.n.Load() < 2 {
		t.Errorf("refreshes = %d, want at least 2", ref.n.Load())
	}
}

func TestDirectoryRefreshDisabled(t *testing.T) {
	ref := &countingRefresher{}
	p := New(&recordingReloader{}, ref, time.Hour, 0, zap.NewNop())

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	_ = p.Stop()

	if ref.n.Load() != 0 {
		t.Errorf("refreshes = %d, want 0", ref.n.Load())
	}
}

func TestStopCancelsInflight(t *testing.T) {
	r := &recordingReloader{delay: time.Hour}
	p := New(r, nil, 5*time.Millisecond, 0, zap.NewNop())
	p.SetActive("-42")

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
}

func TestSlowResyncDoesNotStallPolling(t *testing.T) {
	r := &recordingReloader{}
	ref := &blockingRefresher{}
	p := New(r, ref, 10*time.Millisecond, 5*time.Millisecond, zap.NewNop())
	p.SetActive("-1001")

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	p.SetActive("")

	done := make(chan struct{})
	go func() {
		_ = p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}

	if got := r.count("-1001"); got < 3 {
		t.Errorf("reloads = %d while a resync was blocked, want at least 3", got)
	}
	if got := ref.started.Load(); got != 1 {
		t.Errorf("resyncs started = %d, want 1 (no overlap)", got)
	}
}
