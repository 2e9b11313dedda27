package app

import (
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/health"
	"github.com/matheus3301/tsched/internal/status"
)

type fakeReporter struct {
	mu      sync.Mutex
	serving map[string]bool
}

func (f *fakeReporter) SetServing(service string, serving bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.serving == nil {
		f.serving = make(map[string]bool)
	}
	f.serving[service] = serving
}

func (f *fakeReporter) get(service string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serving[service]
}

func TestApplyStatus(t *testing.T) {
	tests := []struct {
		state         status.State
		auth, listing bool
	}{
		{status.SignedOut, false, false},
		{status.Syncing, true, false},
		{status.Ready, true, true},
		{status.Offline, true, false},
		{status.Error, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			r := &fakeReporter{}
			applyStatus(r, tt.state)
			if r.get(health.Auth) != tt.auth || r.get(health.Directory) != tt.listing {
				t.Errorf("auth=%v directory=%v, want %v %v",
					r.get(health.Auth), r.get(health.Directory), tt.auth, tt.listing)
			}
		})
	}
}

func TestReportHealthFollowsMachine(t *testing.T) {
	b := bus.New()
	r := &fakeReporter{}
	stop := reportHealth(r, b)

	m := status.NewMachine(b)
	for _, s := range []status.State{status.Syncing, status.Ready} {
		if err := m.Transition(s); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for !r.get(health.Directory) {
		if time.Now().After(deadline) {
			t.Fatal("directory never reported serving")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stop()
	stop()
	if b.Subscribers() != 0 {
		t.Errorf("subscribers = %d after stop, want 0", b.Subscribers())
	}
}
