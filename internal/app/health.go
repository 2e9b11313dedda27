package app

import (
	"sync"

	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/health"
	"github.com/matheus3301/tsched/internal/status"
)

// HealthReporter is the part of the health server fed by session events.
type HealthReporter interface {
	SetServing(service string, serving bool)
}

// reportHealth mirrors status transitions into component health until the
// returned function is called. Auth serves while a token is held and the
// directory serves only when the backend answered the last refresh.
func reportHealth(r HealthReporter, b *bus.Bus) func() {
	events, unsub := b.Subscribe("session.", 16)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case evt := <-events:
				if change, ok := evt.Payload.(status.StatusChange); ok {
					applyStatus(r, change.To)
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			unsub()
			close(stop)
			<-done
		})
	}
}

func applyStatus(r HealthReporter, s status.State) {
	switch s {
	case status.Syncing, status.Offline:
		r.SetServing(health.Auth, true)
		r.SetServing(health.Directory, false)
	case status.Ready:
		r.SetServing(health.Auth, true)
		r.SetServing(health.Directory, true)
	default:
		r.SetServing(health.Auth, false)
		r.SetServing(health.Directory, false)
	}
}
