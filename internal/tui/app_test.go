package tui

import (
	"testing"

	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/tui/model"
	"go.uber.org/zap"
)

func TestQueueDropsUpdatesAfterStop(t *testing.T) {
	a := NewApp(model.NewViewModel(model.Deps{}), bus.New(), "main", zap.NewNop())

	if !a.queue(func() {}) {
		t.Error("queue() = false while the UI is live")
	}

	a.cancel()
	if a.queue(func() { t.Error("update ran after stop") }) {
		t.Error("queue() = true after stop")
	}
}
