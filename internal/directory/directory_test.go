package directory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/status"
	"go.uber.org/zap"
)

type mockAPI struct {
	mu        sync.Mutex
	groups    []backend.RemoteGroup
	groupsErr error
	messages  map[string][]backend.Message
	failing   map[string]bool
	delay     map[string]time.Duration
	calls     []string
}

func (m *mockAPI) ListGroups(_ context.Context) ([]backend.RemoteGroup, error) {
	if m.groupsErr != nil {
		return nil, m.groupsErr
	}
	return m.groups, nil
}

func (m *mockAPI) ListMessages(_ context.Context, groupID string) ([]backend.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, groupID)
	d := m.delay[groupID]
	fail := m.failing[groupID]
	msgs := m.messages[groupID]
	m.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if fail {
		return nil, errors.New("history unavailable")
	}
	return msgs, nil
}

func newDirectory(api API) (*Directory, *msgstore.Store) {
	store := msgstore.New(nil)
	return New(api, store, nil, nil, zap.NewNop()), store
}

func TestRefreshOrdersByActivity(t *testing.T) {
	api := &mockAPI{groups: []backend.RemoteGroup{
		{GroupID: "-1", DisplayName: "Old", LastMessageTime: "2026-01-01T10:00:00Z"},
		{GroupID: "-2", DisplayName: "Never"},
		{GroupID: "-3", DisplayName: "New", LastMessageTime: "2026-02-01T10:00:00.000Z"},
		{GroupID: "-4", DisplayName: "Garbage", LastMessageTime: "yesterday"},
	}}
	d, _ := newDirectory(api)

	res := d.Refresh(context.Background())
	if res.Offline || res.Groups != 4 {
		t.Fatalf("result = %+v", res)
	}

	var names []string
	for _, g := range d.Groups() {
		names = append(names, g.Name)
	}
	want := []string{"New", "Old", "Never", "Garbage"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestRefreshDropsStaleGroups(t *testing.T) {
	api := &mockAPI{groups: []backend.RemoteGroup{{GroupID: "-1"}, {GroupID: "-2"}}}
	d, store := newDirectory(api)
	d.Refresh(context.Background())

	api.groups = []backend.RemoteGroup{{GroupID: "-2"}}
	d.Refresh(context.Background())

	groups := d.Groups()
	if len(groups) != 1 || groups[0].ID != "-2" {
		t.Errorf("groups = %+v", groups)
	}
	if groups[0].Name != "-2" {
		t.Errorf("nameless group should fall back to its id, got %q", groups[0].Name)
	}
	if _, ok := d.Lookup("-1"); ok {
		t.Error("stale group still listed")
	}
	for _, id := range store.Groups() {
		if id == "-1" {
			t.Error("stale group cache not dropped")
		}
	}
}

func TestRefreshToleratesHistoryFailure(t *testing.T) {
	api := &mockAPI{
		groups: []backend.RemoteGroup{{GroupID: "-1"}, {GroupID: "-2"}, {GroupID: "-3"}},
		messages: map[string][]backend.Message{
			"-1": {{ID: "a", Text: "one"}},
			"-2": {{ID: "b", Text: "two"}},
			"-3": {{ID: "c", Text: "three"}},
		},
		failing: map[string]bool{"-2": true},
	}
	d, store := newDirectory(api)
	store.Replace("-2", []backend.Message{{ID: "old"}})

	res := d.Refresh(context.Background())
	if res.Err != nil || res.Offline {
		t.Fatalf("per-group failure must not fail the refresh: %+v", res)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "-2" {
		t.Errorf("failed = %v, want [-2]", res.Failed)
	}
	if got := store.Messages("-2"); len(got) != 0 {
		t.Errorf("failed group should degrade to empty, got %+v", got)
	}
	if got := store.Messages("-1"); len(got) != 1 || got[0].Text != "one" {
		t.Errorf("group -1 = %+v", got)
	}
	if got := store.Messages("-3"); len(got) != 1 {
		t.Errorf("group -3 = %+v", got)
	}

	g, ok := d.Lookup("-3")
	if !ok || g.LastMessage != "three" {
		t.Errorf("Lookup(-3) = %+v, %v", g, ok)
	}
}

func TestRefreshFetchesConcurrently(t *testing.T) {
	api := &mockAPI{
		groups: []backend.RemoteGroup{{GroupID: "-1"}, {GroupID: "-2"}, {GroupID: "-3"}, {GroupID: "-4"}},
		delay: map[string]time.Duration{
			"-1": 100 * time.Millisecond, "-2": 100 * time.Millisecond,
			"-3": 100 * time.Millisecond, "-4": 100 * time.Millisecond,
		},
	}
	d, _ := newDirectory(api)

	start := time.Now()
	d.Refresh(context.Background())
	if elapsed := time.Since(start); elapsed > 350*time.Millisecond {
		t.Errorf("refresh took %v, fetches look sequential", elapsed)
	}
	if len(api.calls) != 4 {
		t.Errorf("history calls = %d, want 4", len(api.calls))
	}
}

func TestRefreshFallsBackToPlaceholder(t *testing.T) {
	api := &mockAPI{groupsErr: errors.New("connection refused")}
	machine := status.NewMachine(nil)
	if err := machine.Transition(status.Syncing); err != nil {
		t.Fatal(err)
	}
	store := msgstore.New(nil)
	d := New(api, store, machine, nil, zap.NewNop())

	res := d.Refresh(context.Background())
	if !res.Offline || res.Err == nil {
		t.Fatalf("result = %+v, want offline with error", res)
	}
	groups := d.Groups()
	if len(groups) != 1 {
		t.Fatalf("groups = %+v, want exactly the placeholder", groups)
	}
	if p := groups[0]; p.ID != PlaceholderID || p.Name != "Telebot Support" || !p.Placeholder {
		t.Errorf("group = %+v, want the placeholder", p)
	}
	if !d.Offline() {
		t.Error("Offline() should be true")
	}
	if len(store.Messages(PlaceholderID)) != 2 {
		t.Error("placeholder history not seeded")
	}
	if machine.Current() != status.Offline {
		t.Errorf("status = %s, want OFFLINE", machine.Current())
	}
	if len(api.calls) != 0 {
		t.Error("no history fetch expected when the list failed")
	}
}

func TestRefreshRecoversFromOffline(t *testing.T) {
	api := &mockAPI{groupsErr: errors.New("down")}
	machine := status.NewMachine(nil)
	_ = machine.Transition(status.Syncing)
	d := New(api, msgstore.New(nil), machine, nil, zap.NewNop())
	d.Refresh(context.Background())

	api.groupsErr = nil
	api.groups = []backend.RemoteGroup{{GroupID: "-9", DisplayName: "Back"}}
	d.Refresh(context.Background())

	if d.Offline() || machine.Current() != status.Ready {
		t.Errorf("offline=%v status=%s", d.Offline(), machine.Current())
	}
	if g := d.Groups(); len(g) != 1 || g[0].ID != "-9" {
		t.Errorf("groups = %+v", g)
	}
}

func TestRefreshLeavesSignedOutAlone(t *testing.T) {
	machine := status.NewMachine(nil)
	_ = machine.Transition(status.SignedOut)
	d := New(&mockAPI{}, msgstore.New(nil), machine, nil, zap.NewNop())
	d.Refresh(context.Background())
	if machine.Current() != status.SignedOut {
		t.Errorf("status = %s, want SIGNED_OUT", machine.Current())
	}
}

func TestResyncKeepsListOnError(t *testing.T) {
	api := &mockAPI{groups: []backend.RemoteGroup{{GroupID: "-100", DisplayName: "Ops"}}}
	machine := status.NewMachine(nil)
	_ = machine.Transition(status.Syncing)
	d := New(api, msgstore.New(nil), machine, nil, zap.NewNop())
	d.Refresh(context.Background())

	api.groupsErr = errors.New("timeout")
	res := d.Resync(context.Background())
	if res.Err == nil || res.Offline {
		t.Errorf("result = %+v, want error without going offline", res)
	}
	if g := d.Groups(); len(g) != 1 || g[0].ID != "-100" {
		t.Errorf("groups = %+v, want the previous list", g)
	}
	if d.Offline() || machine.Current() != status.Ready {
		t.Errorf("offline=%v status=%s, want online READY", d.Offline(), machine.Current())
	}
}

func TestResyncFallsBackWhenNothingLoaded(t *testing.T) {
	d, _ := newDirectory(&mockAPI{groupsErr: errors.New("down")})

	res := d.Resync(context.Background())
	if !res.Offline {
		t.Errorf("result = %+v, want offline", res)
	}
	if g := d.Groups(); len(g) != 1 || g[0].ID != PlaceholderID {
		t.Errorf("groups = %+v, want the placeholder", g)
	}
}

func TestRefreshCancelledKeepsList(t *testing.T) {
	api := &mockAPI{groups: []backend.RemoteGroup{{GroupID: "-100"}}}
	d, _ := newDirectory(api)
	d.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api.groupsErr = context.Canceled
	d.Refresh(ctx)

	if g := d.Groups(); len(g) != 1 || g[0].ID != "-100" {
		t.Errorf("groups = %+v, want the list kept on shutdown", g)
	}
	if d.Offline() {
		t.Error("cancelled refresh must not switch to the placeholder")
	}
}

func TestPlaceholderKeepsWelcomeLine(t *testing.T) {
	d, _ := newDirectory(&mockAPI{groupsErr: errors.New("down")})
	d.Refresh(context.Background())

	g := d.Groups()
	if len(g) != 1 || g[0].LastMessage != "Welcome to Telebot! How can we help?" {
		t.Errorf("groups = %+v", g)
	}
}
