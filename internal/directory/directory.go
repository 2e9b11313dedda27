// Package directory keeps the list of groups in sync with the backend and
// seeds the message store with each group's history.
package directory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFanout bounds how many history fetches run at once.
const DefaultFanout = 8

// API is the part of the backend the directory needs.
type API interface {
	ListGroups(ctx context.Context) ([]backend.RemoteGroup, error)
	ListMessages(ctx context.Context, groupID string) ([]backend.Message, error)
}

// Group is a destination chat as shown in the group list.
type Group struct {
	ID          string
	Name        string
	LastMessage string
	Time        string
	Placeholder bool
}

// Result summarizes one Refresh.
type Result struct {
	Groups  int
	Offline bool
	Failed  []string
	Err     error
}

// Directory owns the group list.
type Directory struct {
	api     API
	store   *msgstore.Store
	machine *status.Machine
	bus     *bus.Bus
	logger  *zap.Logger
	fanout  int

	mu          sync.RWMutex
	groups      []Group
	offline     bool
	refreshedAt time.Time
}

// New creates a directory. machine and b may be nil.
func New(api API, store *msgstore.Store, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *Directory {
	return &Directory{
		api:     api,
		store:   store,
		machine: machine,
		bus:     b,
		logger:  logger.Named("directory"),
		fanout:  DefaultFanout,
	}
}

// Refresh replaces the group list with the backend's and then fetches every
// group's history concurrently. A failed history fetch leaves that group
// with an empty list. If the group list itself cannot be fetched, the
// directory falls back to the built-in placeholder group.
func (d *Directory) Refresh(ctx context.Context) Result {
	return d.refresh(ctx, false)
}

// Resync is the background form of Refresh. When the group list cannot be
// fetched it keeps the current list and status, and only falls back to the
// placeholder if nothing was ever loaded.
func (d *Directory) Resync(ctx context.Context) Result {
	return d.refresh(ctx, true)
}

func (d *Directory) refresh(ctx context.Context, keep bool) Result {
	remote, err := d.api.ListGroups(ctx)
	if err != nil {
		d.mu.RLock()
		n, offline := len(d.groups), d.offline
		d.mu.RUnlock()
		if ctx.Err() != nil || (keep && n > 0 && !offline) {
			d.logger.Debug("group list unavailable, keeping current list", zap.Error(err))
			return Result{Groups: n, Offline: offline, Err: err}
		}
		d.logger.Warn("group list unavailable, using placeholder", zap.Error(err))
		d.usePlaceholder()
		d.report(true)
		res := Result{Groups: 1, Offline: true, Err: err}
		d.bus.Emit(bus.KindGroupsRefreshed, bus.DirectoryPayload{Groups: 1, Offline: true})
		return res
	}

	groups := make([]Group, 0, len(remote))
	ids := make([]string, 0, len(remote))
	for _, r := range remote {
		name := r.DisplayName
		if name == "" {
			name = r.GroupID
		}
		groups = append(groups, Group{ID: r.GroupID, Name: name, Time: r.LastMessageTime})
		ids = append(ids, r.GroupID)
	}
	SortByActivity(groups)

	d.mu.Lock()
	d.groups = groups
	d.offline = false
	d.refreshedAt = time.Now()
	d.mu.Unlock()
	d.store.Retain(ids)

	failed := d.fetchAll(ctx, ids)
	d.report(false)

	d.logger.Info("directory refreshed",
		zap.Int("groups", len(groups)),
		zap.Int("failed", len(failed)),
	)
	d.bus.Emit(bus.KindGroupsRefreshed, bus.DirectoryPayload{Groups: len(groups), Failed: failed})
	return Result{Groups: len(groups), Failed: failed}
}

func (d *Directory) fetchAll(ctx context.Context, ids []string) []string {
	var (
		mu     sync.Mutex
		failed []string
	)
	var g errgroup.Group
	g.SetLimit(d.fanout)
	for _, id := range ids {
		ticket := d.store.Begin(id)
		g.Go(func() error {
			msgs, err := d.api.ListMessages(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.logger.Debug("history fetch failed", zap.String("group", id), zap.Error(err))
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
				msgs = nil
			}
			d.store.Apply(ticket, msgs)
			return nil
		})
	}
	_ = g.Wait()
	slices.Sort(failed)
	return failed
}

func (d *Directory) usePlaceholder() {
	p := Placeholder()
	d.mu.Lock()
	d.groups = []Group{p}
	d.offline = true
	d.refreshedAt = time.Now()
	d.mu.Unlock()
	d.store.Replace(p.ID, PlaceholderMessages())
}

func (d *Directory) report(offline bool) {
	if d.machine == nil {
		return
	}
	target := status.Ready
	if offline {
		target = status.Offline
	}
	switch d.machine.Current() {
	case status.Syncing, status.Ready, status.Offline:
		if err := d.machine.Transition(target); err != nil {
			d.logger.Warn("status transition failed", zap.Error(err))
		}
	}
}

// Groups returns a snapshot of the list, newest activity first, with the
// last message text taken from the message store.
func (d *Directory) Groups() []Group {
	d.mu.RLock()
	out := slices.Clone(d.groups)
	d.mu.RUnlock()
	for i := range out {
		if out[i].Placeholder {
			continue
		}
		if text := d.store.LastText(out[i].ID); text != "" {
			out[i].LastMessage = text
		}
	}
	return out
}

// Lookup finds a group by id.
func (d *Directory) Lookup(id string) (Group, bool) {
	for _, g := range d.Groups() {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// Offline reports whether the list is the placeholder fallback.
func (d *Directory) Offline() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offline
}

// RefreshedAt returns when the list was last replaced.
func (d *Directory) RefreshedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.refreshedAt
}

// SortByActivity orders groups by Time, newest first. Missing or
// unparseable times sort last; ties keep their input order.
func SortByActivity(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		return activity(b.Time).Compare(activity(a.Time))
	})
}

func activity(ts string) time.Time {
	if ts == "" {
		return time.Unix(0, 0)
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Unix(0, 0)
	}
	return t
}
