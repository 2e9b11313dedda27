// Package model holds the screen state of the terminal UI on top of the
// client services.
package model

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/tsched/internal/auth"
	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/schedule"
	"github.com/matheus3301/tsched/internal/status"
	"github.com/matheus3301/tsched/internal/store"
)

// Poller follows the open group.
type Poller interface {
	SetActive(groupID string)
}

// Deps are the services the view model drives.
type Deps struct {
	Auth     *auth.Manager
	Chat     *chat.Service
	Dir      *directory.Directory
	Messages *msgstore.Store
	Machine  *status.Machine
	Poller   Poller
}

// ViewModel is the single owner of UI state: the open group and the
// message being composed.
type ViewModel struct {
	deps Deps

	mu      sync.RWMutex
	active  string
	compose schedule.Compose
}

// NewViewModel creates a view model with an empty draft.
func NewViewModel(deps Deps) *ViewModel {
	return &ViewModel{deps: deps}
}

// Status returns the session state.
func (vm *ViewModel) Status() status.State {
	if vm.deps.Machine == nil {
		return status.Booting
	}
	return vm.deps.Machine.Current()
}

// Account returns the signed-in account, or nil.
func (vm *ViewModel) Account() *store.Credentials {
	return vm.deps.Auth.Account()
}

// Restore signs in with a stored token. It reports whether the user can
// skip the login page.
func (vm *ViewModel) Restore(ctx context.Context) (bool, error) {
	return vm.deps.Auth.Restore(ctx)
}

// Login signs in and loads the directory.
func (vm *ViewModel) Login(ctx context.Context, email, password string) error {
	_, err := vm.deps.Auth.Login(ctx, email, password)
	return err
}

// Register creates an account.
func (vm *ViewModel) Register(ctx context.Context, username, email, password string) error {
	return vm.deps.Auth.Register(ctx, username, email, password)
}

// Logout signs out and forgets the open group and draft.
func (vm *ViewModel) Logout(ctx context.Context) error {
	vm.Close()
	vm.mu.Lock()
	vm.compose.Reset()
	vm.mu.Unlock()
	return vm.deps.Auth.Logout(ctx)
}

// Groups returns the directory, newest activity first.
func (vm *ViewModel) Groups() []directory.Group {
	return vm.deps.Dir.Groups()
}

// Offline reports whether the directory is the placeholder fallback.
func (vm *ViewModel) Offline() bool {
	return vm.deps.Dir.Offline()
}

// RefreshedAt returns when the group list was last replaced.
func (vm *ViewModel) RefreshedAt() time.Time {
	return vm.deps.Dir.RefreshedAt()
}

// Refresh reloads the directory.
func (vm *ViewModel) Refresh(ctx context.Context) directory.Result {
	return vm.deps.Dir.Refresh(ctx)
}

// Open makes groupID the active group and starts polling it.
func (vm *ViewModel) Open(groupID string) {
	vm.mu.Lock()
	vm.active = groupID
	vm.mu.Unlock()
	if vm.deps.Poller != nil {
		vm.deps.Poller.SetActive(groupID)
	}
}

// Close leaves the active group.
func (vm *ViewModel) Close() {
	vm.Open("")
}

// Active returns the open group id.
func (vm *ViewModel) Active() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// ActiveGroup returns the open group. A group that has left the directory
// is still returned by id so its thread renders empty.
func (vm *ViewModel) ActiveGroup() (directory.Group, bool) {
	id := vm.Active()
	if id == "" {
		return directory.Group{}, false
	}
	if g, ok := vm.deps.Dir.Lookup(id); ok {
		return g, true
	}
	return directory.Group{ID: id, Name: id}, true
}

// Messages returns the open group's history.
func (vm *ViewModel) Messages() []backend.Message {
	return vm.deps.Messages.Messages(vm.Active())
}

// MessagesFor returns any group's cached history.
func (vm *ViewModel) MessagesFor(groupID string) []backend.Message {
	return vm.deps.Messages.Messages(groupID)
}

// Reload fetches the open group's history now.
func (vm *ViewModel) Reload(ctx context.Context) error {
	id := vm.Active()
	if id == "" {
		return nil
	}
	return vm.deps.Chat.Reload(ctx, id)
}

// Compose returns the draft.
func (vm *ViewModel) Compose() schedule.Compose {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.compose
}

// SetCompose replaces the draft.
func (vm *ViewModel) SetCompose(c schedule.Compose) {
	vm.mu.Lock()
	vm.compose = c
	vm.mu.Unlock()
}

// CanSend reports whether the draft may be sent to the open group.
func (vm *ViewModel) CanSend() bool {
	return vm.Active() != "" && schedule.Eligible(vm.Compose())
}

// Send delivers the draft to the open group. The draft is cleared only
// when the backend accepted it.
func (vm *ViewModel) Send(ctx context.Context) (schedule.Descriptor, error) {
	d, err := vm.deps.Chat.Send(ctx, vm.Active(), vm.Compose())
	if err != nil {
		return d, err
	}
	vm.mu.Lock()
	vm.compose.Reset()
	vm.mu.Unlock()
	return d, nil
}

// TogglePaused pauses or resumes a scheduled message.
func (vm *ViewModel) TogglePaused(ctx context.Context, messageID string) error {
	return vm.deps.Chat.TogglePaused(ctx, messageID)
}

// CreateGroup registers a group and refreshes the directory.
func (vm *ViewModel) CreateGroup(ctx context.Context, name, groupID string) (*backend.RemoteGroup, error) {
	return vm.deps.Chat.CreateGroup(ctx, name, groupID)
}
