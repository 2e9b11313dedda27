// Package keys maps key events to actions, globally and per page.
package keys

import "github.com/gdamore/tcell/v2"

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings organized by scope. Bindings are tried in
// registration order, page bindings before global ones.
type Registry struct {
	global []*Action
	views  map[string][]*Action
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string][]*Action)}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(action *Action) {
	r.global = append(r.global, action)
}

// AddView registers a binding for one page.
func (r *Registry) AddView(view string, action *Action) {
	r.views[view] = append(r.views[view], action)
}

// Lookup returns the action ev triggers on view, or nil.
func (r *Registry) Lookup(view string, ev *tcell.EventKey) *Action {
	for _, a := range r.views[view] {
		if a.Matches(ev) {
			return a
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			return a
		}
	}
	return nil
}

// HandleEvent runs the action ev triggers on view and reports whether one
// matched.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	a := r.Lookup(view, ev)
	if a == nil {
		return false
	}
	if a.Handler != nil {
		a.Handler()
	}
	return true
}
