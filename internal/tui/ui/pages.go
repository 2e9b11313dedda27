package ui

import (
	"slices"

	"github.com/rivo/tview"
)

// Pages is a stack of named pages over tview.Pages. Modals are stacked
// like pages but keep the page below them visible.
type Pages struct {
	*tview.Pages
	stack    []string
	modals   map[string]bool
	onChange func(stack []string)
}

// NewPages creates an empty stack.
func NewPages() *Pages {
	return &Pages{
		Pages:  tview.NewPages(),
		modals: make(map[string]bool),
	}
}

// SetOnChange sets a callback fired with the new stack after every change.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// AddModal registers a page that is drawn over the current one.
func (p *Pages) AddModal(name string, item tview.Primitive) {
	p.modals[name] = true
	p.AddPage(name, item, true, false)
}

// IsModal reports whether name was added with AddModal.
func (p *Pages) IsModal(name string) bool {
	return p.modals[name]
}

// Push shows name on top of the stack. Pushing the current page is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if top := p.Current(); top != "" && !p.modals[name] {
		p.HidePage(top)
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Pop removes the top page and returns its name, or "" on an empty stack.
// The last page is never popped.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	current := p.Current()
	p.ShowPage(current)
	p.SendToFront(current)
	p.notify()
	return top
}

// Current returns the page on top of the stack.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Contains reports whether name is anywhere on the stack.
func (p *Pages) Contains(name string) bool {
	return slices.Contains(p.stack, name)
}

// Stack returns a copy of the stack, bottom first.
func (p *Pages) Stack() []string {
	return slices.Clone(p.stack)
}

// Reset hides everything and leaves name as the only page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}

// Centered wraps item in a fixed-size box centered on the screen.
func Centered(item tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(item, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
