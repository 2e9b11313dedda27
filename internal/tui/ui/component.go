package ui

// MenuHint describes a keyboard shortcut for the menu.
type MenuHint struct {
	Key         string
	Description string
}

// Component is the lifecycle interface of every page.
type Component interface {
	Name() string
	Hints() []MenuHint
}
