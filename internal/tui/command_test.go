package tui

import (
	"testing"

	"github.com/matheus3301/tsched/internal/directory"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"quit", Command{Name: "quit"}},
		{"q", Command{Name: "quit"}},
		{":help", Command{Name: "help"}},
		{"  Group   Ops Team ", Command{Name: "group", Args: "Ops Team"}},
		{"g @newsroom", Command{Name: "group", Args: "@newsroom"}},
		{"", Command{}},
		{"bogus x", Command{Name: "bogus", Args: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseCommand(tt.in); got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindGroup(t *testing.T) {
	groups := sampleGroups()
	tests := []struct {
		query string
		want  string
	}{
		{"@newsroom", "@newsroom"},
		{"ops team", "-1001234567890"},
		{"sup", "@support"},
		{"missing", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			g, ok := findGroup(groups, tt.query)
			if tt.want == "" {
				if ok {
					t.Errorf("found %q, want none", g.ID)
				}
				return
			}
			if !ok || g.ID != tt.want {
				t.Errorf("findGroup(%q) = %q, %v; want %q", tt.query, g.ID, ok, tt.want)
			}
		})
	}
}

func sampleGroups() []directory.Group {
	return []directory.Group{
		{ID: "@newsroom", Name: "Newsroom"},
		{ID: "-1001234567890", Name: "Ops Team"},
		{ID: "@support", Name: "Support"},
	}
}
