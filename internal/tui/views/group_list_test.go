package views

import (
	"testing"

	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/tui/ui"
)

var sampleGroups = []directory.Group{
	{ID: "@newsroom", Name: "Newsroom", LastMessage: "Morning digest"},
	{ID: "-1001234567890", Name: "Ops Team", LastMessage: "deploy at 5"},
	{ID: "@support", Name: "Support", LastMessage: "ticket closed"},
}

func TestFilterGroups(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"@newsroom", "-1001234567890", "@support"}},
		{"  ", []string{"@newsroom", "-1001234567890", "@support"}},
		{"OPS", []string{"-1001234567890"}},
		{"@sup", []string{"@support"}},
		{"digest", []string{"@newsroom"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := FilterGroups(sampleGroups, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d groups, want %d", len(got), len(tt.want))
			}
			for i, g := range got {
				if g.ID != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, g.ID, tt.want[i])
				}
			}
		})
	}
}

func TestGroupListSelection(t *testing.T) {
	gl := NewGroupList(ui.DefaultTheme())
	gl.Update(sampleGroups)

	if g := gl.GroupByIndex(2); g.ID != "-1001234567890" {
		t.Errorf("GroupByIndex(2) = %q", g.ID)
	}
	if g := gl.GroupByIndex(9); g.ID != "" {
		t.Errorf("GroupByIndex out of range = %q", g.ID)
	}

	gl.Select(3, 0)
	gl.Update([]directory.Group{sampleGroups[2], sampleGroups[0], sampleGroups[1]})
	if g := gl.SelectedGroup(); g.ID != "@support" {
		t.Errorf("cursor moved to %q after update", g.ID)
	}

	gl.SetFilter("news")
	if g := gl.SelectedGroup(); g.ID != "@newsroom" {
		t.Errorf("selection after filter = %q", g.ID)
	}
	if gl.GetTitle() != " Groups (1/3) filter: news " {
		t.Errorf("title = %q", gl.GetTitle())
	}
}
