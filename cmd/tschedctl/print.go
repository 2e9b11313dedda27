package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/tui/views"
)

var (
	bold  = color.New(color.Bold)
	muted = color.New(color.Faint)
	warn  = color.New(color.FgYellow)
	bad   = color.New(color.FgRed)
	good  = color.New(color.FgGreen)
)

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	return tbl
}

func printGroups(groups []directory.Group, now time.Time) {
	tbl := newTable()
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("NAME"), bold.Sprint("TIME"), bold.Sprint("LAST MESSAGE"))
	for _, g := range groups {
		name := g.Name
		if g.Placeholder {
			name = muted.Sprint(name + " (offline)")
		}
		tbl.AddRow(g.ID, name, views.FormatTime(g.Time, now), oneLine(g.LastMessage))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func printMessages(msgs []backend.Message, now time.Time) {
	tbl := newTable()
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("TIME"), bold.Sprint("STATE"), bold.Sprint("TEXT"))
	for _, m := range msgs {
		tbl.AddRow(m.ID, views.FormatTime(m.Timestamp(), now), tickLabel(msgstore.TickFor(m)), oneLine(m.Text))
		if msgstore.Pausable(m) {
			label := good.Sprint(msgstore.PauseLabel(m))
			if m.Paused {
				label = warn.Sprint(msgstore.PauseLabel(m))
			}
			tbl.AddRow("", "", "", label)
		}
		for _, line := range []string{msgstore.ScheduledLine(m), msgstore.RepeatLine(m)} {
			if line != "" {
				tbl.AddRow("", "", "", muted.Sprint(line))
			}
		}
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func tickLabel(t msgstore.Tick) string {
	switch t {
	case msgstore.TickFull:
		return good.Sprint(t.String())
	case msgstore.TickPartial:
		return warn.Sprint(t.String())
	default:
		return t.String()
	}
}

func printStatus(sessionName string, labels []string, result map[string]string) {
	tbl := newTable()
	tbl.AddRow(bold.Sprint("Session:"), sessionName)
	for _, label := range labels {
		st := result[label]
		switch st {
		case "SERVING":
			st = good.Sprint(st)
		case "NOT_SERVING":
			st = bad.Sprint(st)
		default:
			st = warn.Sprint(st)
		}
		tbl.AddRow(bold.Sprint(label+":"), st)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func printError(msg string) {
	_, _ = fmt.Fprintf(color.Error, "%s %s\n", bad.Sprint("error:"), msg)
}
