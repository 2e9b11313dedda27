package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tsched/internal/schedule"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/matheus3301/tsched/internal/validate"
	"github.com/rivo/tview"
)

// DateTimeLayout is how the composer reads a target time.
const DateTimeLayout = "2006-01-02 15:04"

// Composer edits the draft: text, schedule type and the fields that type
// needs. Only the fields of the selected type are shown.
type Composer struct {
	*tview.Flex
	theme  *ui.Theme
	form   *tview.Form
	status *tview.TextView

	draft    schedule.Compose
	at       string
	errs     validate.FieldErrors
	building bool
	now      func() time.Time

	onSend   func(schedule.Compose)
	onChange func(schedule.Compose)
}

// NewComposer creates an empty composer.
func NewComposer(theme *ui.Theme) *Composer {
	form := tview.NewForm()
	form.SetItemPadding(0)
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(tcell.ColorDarkSlateGray)
	form.SetFieldTextColor(theme.TableHeaderFg)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)
	form.SetBorderPadding(0, 0, 1, 1)

	status := tview.NewTextView().SetDynamicColors(true)
	status.SetBackgroundColor(theme.BgColor)
	status.SetBorderPadding(0, 0, 1, 1)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(status, 2, 0, false)
	flex.SetBorder(true)
	flex.SetBorderColor(theme.BorderColor)
	flex.SetTitle(" Compose (i to focus, Ctrl-S to send) ")
	flex.SetTitleColor(theme.TitleColor)

	c := &Composer{
		Flex:   flex,
		theme:  theme,
		form:   form,
		status: status,
		now:    time.Now,
	}
	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if isCtrlS(event) {
			c.submit()
			return nil
		}
		return event
	})
	c.rebuild()
	c.renderStatus()
	return c
}

// SetOnSend sets the callback for the Send button and Ctrl-S. It receives
// the draft only when the draft is complete.
func (c *Composer) SetOnSend(fn func(schedule.Compose)) {
	c.onSend = fn
}

// SetOnChange sets the callback fired after every edit.
func (c *Composer) SetOnChange(fn func(schedule.Compose)) {
	c.onChange = fn
}

// Form returns the focusable form.
func (c *Composer) Form() *tview.Form {
	return c.form
}

// Value returns the draft.
func (c *Composer) Value() schedule.Compose {
	return c.draft
}

// SetValue loads a draft, e.g. the empty one after a send.
func (c *Composer) SetValue(v schedule.Compose) {
	c.draft = v
	c.at = ""
	if !v.Schedule.DateTime.IsZero() {
		c.at = v.Schedule.DateTime.Format(DateTimeLayout)
	}
	c.errs = nil
	c.rebuild()
	c.renderStatus()
}

// ShowError displays err under the form. Field errors are listed one per
// field; anything else is shown as is.
func (c *Composer) ShowError(err error) {
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		c.errs = fe
	} else if err != nil {
		c.errs = validate.FieldErrors{{Field: "", Message: err.Error()}}
	} else {
		c.errs = nil
	}
	c.renderStatus()
}

func (c *Composer) submit() {
	if err := schedule.Validate(c.draft); err != nil {
		c.ShowError(err)
		return
	}
	c.ShowError(nil)
	if c.onSend != nil {
		c.onSend(c.draft)
	}
}

func (c *Composer) changed() {
	if c.building {
		return
	}
	c.errs = nil
	c.renderStatus()
	if c.onChange != nil {
		c.onChange(c.draft)
	}
}

func (c *Composer) rebuild() {
	c.building = true
	defer func() { c.building = false }()

	c.form.Clear(true)
	c.form.AddInputField("Message", c.draft.Text, 0, nil, func(text string) {
		c.draft.Text = text
		c.changed()
	})

	labels := make([]string, len(schedule.Types))
	for i, t := range schedule.Types {
		labels[i] = schedule.Label(t)
	}
	c.form.AddDropDown("When", labels, slices.Index(schedule.Types, c.draft.Schedule.Type), func(_ string, i int) {
		if c.building || i < 0 || c.draft.Schedule.Type == schedule.Types[i] {
			return
		}
		c.draft.Schedule.Type = schedule.Types[i]
		c.replaceTypeFields()
		c.changed()
	})
	c.addTypeFields()
	c.form.AddButton("Send", c.submit)
}

// replaceTypeFields swaps the fields after "When" for the selected type.
func (c *Composer) replaceTypeFields() {
	c.building = true
	defer func() { c.building = false }()
	for c.form.GetFormItemCount() > 2 {
		c.form.RemoveFormItem(2)
	}
	c.addTypeFields()
}

func (c *Composer) addTypeFields() {
	switch c.draft.Schedule.Type {
	case schedule.DateTime:
		c.form.AddInputField("At", c.at, 18, nil, func(text string) {
			c.at = text
			t, err := ParseDateTime(text, time.Local)
			if err != nil {
				t = time.Time{}
			}
			c.draft.Schedule.DateTime = t
			c.changed()
		})
		c.placeholder("At", "YYYY-MM-DD HH:MM")
	case schedule.Interval:
		c.form.AddInputField("Every", c.draft.Schedule.IntervalValue, 6, tview.InputFieldInteger, func(text string) {
			c.draft.Schedule.IntervalValue = text
			c.changed()
		})
		units := make([]string, len(schedule.Units))
		for i, u := range schedule.Units {
			units[i] = string(u)
		}
		c.form.AddDropDown("Unit", units, slices.Index(schedule.Units, c.draft.Schedule.IntervalUnit), func(_ string, i int) {
			if c.building || i < 0 {
				return
			}
			c.draft.Schedule.IntervalUnit = schedule.Units[i]
			c.changed()
		})
		c.form.AddInputField("Repeat", c.draft.Schedule.RepeatCount, 6, tview.InputFieldInteger, func(text string) {
			c.draft.Schedule.RepeatCount = text
			c.changed()
		})
		c.placeholder("Repeat", "times")
	}
}

func (c *Composer) placeholder(label, text string) {
	if field, ok := c.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		field.SetPlaceholder(text)
	}
}

func (c *Composer) renderStatus() {
	c.status.Clear()
	if len(c.errs) > 0 {
		msgs := make([]string, len(c.errs))
		for i, e := range c.errs {
			msgs[i] = e.Message
		}
		_, _ = fmt.Fprintf(c.status, "[%s]%s[-]", ui.Tag(c.theme.FieldErrColor), tview.Escape(strings.Join(msgs, ". ")))
		return
	}
	_, _ = fmt.Fprintf(c.status, "[%s]%s[-]", ui.Tag(c.theme.MutedColor), tview.Escape(Preview(c.draft, c.now())))
}

// ParseDateTime reads a "YYYY-MM-DD HH:MM" time in loc. Blank input is
// the zero time.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateTimeLayout, s, loc)
}

// Preview describes when the draft would be delivered.
func Preview(c schedule.Compose, now time.Time) string {
	sel := c.Schedule
	switch sel.Type {
	case "":
		return "Choose when to send"
	case schedule.Now:
		return "Sends as soon as the relay picks it up"
	}
	if err := schedule.Validate(schedule.Compose{Text: "x", Schedule: sel}); err != nil {
		var fe validate.FieldErrors
		if errors.As(err, &fe) && len(fe) > 0 {
			return fe[0].Message
		}
		return err.Error()
	}

	d := schedule.Build(sel)
	next, err := schedule.NextRun(d.Cron, now)
	if err != nil {
		return d.Summary
	}
	return fmt.Sprintf("%s. Next run %s", d.Summary, next.Format("Mon 2 Jan 15:04"))
}

func isCtrlS(event *tcell.EventKey) bool {
	if event.Key() == tcell.KeyCtrlS {
		return true
	}
	return event.Key() == tcell.KeyRune && event.Rune() == 's' && event.Modifiers()&tcell.ModCtrl != 0
}
