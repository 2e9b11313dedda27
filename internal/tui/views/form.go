package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/matheus3301/tsched/internal/validate"
	"github.com/rivo/tview"
)

// fieldForm is a bordered form with an error area under it.
type fieldForm struct {
	*tview.Flex
	theme  *ui.Theme
	form   *tview.Form
	errors *tview.TextView
}

func newFieldForm(theme *ui.Theme, title string) *fieldForm {
	form := tview.NewForm()
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(tcell.ColorDarkSlateGray)
	form.SetFieldTextColor(theme.TableHeaderFg)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)

	errs := tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	errs.SetBackgroundColor(theme.BgColor)
	errs.SetBorderPadding(0, 0, 2, 2)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errs, 3, 0, false)
	flex.SetBorder(true)
	flex.SetBorderColor(theme.BorderFocusColor)
	flex.SetBackgroundColor(theme.BgColor)
	flex.SetTitle(fmt.Sprintf(" %s ", title))
	flex.SetTitleColor(theme.TitleColor)

	return &fieldForm{Flex: flex, theme: theme, form: form, errors: errs}
}

// Form returns the focusable form.
func (f *fieldForm) Form() *tview.Form {
	return f.form
}

// showError lists err under the form, naming the field each message is
// about. A nil err clears the area.
func (f *fieldForm) showError(err error, labels map[string]string) {
	f.errors.Clear()
	if err == nil {
		return
	}
	_, _ = fmt.Fprintf(f.errors, "[%s]%s[-]", ui.Tag(f.theme.FieldErrColor), tview.Escape(FieldMessages(err, labels)))
}

func (f *fieldForm) text(label string) string {
	if field, ok := f.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}

// FieldMessages renders err one line per failed field, prefixed with the
// field's label when labels knows it. Other errors go through
// chat.Notice.
func FieldMessages(err error, labels map[string]string) string {
	var (
		fes validate.FieldErrors
		fe  *validate.FieldError
	)
	switch {
	case errors.As(err, &fes):
	case errors.As(err, &fe):
		fes = validate.FieldErrors{fe}
	default:
		return chat.Notice(err)
	}
	lines := make([]string, 0, len(fes))
	for _, e := range fes {
		if label, ok := labels[e.Field]; ok {
			lines = append(lines, label+": "+e.Message)
		} else {
			lines = append(lines, e.Message)
		}
	}
	return strings.Join(lines, "\n")
}
