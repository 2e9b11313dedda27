package views

import (
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/matheus3301/tsched/internal/validate"
	"github.com/rivo/tview"
)

const (
	groupNameLabel = "Name"
	groupIDLabel   = "Group ID"
)

var groupFieldLabels = map[string]string{
	"displayName": groupNameLabel,
	"groupId":     groupIDLabel,
}

// GroupForm is the "new group" dialog.
type GroupForm struct {
	*fieldForm
	onSubmit func(name, groupID string)
	onCancel func()
}

// NewGroupForm creates the dialog.
func NewGroupForm(theme *ui.Theme) *GroupForm {
	gf := &GroupForm{fieldForm: newFieldForm(theme, "New Group")}
	gf.build()
	return gf
}

// Name implements Component.
func (gf *GroupForm) Name() string { return "New Group" }

// Hints implements Component.
func (gf *GroupForm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Create"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetOnSubmit sets the callback for the Create button.
func (gf *GroupForm) SetOnSubmit(fn func(name, groupID string)) {
	gf.onSubmit = fn
}

// SetOnCancel sets the callback for Cancel and Esc.
func (gf *GroupForm) SetOnCancel(fn func()) {
	gf.onCancel = fn
	gf.form.SetCancelFunc(func() {
		if gf.onCancel != nil {
			gf.onCancel()
		}
	})
}

// Reset empties the fields and errors.
func (gf *GroupForm) Reset() {
	gf.form.Clear(true)
	gf.build()
	gf.ShowError(nil)
}

// ShowError displays a create failure.
func (gf *GroupForm) ShowError(err error) {
	gf.showError(err, groupFieldLabels)
}

func (gf *GroupForm) build() {
	gf.form.AddInputField(groupNameLabel, "", 40, tview.InputFieldMaxLength(validate.MaxGroupNameLength), nil)
	gf.form.AddInputField(groupIDLabel, "", 40, nil, nil)
	if id, ok := gf.form.GetFormItemByLabel(groupIDLabel).(*tview.InputField); ok {
		id.SetPlaceholder("-1001234567890 or @publicgroup")
	}
	gf.form.AddButton("Create", func() {
		if gf.onSubmit != nil {
			gf.onSubmit(gf.text(groupNameLabel), gf.text(groupIDLabel))
		}
	})
	gf.form.AddButton("Cancel", func() {
		if gf.onCancel != nil {
			gf.onCancel()
		}
	})
	gf.form.SetFocus(0)
}
