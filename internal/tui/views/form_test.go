package views

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/matheus3301/tsched/internal/validate"
	"github.com/rivo/tview"
)

func TestFieldMessages(t *testing.T) {
	labels := map[string]string{"email": "Email"}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"several fields",
			validate.FieldErrors{
				{Field: "email", Message: "Enter a valid email address"},
				{Field: "password", Message: "Password is required"},
			},
			"Email: Enter a valid email address\nPassword is required",
		},
		{
			"single field wrapped",
			fmt.Errorf("create: %w", &validate.FieldError{Field: "email", Message: "taken"}),
			"Email: taken",
		},
		{
			"api error",
			fmt.Errorf("login: %w", &backend.APIError{Status: 401, Message: "Invalid email or password"}),
			"Invalid email or password",
		},
		{"other", errors.New("boom"), chat.GenericNotice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FieldMessages(tt.err, labels); got != tt.want {
				t.Errorf("FieldMessages = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginViewModes(t *testing.T) {
	lv := NewLoginView(ui.DefaultTheme())

	var gotEmail, gotPassword string
	lv.SetOnLogin(func(email, password string) { gotEmail, gotPassword = email, password })
	var gotUser string
	lv.SetOnRegister(func(username, _, _ string) { gotUser = username })

	if n := lv.Form().GetFormItemCount(); n != 2 {
		t.Fatalf("sign-in form has %d fields, want 2", n)
	}
	lv.Form().GetFormItemByLabel(emailLabel).(*tview.InputField).SetText("ana@example.com")
	lv.Form().GetFormItemByLabel(passwordLabel).(*tview.InputField).SetText("secret")
	lv.submit()
	if gotEmail != "ana@example.com" || gotPassword != "secret" {
		t.Errorf("login got %q %q", gotEmail, gotPassword)
	}

	lv.SetMode(ModeRegister)
	if lv.Name() != "Register" || lv.Form().GetFormItemCount() != 3 {
		t.Fatalf("register form: name %q, %d fields", lv.Name(), lv.Form().GetFormItemCount())
	}
	if lv.text(emailLabel) != "ana@example.com" {
		t.Errorf("email not kept across modes: %q", lv.text(emailLabel))
	}
	lv.Form().GetFormItemByLabel(usernameLabel).(*tview.InputField).SetText("ana")
	lv.submit()
	if gotUser != "ana" {
		t.Errorf("register got username %q", gotUser)
	}
}

func TestGroupFormReset(t *testing.T) {
	gf := NewGroupForm(ui.DefaultTheme())
	gf.Form().GetFormItemByLabel(groupNameLabel).(*tview.InputField).SetText("Ops")
	gf.Form().GetFormItemByLabel(groupIDLabel).(*tview.InputField).SetText("@opsteam")
	if gf.text(groupNameLabel) != "Ops" || gf.text(groupIDLabel) != "@opsteam" {
		t.Fatal("fields not set")
	}

	gf.Reset()
	if gf.text(groupNameLabel) != "" || gf.text(groupIDLabel) != "" {
		t.Error("Reset kept the typed values")
	}
	if gf.Form().GetButtonCount() != 2 {
		t.Errorf("buttons = %d, want 2", gf.Form().GetButtonCount())
	}
}
