package views

import (
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
)

// LoginMode selects between signing in and creating an account.
type LoginMode int

const (
	ModeSignIn LoginMode = iota
	ModeRegister
)

const (
	usernameLabel = "Username"
	emailLabel    = "Email"
	passwordLabel = "Password"
)

var loginFieldLabels = map[string]string{
	"username": usernameLabel,
	"email":    emailLabel,
	"password": passwordLabel,
}

// LoginView is the sign-in page shown until a session is established.
type LoginView struct {
	*fieldForm
	mode       LoginMode
	onLogin    func(email, password string)
	onRegister func(username, email, password string)
}

// NewLoginView creates the page in sign-in mode.
func NewLoginView(theme *ui.Theme) *LoginView {
	lv := &LoginView{fieldForm: newFieldForm(theme, "Sign in")}
	lv.SetMode(ModeSignIn)
	return lv
}

// Name implements Component.
func (lv *LoginView) Name() string {
	if lv.mode == ModeRegister {
		return "Register"
	}
	return "Sign in"
}

// Hints implements Component.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

// SetOnLogin sets the sign-in callback.
func (lv *LoginView) SetOnLogin(fn func(email, password string)) {
	lv.onLogin = fn
}

// SetOnRegister sets the account creation callback.
func (lv *LoginView) SetOnRegister(fn func(username, email, password string)) {
	lv.onRegister = fn
}

// Mode returns the current mode.
func (lv *LoginView) Mode() LoginMode {
	return lv.mode
}

// SetMode rebuilds the form for m. The email typed so far is kept.
func (lv *LoginView) SetMode(m LoginMode) {
	email := lv.text(emailLabel)
	lv.mode = m
	lv.form.Clear(true)
	lv.showError(nil, nil)

	if m == ModeRegister {
		lv.SetTitle(" Create account ")
		lv.form.AddInputField(usernameLabel, "", 32, nil, nil)
	} else {
		lv.SetTitle(" Sign in ")
	}
	lv.form.AddInputField(emailLabel, email, 32, nil, nil)
	lv.form.AddPasswordField(passwordLabel, "", 32, '*', nil)

	if m == ModeRegister {
		lv.form.AddButton("Create account", lv.submit)
		lv.form.AddButton("Back to sign in", func() { lv.SetMode(ModeSignIn) })
	} else {
		lv.form.AddButton("Sign in", lv.submit)
		lv.form.AddButton("Create account", func() { lv.SetMode(ModeRegister) })
	}
	lv.form.SetFocus(0)
}

// ShowError displays a failed attempt.
func (lv *LoginView) ShowError(err error) {
	lv.showError(err, loginFieldLabels)
}

// ShowMessage displays a neutral note, e.g. after registering.
func (lv *LoginView) ShowMessage(msg string) {
	lv.errors.Clear()
	_, _ = lv.errors.Write([]byte(tview.Escape(msg)))
}

func (lv *LoginView) submit() {
	email, password := lv.text(emailLabel), lv.text(passwordLabel)
	if lv.mode == ModeRegister {
		if lv.onRegister != nil {
			lv.onRegister(lv.text(usernameLabel), email, password)
		}
		return
	}
	if lv.onLogin != nil {
		lv.onLogin(email, password)
	}
}
