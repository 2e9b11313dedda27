// Package tui is the terminal front end: a page stack of group list,
// thread and dialogs driven by the view model and the event bus.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/schedule"
	"github.com/matheus3301/tsched/internal/tui/keys"
	"github.com/matheus3301/tsched/internal/tui/model"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/matheus3301/tsched/internal/tui/views"
	"github.com/matheus3301/tsched/internal/validate"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageLogin    = "login"
	pageGroups   = "groups"
	pageThread   = "thread"
	pageInfo     = "info"
	pageNewGroup = "new-group"
	pageNotice   = "notice"
	pageHelp     = "help"
)

const (
	headerRows    = 5
	flashInterval = time.Second
	clockInterval = time.Minute
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	vm       *model.ViewModel
	bus      *bus.Bus
	session  string
	logger   *zap.Logger
	registry *keys.Registry

	main     *tview.Flex
	top      *tview.Flex
	header   *ui.Header
	menu     *ui.Menu
	logo     *ui.Logo
	prompt   *ui.Prompt
	pages    *ui.Pages
	crumbs   *ui.Crumbs
	flash    *ui.FlashModel
	flashBar *ui.FlashBar

	login     *views.LoginView
	groups    *views.GroupList
	thread    *views.MessageThread
	info      *views.GroupInfo
	groupForm *views.GroupForm
	notice    *views.Notice
	help      *views.HelpView

	components    map[string]ui.Component
	promptVisible bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the UI. Nothing runs until Run.
func NewApp(vm *model.ViewModel, b *bus.Bus, sessionName string, logger *zap.Logger) *App {
	theme := ui.DefaultTheme()
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:      tview.NewApplication(),
		theme:    theme,
		vm:       vm,
		bus:      b,
		session:  sessionName,
		logger:   logger,
		registry: keys.NewRegistry(),

		header:   ui.NewHeader(theme),
		menu:     ui.NewMenu(theme),
		logo:     ui.NewLogo(theme),
		prompt:   ui.NewPrompt(theme, Commands),
		pages:    ui.NewPages(),
		crumbs:   ui.NewCrumbs(theme),
		flash:    ui.NewFlashModel(),
		flashBar: ui.NewFlashBar(theme),

		login:     views.NewLoginView(theme),
		groups:    views.NewGroupList(theme),
		thread:    views.NewMessageThread(theme),
		info:      views.NewGroupInfo(theme),
		groupForm: views.NewGroupForm(theme),
		notice:    views.NewNotice(theme),
		help:      views.NewHelpView(theme),

		ctx:    ctx,
		cancel: cancel,
	}
	a.components = map[string]ui.Component{
		pageLogin:    a.login,
		pageGroups:   a.groups,
		pageThread:   a.thread,
		pageInfo:     a.info,
		pageNewGroup: a.groupForm,
		pageNotice:   a.notice,
		pageHelp:     a.help,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	r := a.registry
	r.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: ':', Description: "command", Handler: func() { a.showPrompt(ui.PromptCommand) }})
	r.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: '?', Description: "help", Handler: func() { a.push(pageHelp) }})
	r.AddGlobal(&keys.Action{Key: tcell.KeyEscape, Description: "back", Handler: a.back})

	r.AddView(pageGroups, &keys.Action{Key: tcell.KeyRune, Rune: 'q', Description: "quit", Handler: a.Stop})
	r.AddView(pageGroups, &keys.Action{Key: tcell.KeyRune, Rune: '/', Description: "filter", Handler: func() { a.showPrompt(ui.PromptFilter) }})
	r.AddView(pageGroups, &keys.Action{Key: tcell.KeyRune, Rune: 'n', Description: "new group", Handler: a.showNewGroup})
	r.AddView(pageGroups, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Description: "details", Handler: func() { a.showInfo(a.groups.SelectedGroup()) }})
	r.AddView(pageGroups, &keys.Action{Key: tcell.KeyRune, Rune: 'r', Description: "refresh", Handler: a.refresh})
	for n := 1; n <= 9; n++ {
		r.AddView(pageGroups, &keys.Action{Key: tcell.KeyRune, Rune: rune('0' + n), Description: "jump", Handler: func() {
			if g := a.groups.GroupByIndex(n); g.ID != "" {
				a.openGroup(g)
			}
		}})
	}

	r.AddView(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'i', Description: "compose", Handler: a.focusComposer})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'j', Description: "next", Handler: func() { a.thread.Select(1) }})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyDown, Description: "next", Handler: func() { a.thread.Select(1) }})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'k', Description: "previous", Handler: func() { a.thread.Select(-1) }})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyUp, Description: "previous", Handler: func() { a.thread.Select(-1) }})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'p', Description: "pause", Handler: a.togglePaused})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Description: "details", Handler: func() {
		if g, ok := a.vm.ActiveGroup(); ok {
			a.showInfo(g)
		}
	}})
	r.AddView(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'r', Description: "reload", Handler: a.reload})
}

func (a *App) setupCallbacks() {
	a.login.SetOnLogin(a.signIn)
	a.login.SetOnRegister(a.register)

	a.groups.SetSelectedFunc(func(row, _ int) {
		if g := a.groups.GroupByIndex(row); g.ID != "" {
			a.openGroup(g)
		}
	})

	composer := a.thread.Composer()
	composer.SetOnChange(a.vm.SetCompose)
	composer.SetOnSend(func(c schedule.Compose) {
		a.vm.SetCompose(c)
		a.send()
	})

	a.groupForm.SetOnSubmit(a.createGroup)
	a.groupForm.SetOnCancel(a.back)
	a.notice.SetOnDone(a.back)

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.groups.SetFilter(text)
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptCommand {
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.groups.SetFilter("")
		}
		a.hidePrompt()
	})

	a.pages.SetOnChange(func(stack []string) {
		labels := make([]string, 0, len(stack))
		for _, name := range stack {
			if c, ok := a.components[name]; ok {
				labels = append(labels, c.Name())
			}
		}
		a.crumbs.Update(labels)
		if c, ok := a.components[a.pages.Current()]; ok {
			a.menu.Update(c.Hints())
		}
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageLogin, ui.Centered(a.login, 60, 14), true, false)
	a.pages.AddPage(pageGroups, a.groups, true, false)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageInfo, a.info, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.AddModal(pageNewGroup, ui.Centered(a.groupForm, 64, 12))
	a.pages.AddModal(pageNotice, a.notice)

	a.top = tview.NewFlex().
		AddItem(a.header, 0, 1, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(a.logo, 26, 0, false)

	a.main = tview.NewFlex().SetDirection(tview.FlexRow)
	a.layout()

	a.app.SetRoot(a.main, true)
	a.app.SetInputCapture(a.capture)
}

func (a *App) layout() {
	a.main.Clear()
	a.main.AddItem(a.top, headerRows, 0, false)
	if a.promptVisible {
		a.main.AddItem(a.prompt, 3, 0, true)
	}
	a.main.AddItem(a.pages, 0, 1, !a.promptVisible)
	a.main.AddItem(a.crumbs, 1, 0, false)
	a.main.AddItem(a.flashBar, 1, 0, false)
}

func (a *App) capture(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}
	if a.promptVisible {
		return event
	}
	page := a.pages.Current()
	if a.typing(page) {
		if event.Key() == tcell.KeyEscape && page == pageThread {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		return event
	}
	if a.registry.HandleEvent(page, event) {
		return nil
	}
	return event
}

// typing reports whether keys belong to a text field rather than to the
// page bindings.
func (a *App) typing(page string) bool {
	switch page {
	case pageLogin, pageNewGroup, pageNotice:
		return true
	case pageThread:
		if a.thread.Composer().Form().HasFocus() {
			return true
		}
	}
	_, ok := a.app.GetFocus().(*tview.InputField)
	return ok
}

// Run restores the saved session and blocks until the UI exits.
func (a *App) Run() error {
	events, unsubscribe := a.bus.Subscribe("", 64)
	defer unsubscribe()
	go a.listen(events)
	go a.tick()

	a.pages.Reset(pageLogin)
	a.login.ShowMessage("Restoring session...")
	a.updateHeader()
	go a.restore()

	err := a.app.Run()
	a.cancel()
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func (a *App) listen(events <-chan bus.Event) {
	for {
		select {
		case <-a.ctx.Done():
			return
		case evt := <-events:
			a.queue(func() { a.handleEvent(evt) })
		}
	}
}

func (a *App) tick() {
	flashTicker := time.NewTicker(flashInterval)
	clockTicker := time.NewTicker(clockInterval)
	defer flashTicker.Stop()
	defer clockTicker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-flashTicker.C:
			a.queue(func() { a.flashBar.Update(a.flash.Current()) })
		case <-clockTicker.C:
			a.queue(a.updateHeader)
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindMessagesReplaced, bus.KindMessagesAnnotate:
		p, _ := evt.Payload.(bus.GroupPayload)
		if p.GroupID != "" && p.GroupID == a.vm.Active() {
			a.thread.Update(a.vm.Messages(), time.Now())
		}
	case bus.KindGroupsRefreshed:
		a.groups.Update(a.vm.Groups())
		if g, ok := a.vm.ActiveGroup(); ok {
			a.thread.SetGroup(g)
		}
		a.updateHeader()
	case bus.KindStatusChanged:
		a.updateHeader()
	case bus.KindSignedOut:
		a.vm.Close()
		a.thread.Composer().SetValue(schedule.Compose{})
		a.login.SetMode(views.ModeSignIn)
		a.pages.Reset(pageLogin)
		a.focusPage(pageLogin)
		a.updateHeader()
	}
}

func (a *App) updateHeader() {
	data := ui.HeaderData{
		Session: a.session,
		Status:  a.vm.Status().Label(),
		Offline: a.vm.Offline(),
		Groups:  len(a.vm.Groups()),
		Synced:  a.vm.RefreshedAt(),
		Now:     time.Now(),
	}
	if acc := a.vm.Account(); acc != nil {
		data.User = acc.Username
	}
	a.header.Update(data)
}

func (a *App) push(page string) {
	a.pages.Push(page)
	a.focusPage(page)
}

func (a *App) back() {
	switch a.pages.Current() {
	case pageGroups, pageLogin:
		if a.groups.Filter() != "" {
			a.groups.SetFilter("")
		}
		return
	case pageThread:
		a.vm.Close()
	}
	a.pages.Pop()
	a.focusPage(a.pages.Current())
}

func (a *App) focusPage(page string) {
	switch page {
	case pageLogin:
		a.app.SetFocus(a.login.Form())
	case pageGroups:
		a.app.SetFocus(a.groups)
	case pageThread:
		a.app.SetFocus(a.thread.Messages())
	case pageInfo:
		a.app.SetFocus(a.info)
	case pageHelp:
		a.app.SetFocus(a.help)
	case pageNewGroup:
		a.app.SetFocus(a.groupForm.Form())
	case pageNotice:
		a.app.SetFocus(a.notice)
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.promptVisible = true
	a.layout()
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.promptVisible = false
	a.layout()
	a.focusPage(a.pages.Current())
}

func (a *App) showNotice(err error) {
	a.notice.Show(chat.Notice(err))
	a.push(pageNotice)
}

// async runs fn off the UI goroutine and applies done on it.
func (a *App) async(fn func(ctx context.Context) func()) {
	go func() {
		if done := fn(a.ctx); done != nil {
			a.queue(done)
		}
	}()
}

// queue hands fn to the UI goroutine. Once the UI is stopped nothing drains
// the update queue, so fn is dropped and queue reports false.
func (a *App) queue(fn func()) bool {
	if a.ctx.Err() != nil {
		return false
	}
	a.app.QueueUpdateDraw(fn)
	return true
}

func (a *App) restore() {
	ok, err := a.vm.Restore(a.ctx)
	a.queue(func() {
		a.login.ShowMessage("")
		if err != nil {
			a.logger.Warn("restore session failed", zap.Error(err))
			a.flash.Err(chat.Notice(err))
		}
		if ok {
			a.showGroups()
			return
		}
		a.focusPage(pageLogin)
		a.updateHeader()
	})
}

func (a *App) showGroups() {
	a.groups.Update(a.vm.Groups())
	a.pages.Reset(pageGroups)
	a.focusPage(pageGroups)
	a.updateHeader()
	if a.vm.Offline() {
		a.flash.Warn("Server unreachable. Showing offline placeholder.")
	}
}

func (a *App) signIn(email, password string) {
	a.login.ShowMessage("Signing in...")
	a.async(func(ctx context.Context) func() {
		err := a.vm.Login(ctx, email, password)
		return func() {
			if err != nil {
				a.login.ShowError(err)
				return
			}
			a.login.ShowError(nil)
			a.showGroups()
			if acc := a.vm.Account(); acc != nil {
				a.flash.Info("Signed in as " + acc.Username)
			}
		}
	})
}

func (a *App) register(username, email, password string) {
	a.async(func(ctx context.Context) func() {
		err := a.vm.Register(ctx, username, email, password)
		return func() {
			if err != nil {
				a.login.ShowError(err)
				return
			}
			a.login.SetMode(views.ModeSignIn)
			a.login.ShowMessage("Account created. Sign in to continue.")
		}
	})
}

func (a *App) logout() {
	a.async(func(ctx context.Context) func() {
		err := a.vm.Logout(ctx)
		return func() {
			if err != nil {
				a.flash.Err(chat.Notice(err))
				return
			}
			a.flash.Info("Signed out")
		}
	})
}

func (a *App) openGroup(g directory.Group) {
	a.vm.Open(g.ID)
	a.thread.SetGroup(g)
	a.thread.Update(a.vm.Messages(), time.Now())
	a.thread.Composer().SetValue(a.vm.Compose())
	if a.pages.Current() != pageGroups {
		a.pages.Reset(pageGroups)
	}
	a.push(pageThread)
	a.reload()
}

func (a *App) reload() {
	a.async(func(ctx context.Context) func() {
		if err := a.vm.Reload(ctx); err != nil {
			return func() { a.flash.Warn(chat.Notice(err)) }
		}
		return nil
	})
}

func (a *App) refresh() {
	a.async(func(ctx context.Context) func() {
		res := a.vm.Refresh(ctx)
		return func() {
			switch {
			case res.Err != nil:
				a.flash.Err(chat.Notice(res.Err))
			case res.Offline:
				a.flash.Warn("Server unreachable. Showing offline placeholder.")
			case len(res.Failed) > 0:
				a.flash.Warn(fmt.Sprintf("%d groups refreshed, %d histories failed", res.Groups, len(res.Failed)))
			default:
				a.flash.Info(fmt.Sprintf("%d groups refreshed", res.Groups))
			}
		}
	})
}

func (a *App) focusComposer() {
	a.app.SetFocus(a.thread.Composer().Form())
}

func (a *App) send() {
	composer := a.thread.Composer()
	a.async(func(ctx context.Context) func() {
		d, err := a.vm.Send(ctx)
		return func() {
			var fe validate.FieldErrors
			if errors.As(err, &fe) {
				composer.ShowError(err)
				return
			}
			if err != nil {
				a.showNotice(err)
				return
			}
			composer.SetValue(a.vm.Compose())
			if d.Summary != "" {
				a.flash.Info(d.Summary)
			} else {
				a.flash.Info("Message sent")
			}
		}
	})
}

func (a *App) togglePaused() {
	m, ok := a.thread.Selected()
	if !ok {
		a.flash.Warn("Select a message first (j/k)")
		return
	}
	if !msgstore.Pausable(m) {
		a.flash.Warn("Only scheduled messages can be paused")
		return
	}
	a.async(func(ctx context.Context) func() {
		err := a.vm.TogglePaused(ctx, m.ID)
		return func() {
			if err != nil {
				a.showNotice(err)
				return
			}
			if m.Paused {
				a.flash.Info("Message resumed")
			} else {
				a.flash.Info("Message paused")
			}
		}
	})
}

func (a *App) showNewGroup() {
	a.groupForm.Reset()
	a.push(pageNewGroup)
}

func (a *App) createGroup(name, groupID string) {
	a.async(func(ctx context.Context) func() {
		created, err := a.vm.CreateGroup(ctx, strings.TrimSpace(name), strings.TrimSpace(groupID))
		return func() {
			if err != nil {
				a.groupForm.ShowError(err)
				return
			}
			a.back()
			a.flash.Info(fmt.Sprintf("Group %s created", created.DisplayName))
		}
	})
}

func (a *App) showInfo(g directory.Group) {
	if g.ID == "" {
		return
	}
	a.info.Update(g, len(a.vm.MessagesFor(g.ID)), time.Now())
	a.push(pageInfo)
}

func (a *App) runCommand(cmd Command) {
	signedIn := a.vm.Account() != nil
	if !signedIn && cmd.Name != cmdQuit && cmd.Name != cmdHelp {
		a.flash.Warn("Sign in first")
		return
	}
	switch cmd.Name {
	case "":
	case cmdQuit:
		a.Stop()
	case cmdHelp:
		a.push(pageHelp)
	case cmdGroups:
		a.vm.Close()
		a.pages.Reset(pageGroups)
		a.focusPage(pageGroups)
	case cmdGroup:
		g, ok := findGroup(a.vm.Groups(), cmd.Args)
		if !ok {
			a.flash.Warn(fmt.Sprintf("No group matches %q", cmd.Args))
			return
		}
		a.openGroup(g)
	case cmdNew:
		a.showNewGroup()
	case cmdInfo:
		g, ok := a.vm.ActiveGroup()
		if !ok {
			g = a.groups.SelectedGroup()
		}
		a.showInfo(g)
	case cmdRefresh:
		a.refresh()
	case cmdLogout:
		a.logout()
	default:
		a.flash.Err(fmt.Sprintf("Unknown command: %s", cmd.Name))
	}
}

// findGroup resolves query against ids first, then names: exact before
// partial, ignoring case.
func findGroup(groups []directory.Group, query string) (directory.Group, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return directory.Group{}, false
	}
	for _, g := range groups {
		if strings.ToLower(g.ID) == q {
			return g, true
		}
	}
	for _, g := range groups {
		if strings.ToLower(g.Name) == q {
			return g, true
		}
	}
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), q) || strings.Contains(strings.ToLower(g.ID), q) {
			return g, true
		}
	}
	return directory.Group{}, false
}
