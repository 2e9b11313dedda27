package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/matheus3301/tsched/internal/app"
	"github.com/matheus3301/tsched/internal/auth"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/config"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/health"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/schedule"
	"github.com/matheus3301/tsched/internal/session"
	"github.com/matheus3301/tsched/internal/tui/views"
	"go.uber.org/fx"
)

const envPassword = "TSCHED_PASSWORD"

type clients struct {
	auth     *auth.Manager
	chat     *chat.Service
	dir      *directory.Directory
	messages *msgstore.Store
}

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	debugFlag := flag.Bool("debug", false, "write debug entries to the session log")
	timeoutFlag := flag.Duration("timeout", 60*time.Second, "overall command timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	sessionName, err := session.Resolve(*sessionFlag)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	if args[0] == "status" {
		cmdStatus(ctx, sessionName, *jsonFlag)
		return
	}

	cwd, _ := os.Getwd()
	cfg, err := config.Resolve(session.ConfigPath(), cwd)
	if err != nil {
		fail(err)
	}

	var c clients
	fxApp := fx.New(
		app.Core(app.Params{
			SessionName: sessionName,
			Config:      cfg,
			Owner:       "tschedctl",
			Console:     true,
			Debug:       *debugFlag,
		}),
		fx.Populate(&c.auth, &c.chat, &c.dir, &c.messages),
		fx.NopLogger,
	)
	if err := fxApp.Start(ctx); err != nil {
		fail(err)
	}

	code := 0
	if err := run(ctx, c, args, *jsonFlag); err != nil {
		notice := chat.Notice(err)
		if notice == chat.GenericNotice {
			notice = err.Error()
		}
		printError(notice)
		code = 1
	}

	stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, c clients, args []string, jsonOut bool) error {
	switch args[0] {
	case "login":
		return cmdLogin(ctx, c, args[1:], jsonOut)
	case "register":
		return cmdRegister(ctx, c, args[1:])
	case "logout":
		if err := c.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	}

	if err := restore(ctx, c); err != nil {
		return err
	}
	switch args[0] {
	case "whoami":
		acc := c.auth.Account()
		if jsonOut {
			outputJSON(map[string]string{"username": acc.Username, "email": acc.Email, "api_url": acc.APIURL})
			return nil
		}
		fmt.Printf("%s <%s> on %s\n", acc.Username, acc.Email, acc.APIURL)
		return nil
	case "groups":
		return cmdGroups(c, jsonOut)
	case "messages":
		return cmdMessages(ctx, c, args[1:], jsonOut)
	case "send":
		return cmdSend(ctx, c, args[1:], jsonOut)
	case "toggle":
		return cmdToggle(ctx, c, args[1:])
	case "create-group":
		return cmdCreateGroup(ctx, c, args[1:], jsonOut)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: tschedctl [--session <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                          Probe the running tsched of this session")
	fmt.Fprintln(os.Stderr, "  login <email>                   Sign in (password from $"+envPassword+" or stdin)")
	fmt.Fprintln(os.Stderr, "  register <username> <email>     Create an account")
	fmt.Fprintln(os.Stderr, "  logout                          Forget the stored token")
	fmt.Fprintln(os.Stderr, "  whoami                          Show the signed-in account")
	fmt.Fprintln(os.Stderr, "  groups                          List groups")
	fmt.Fprintln(os.Stderr, "  messages <group>                Show a group's messages")
	fmt.Fprintln(os.Stderr, "  send [flags] <group> <text>     Send or schedule a message")
	fmt.Fprintln(os.Stderr, "       --at \"YYYY-MM-DD HH:MM\"     at a local time")
	fmt.Fprintln(os.Stderr, "       --every N --unit U --repeat R  every N minutes|hours|days, R times")
	fmt.Fprintln(os.Stderr, "  toggle <message-id>             Pause or resume a scheduled message")
	fmt.Fprintln(os.Stderr, "  create-group <id> <name>        Register a group (-100... or @handle)")
}

func restore(ctx context.Context, c clients) error {
	ok, err := c.auth.Restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("not signed in: run tschedctl login <email>")
	}
	return nil
}

func readPassword() (string, error) {
	if v, ok := os.LookupEnv(envPassword); ok {
		return v, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func cmdLogin(ctx context.Context, c clients, args []string, jsonOut bool) error {
	if len(args) != 1 {
		return errors.New("usage: tschedctl login <email>")
	}
	password, err := readPassword()
	if err != nil {
		return err
	}
	acc, err := c.auth.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	if jsonOut {
		outputJSON(map[string]any{"username": acc.Username, "groups": len(c.dir.Groups()), "offline": c.dir.Offline()})
		return nil
	}
	fmt.Printf("Signed in as %s. %d groups.\n", acc.Username, len(c.dir.Groups()))
	return nil
}

func cmdRegister(ctx context.Context, c clients, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: tschedctl register <username> <email>")
	}
	password, err := readPassword()
	if err != nil {
		return err
	}
	if err := c.auth.Register(ctx, args[0], args[1], password); err != nil {
		return err
	}
	fmt.Println("Account created. Sign in with: tschedctl login " + args[1])
	return nil
}

func cmdGroups(c clients, jsonOut bool) error {
	groups := c.dir.Groups()
	if jsonOut {
		outputJSON(groups)
		return nil
	}
	if c.dir.Offline() {
		_, _ = warn.Fprintln(color.Error, chat.OfflineNotice)
	}
	printGroups(groups, time.Now())
	return nil
}

func cmdMessages(ctx context.Context, c clients, args []string, jsonOut bool) error {
	if len(args) != 1 {
		return errors.New("usage: tschedctl messages <group>")
	}
	if err := c.chat.Reload(ctx, args[0]); err != nil {
		return err
	}
	msgs := c.messages.Messages(args[0])
	if jsonOut {
		outputJSON(msgs)
		return nil
	}
	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return nil
	}
	printMessages(msgs, time.Now())
	return nil
}

func cmdSend(ctx context.Context, c clients, args []string, jsonOut bool) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	at := fs.String("at", "", "local date and time, YYYY-MM-DD HH:MM")
	every := fs.String("every", "", "repeat interval value")
	unit := fs.String("unit", string(schedule.Minutes), "interval unit: minutes, hours or days")
	repeat := fs.String("repeat", "", "number of deliveries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: tschedctl send [--at T | --every N --unit U --repeat R] <group> <text>")
	}

	compose := schedule.Compose{
		Text:     strings.Join(fs.Args()[1:], " "),
		Schedule: schedule.Selection{Type: schedule.Now},
	}
	switch {
	case *at != "":
		t, err := views.ParseDateTime(*at, time.Local)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		compose.Schedule = schedule.Selection{Type: schedule.DateTime, DateTime: t}
	case *every != "" || *repeat != "":
		compose.Schedule = schedule.Selection{
			Type:          schedule.Interval,
			IntervalValue: *every,
			IntervalUnit:  schedule.Unit(*unit),
			RepeatCount:   *repeat,
		}
	}

	d, err := c.chat.Send(ctx, fs.Arg(0), compose)
	if err != nil {
		return err
	}
	if jsonOut {
		outputJSON(map[string]string{"cron": d.Cron, "summary": d.Summary})
		return nil
	}
	if d.Summary != "" {
		fmt.Println(d.Summary)
	} else {
		fmt.Println("Message sent.")
	}
	return nil
}

func cmdToggle(ctx context.Context, c clients, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tschedctl toggle <message-id>")
	}
	if err := c.chat.TogglePaused(ctx, args[0]); err != nil {
		return err
	}
	groupID, ok := c.messages.Owner(args[0])
	if !ok {
		fmt.Println("Toggled.")
		return nil
	}
	for _, m := range c.messages.Messages(groupID) {
		if m.ID == args[0] {
			fmt.Printf("Message is now %s.\n", strings.ToLower(msgstore.PauseLabel(m)))
			return nil
		}
	}
	fmt.Println("Toggled.")
	return nil
}

func cmdCreateGroup(ctx context.Context, c clients, args []string, jsonOut bool) error {
	if len(args) < 2 {
		return errors.New("usage: tschedctl create-group <id> <name>")
	}
	created, err := c.chat.CreateGroup(ctx, strings.Join(args[1:], " "), args[0])
	if err != nil {
		return err
	}
	if jsonOut {
		outputJSON(created)
		return nil
	}
	fmt.Printf("Group %s (%s) created.\n", created.DisplayName, created.GroupID)
	return nil
}

func cmdStatus(ctx context.Context, sessionName string, jsonOut bool) {
	socketPath := session.SocketPath(sessionName)
	components := []struct{ label, service string }{
		{"overall", health.Overall},
		{"auth", health.Auth},
		{"directory", health.Directory},
	}

	result := map[string]string{}
	for _, comp := range components {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		st, err := health.Check(checkCtx, socketPath, comp.service)
		cancel()
		if err != nil {
			if comp.service == health.Overall {
				if jsonOut {
					outputJSON(map[string]string{"session": sessionName, "overall": "NOT_RUNNING"})
				} else {
					fmt.Printf("Session %s: tsched is not running\n", sessionName)
				}
				os.Exit(3)
			}
			result[comp.label] = "UNKNOWN"
			continue
		}
		result[comp.label] = st.String()
	}

	if jsonOut {
		result["session"] = sessionName
		outputJSON(result)
		return
	}
	labels := make([]string, 0, len(components))
	for _, comp := range components {
		labels = append(labels, comp.label)
	}
	printStatus(sessionName, labels, result)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) > 60 {
		return string([]rune(s)[:59]) + "~"
	}
	return s
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func fail(err error) {
	printError(err.Error())
	os.Exit(1)
}
