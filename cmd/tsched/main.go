package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheus3301/tsched/internal/app"
	"github.com/matheus3301/tsched/internal/auth"
	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/config"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/lock"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/poller"
	"github.com/matheus3301/tsched/internal/session"
	"github.com/matheus3301/tsched/internal/status"
	"github.com/matheus3301/tsched/internal/tui"
	"github.com/matheus3301/tsched/internal/tui/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 10 * time.Second
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	debugFlag := flag.Bool("debug", false, "write debug entries to the session log")
	flag.Parse()

	sessionName, err := session.Resolve(*sessionFlag)
	if err != nil {
		fail(err)
	}
	cwd, _ := os.Getwd()
	cfg, err := config.Resolve(session.ConfigPath(), cwd)
	if err != nil {
		fail(err)
	}

	var (
		mgr     *auth.Manager
		svc     *chat.Service
		dir     *directory.Directory
		msgs    *msgstore.Store
		machine *status.Machine
		pl      *poller.Poller
		b       *bus.Bus
		logger  *zap.Logger
	)
	fxApp := fx.New(
		app.Module(app.Params{
			SessionName: sessionName,
			Config:      cfg,
			Owner:       "tsched",
			Debug:       *debugFlag,
		}),
		fx.Populate(&mgr, &svc, &dir, &msgs, &machine, &pl, &b, &logger),
		fx.NopLogger,
	)
	if err := fxApp.Err(); err != nil {
		fail(err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	err = fxApp.Start(startCtx)
	cancel()
	if err != nil {
		fail(err)
	}

	ui := tui.NewApp(model.NewViewModel(model.Deps{
		Auth:     mgr,
		Chat:     svc,
		Dir:      dir,
		Messages: msgs,
		Machine:  machine,
		Poller:   pl,
	}), b, sessionName, logger)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigs; ok {
			ui.Stop()
		}
	}()

	runErr := ui.Run()
	signal.Stop(sigs)
	close(sigs)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if runErr != nil {
		fail(runErr)
	}
}

func fail(err error) {
	var held *lock.HeldError
	if errors.As(err, &held) {
		owner := held.Owner
		if owner == "" {
			owner = "process"
		}
		fmt.Fprintf(os.Stderr, "error: this session is already open in another %s (pid %d)\n", owner, held.PID)
		fmt.Fprintln(os.Stderr, "use --session <name> to open a different one")
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
