// Package app wires the client's components together with fx.
package app

import (
	"context"

	"github.com/matheus3301/tsched/internal/auth"
	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/chat"
	"github.com/matheus3301/tsched/internal/config"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/health"
	"github.com/matheus3301/tsched/internal/lock"
	"github.com/matheus3301/tsched/internal/logging"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/poller"
	"github.com/matheus3301/tsched/internal/session"
	"github.com/matheus3301/tsched/internal/status"
	"github.com/matheus3301/tsched/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session and configuration.
type Params struct {
	SessionName string
	Config      *config.Config
	// Owner is recorded in the session lock, e.g. "tsched".
	Owner string
	// Console mirrors warnings to stderr. Off for the terminal UI.
	Console bool
	Debug   bool
	// SocketPath overrides the health socket, for tests.
	SocketPath string
}

// Core provides the components shared by the terminal UI and the CLI:
// logger, bus, status machine, credentials store, backend client, message
// store, directory, chat service and auth manager.
func Core(p Params) fx.Option {
	if p.Config == nil {
		p.Config = &config.Config{}
		p.Config.ApplyDefaults()
	}
	return fx.Module("core",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideStore,
			provideClient,
			provideMessages,
			provideDirectory,
			provideChatService,
			provideAuthManager,
		),
		fx.Invoke(registerStore),
	)
}

// Module is Core plus what a long-running client needs: the session lock,
// the health endpoint and the poller.
func Module(p Params) fx.Option {
	return fx.Options(
		Core(p),
		fx.Module("runtime",
			fx.Provide(
				provideLock,
				provideHealth,
				providePoller,
			),
			fx.Invoke(registerLifecycle),
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName, logging.Options{
		Console: p.Console,
		Debug:   p.Debug,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	dbPath := session.DBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	return db, nil
}

func provideClient(p Params, logger *zap.Logger) *backend.Client {
	return backend.NewClient(p.Config.APIURL, p.Config.RequestTimeout.Std(), logger)
}

func provideMessages(b *bus.Bus) *msgstore.Store {
	return msgstore.New(b)
}

func provideDirectory(client *backend.Client, messages *msgstore.Store, m *status.Machine, b *bus.Bus, logger *zap.Logger) *directory.Directory {
	return directory.New(client, messages, m, b, logger)
}

func provideChatService(client *backend.Client, messages *msgstore.Store, dir *directory.Directory, logger *zap.Logger) *chat.Service {
	return chat.NewService(client, messages, dir, logger)
}

func provideAuthManager(client *backend.Client, db *store.DB, messages *msgstore.Store, dir *directory.Directory, m *status.Machine, b *bus.Bus, logger *zap.Logger) *auth.Manager {
	return auth.NewManager(client, db, messages, dir, m, b, logger)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.LockPath(p.SessionName), p.Owner)
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideHealth(p Params, _ *lock.Lock, logger *zap.Logger) (*health.Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = session.SocketPath(p.SessionName)
	}
	return health.NewServer(socketPath, logger)
}

func providePoller(p Params, svc *chat.Service, dir *directory.Directory, logger *zap.Logger) *poller.Poller {
	return poller.New(svc, dir, p.Config.PollInterval.Std(), p.Config.GroupsRefreshInterval.Std(), logger)
}

func registerStore(lc fx.Lifecycle, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			_ = logger.Sync()
			return nil
		},
	})
}

func registerLifecycle(lc fx.Lifecycle, srv *health.Server, lk *lock.Lock, pl *poller.Poller, b *bus.Bus, logger *zap.Logger) {
	var stopReporting func()
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			stopReporting = reportHealth(srv, b)

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("health endpoint error", zap.Error(err))
				}
			}()

			return pl.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			if err := pl.Stop(); err != nil {
				logger.Warn("error stopping poller", zap.Error(err))
			}
			if stopReporting != nil {
				stopReporting()
			}
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
