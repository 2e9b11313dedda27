// Package auth signs the user in and out and keeps the bearer token in the
// session's credentials store.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/bus"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/status"
	"github.com/matheus3301/tsched/internal/store"
	"github.com/matheus3301/tsched/internal/validate"
	"go.uber.org/zap"
)

// API is the part of the backend client used for authentication.
type API interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
	Register(ctx context.Context, username, email, password string) error
	SetToken(token string)
	BaseURL() string
}

// CredentialStore persists the signed-in account.
type CredentialStore interface {
	SaveCredentials(c store.Credentials) error
	LoadCredentials() (*store.Credentials, error)
	ClearCredentials() error
}

// Refresher reloads the group directory.
type Refresher interface {
	Refresh(ctx context.Context) directory.Result
}

// Manager owns the sign-in state of a session.
type Manager struct {
	api      API
	creds    CredentialStore
	messages *msgstore.Store
	dir      Refresher
	machine  *status.Machine
	bus      *bus.Bus
	logger   *zap.Logger

	mu      sync.RWMutex
	account *store.Credentials
}

// NewManager creates a manager. messages, dir, machine and b may be nil.
func NewManager(api API, creds CredentialStore, messages *msgstore.Store, dir Refresher, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *Manager {
	return &Manager{
		api:      api,
		creds:    creds,
		messages: messages,
		dir:      dir,
		machine:  machine,
		bus:      b,
		logger:   logger.Named("auth"),
	}
}

// Account returns the signed-in account, or nil.
func (m *Manager) Account() *store.Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.account == nil {
		return nil
	}
	c := *m.account
	return &c
}

// SignedIn reports whether a token is held.
func (m *Manager) SignedIn() bool {
	return m.Account() != nil
}

// Restore signs in with the stored token, if any. It returns false when the
// user has to sign in. A token issued by a different API is discarded.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	c, err := m.creds.LoadCredentials()
	if err != nil {
		m.transition(status.Error)
		return false, err
	}
	if c == nil {
		m.logger.Info("no stored credentials")
		m.transition(status.SignedOut)
		return false, nil
	}
	if c.APIURL != m.api.BaseURL() {
		m.logger.Info("stored token belongs to another api, discarding",
			zap.String("stored", c.APIURL),
			zap.String("current", m.api.BaseURL()),
		)
		if err := m.creds.ClearCredentials(); err != nil {
			return false, err
		}
		m.transition(status.SignedOut)
		return false, nil
	}

	m.logger.Info("restoring session", zap.String("user", c.Email))
	m.activate(c)
	m.transition(status.Syncing)

	if m.dir != nil {
		res := m.dir.Refresh(ctx)
		if backend.IsUnauthorized(res.Err) {
			m.logger.Warn("stored token rejected")
			return false, m.Logout(ctx)
		}
	}
	return true, nil
}

// Login validates the form, exchanges the credentials for a token, stores
// it and loads the directory.
func (m *Manager) Login(ctx context.Context, email, password string) (*store.Credentials, error) {
	if err := validate.Credentials(email, password); err != nil {
		return nil, err
	}

	if m.machine != nil && m.machine.Current() == status.Booting {
		m.transition(status.SignedOut)
	}
	m.transition(status.SigningIn)

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		m.transition(status.SignedOut)
		return nil, fmt.Errorf("login: %w", err)
	}

	c := store.Credentials{
		APIURL:   m.api.BaseURL(),
		Token:    resp.Token,
		UserID:   resp.User.ID,
		Username: resp.User.Username,
		Email:    resp.User.Email,
	}
	if c.Email == "" {
		c.Email = email
	}
	if err := m.creds.SaveCredentials(c); err != nil {
		m.transition(status.SignedOut)
		return nil, err
	}

	m.logger.Info("signed in", zap.String("user", c.Email))
	m.activate(&c)
	m.transition(status.Syncing)

	if m.dir != nil {
		m.dir.Refresh(ctx)
	}
	return m.Account(), nil
}

// Register creates an account. The user signs in afterwards.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	if err := validate.Registration(username, email, password); err != nil {
		return err
	}
	if err := m.api.Register(ctx, username, email, password); err != nil {
		m.logger.Warn("registration failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("register: %w", err)
	}
	m.logger.Info("account registered", zap.String("email", email))
	return nil
}

// Logout forgets the token and every cached message.
func (m *Manager) Logout(_ context.Context) error {
	if err := m.creds.ClearCredentials(); err != nil {
		return err
	}
	m.api.SetToken("")

	m.mu.Lock()
	m.account = nil
	m.mu.Unlock()

	if m.messages != nil {
		m.messages.Retain(nil)
	}
	m.transition(status.SignedOut)
	m.bus.Emit(bus.KindSignedOut, nil)
	m.logger.Info("signed out")
	return nil
}

func (m *Manager) activate(c *store.Credentials) {
	m.api.SetToken(c.Token)
	m.mu.Lock()
	m.account = c
	m.mu.Unlock()
	m.bus.Emit(bus.KindSignedIn, c.Username)
}

func (m *Manager) transition(to status.State) {
	if m.machine == nil {
		return
	}
	if err := m.machine.Transition(to); err != nil {
		m.logger.Warn("status transition failed", zap.Error(err))
	}
}
