package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.tsched, or $TSCHED_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("TSCHED_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tsched")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// SocketPath returns the health socket of a running session.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "tsched.sock")
}

// LockPath returns the lock file path for a session.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DBPath returns the credentials database of a session.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "tsched.db")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path shared by tsched and tschedctl.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "tsched.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with owner-only permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
