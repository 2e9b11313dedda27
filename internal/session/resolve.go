package session

import (
	"fmt"
	"os"
	"regexp"

	"github.com/matheus3301/tsched/internal/config"
)

const DefaultSessionName = "main"

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// Resolve determines the active session name using precedence:
// 1. flagOverride (--session flag)
// 2. $TSCHED_SESSION
// 3. config.toml default_session
// 4. "main"
//
// The chosen name is validated because it becomes a directory name.
func Resolve(flagOverride string) (string, error) {
	name := DefaultSessionName
	switch {
	case flagOverride != "":
		name = flagOverride
	case os.Getenv(config.EnvSession) != "":
		name = os.Getenv(config.EnvSession)
	default:
		if cfg, err := config.Load(ConfigPath()); err == nil && cfg.DefaultSession != "" {
			name = cfg.DefaultSession
		}
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateName checks that name is usable as a session directory.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid session name %q: use 1-64 of a-z, 0-9, '_' or '-'", name)
	}
	return nil
}
