package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := &Config{
		DefaultSession: "work",
		APIURL:         "https://relay.example.com/api",
		PollInterval:   Duration(10 * time.Second),
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultSession != "work" || loaded.APIURL != cfg.APIURL {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.PollInterval.Std() != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", loaded.PollInterval.Std())
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadDurationText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "poll_interval = \"2s\"\ngroups_refresh_interval = \"-1s\"\nrequest_timeout = \"30s\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ApplyDefaults()
	if cfg.PollInterval.Std() != 2*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval.Std())
	}
	if cfg.GroupsRefreshInterval.Std() >= 0 {
		t.Errorf("negative refresh interval should be kept, got %v", cfg.GroupsRefreshInterval.Std())
	}
	if cfg.RequestTimeout.Std() != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout.Std())
	}
}

func TestResolveDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Resolve(filepath.Join(dir, "missing.toml"), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval.Std() != DefaultPollInterval {
		t.Errorf("PollInterval = %v", cfg.PollInterval.Std())
	}
	if cfg.GroupsRefreshInterval.Std() != DefaultGroupsRefreshInterval {
		t.Errorf("GroupsRefreshInterval = %v", cfg.GroupsRefreshInterval.Std())
	}
	if cfg.RequestTimeout.Std() != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout.Std())
	}
}

func TestResolveDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIURL, "")
	// godotenv does not override variables that are already set, so unset it.
	if err := os.Unsetenv(EnvAPIURL); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAPIURL+"=http://localhost:9000/api\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv(EnvAPIURL) })

	cfg, err := Resolve(filepath.Join(dir, "config.toml"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "http://localhost:9000/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIURL:       "http://env/api",
		EnvSession:      "work",
		EnvPollInterval: "750ms",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := &Config{APIURL: "http://file/api", DefaultSession: "main"}
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "http://env/api" || cfg.DefaultSession != "work" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PollInterval.Std() != 750*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval.Std())
	}

	env[EnvPollInterval] = "soon"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Error("expected error for malformed duration")
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, &Config{DefaultSession: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
