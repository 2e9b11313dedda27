package session

import (
	"strings"
	"testing"

	"github.com/matheus3301/tsched/internal/config"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "main", false},
		{"digits", "work123", false},
		{"hyphen", "my-session", false},
		{"underscore", "my_session", false},
		{"max length", strings.Repeat("a", 64), false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my session", true},
		{"dot", "..", true},
		{"too long", strings.Repeat("a", 65), true},
		{"slash", "my/session", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("TSCHED_HOME", t.TempDir())
	t.Setenv(config.EnvSession, "")

	got, err := Resolve("")
	if err != nil || got != DefaultSessionName {
		t.Errorf("Resolve() = %q, %v, want main", got, err)
	}

	if err := config.Save(ConfigPath(), &config.Config{DefaultSession: "fromfile"}); err != nil {
		t.Fatal(err)
	}
	if got, _ := Resolve(""); got != "fromfile" {
		t.Errorf("Resolve() = %q, want fromfile", got)
	}

	t.Setenv(config.EnvSession, "fromenv")
	if got, _ := Resolve(""); got != "fromenv" {
		t.Errorf("Resolve() = %q, want fromenv", got)
	}

	if got, _ := Resolve("fromflag"); got != "fromflag" {
		t.Errorf("Resolve(fromflag) = %q", got)
	}
}

func TestResolveRejectsBadName(t *testing.T) {
	if _, err := Resolve("../etc"); err == nil {
		t.Error("expected error for path-like session name")
	}
}
