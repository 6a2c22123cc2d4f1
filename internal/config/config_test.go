package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skst328/scope-timer/internal/render"
	"github.com/skst328/scope-timer/internal/report"
)

func TestParseEnabled(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"1", true, false},
		{" TRUE ", true, false},
		{"on", true, false},
		{"0", false, false},
		{"false", false, false},
		{"Off", false, false},
		{"no", false, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		got, err := ParseEnabled(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseEnabled(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestEnabledFromEnv(t *testing.T) {
	t.Setenv(EnvEnable, "0")
	if on, err := Enabled(); on || err != nil {
		t.Fatalf("Enabled() = %v, %v", on, err)
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
[report]
unit = "ms"
precision = 2
divider = "blank"
verbose = true

[log]
level = "DEBUG"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	s, err := Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Settings{
		Unit:      report.UnitMillisecond,
		Precision: 2,
		Divider:   render.DividerBlank,
		Verbose:   true,
		LogLevel:  "debug",
		Source:    path,
	}
	if s != want {
		t.Errorf("Load = %+v, want %+v", s, want)
	}
}

func TestLoadPrecisionAuto(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[report]\nprecision = \"auto\"\n")
	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Precision != report.PrecisionAuto || s.Unit != report.UnitAuto || s.Divider != render.DividerRule {
		t.Errorf("Load = %+v", s)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Source != "" && filepath.Base(s.Source) != FileName {
		t.Errorf("unexpected source %q", s.Source)
	}
}

func TestLoadFileValidation(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"[report]\nunit = \"min\"\n", "[report].unit"},
		{"[report]\ndivider = \"dots\"\n", "[report].divider"},
		{"[report]\nprecision = -3\n", "invalid precision"},
		{"[report]\nprecision = 1.5\n", "precision must be"},
		{"[report\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		path := writeConfig(t, t.TempDir(), tt.body)
		s, err := LoadFile(path)
		if err == nil {
			t.Errorf("LoadFile(%q) succeeded", tt.body)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("LoadFile(%q) error %q, want substring %q", tt.body, err, tt.want)
		}
		if s != Defaults() {
			t.Errorf("LoadFile(%q) settings = %+v, want defaults", tt.body, s)
		}
	}
}
