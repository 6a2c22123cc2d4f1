// Package config resolves process-level settings: the enable switch from the
// environment and report defaults from an optional scopetimer.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/skst328/scope-timer/internal/render"
	"github.com/skst328/scope-timer/internal/report"
)

const (
	EnvEnable   = "SCOPE_TIMER_ENABLE"
	EnvLogLevel = "SCOPE_TIMER_LOG_LEVEL"
	FileName    = "scopetimer.toml"
)

// ParseEnabled interprets a SCOPE_TIMER_ENABLE value. An empty value means
// enabled. Unknown values are reported as an error together with the
// default (enabled).
func ParseEnabled(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	default:
		return true, fmt.Errorf("invalid %s value %q (expected: 1|0|true|false|on|off|yes|no)", EnvEnable, v)
	}
}

// Enabled reads SCOPE_TIMER_ENABLE from the process environment.
func Enabled() (bool, error) {
	return ParseEnabled(os.Getenv(EnvEnable))
}

// Precision is a report precision that decodes from either "auto" or a
// non-negative integer.
type Precision int

func (p *Precision) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		n, err := report.ParsePrecision(x)
		if err != nil {
			return err
		}
		*p = Precision(n)
		return nil
	case int64:
		n, err := report.ParsePrecision(strconv.FormatInt(x, 10))
		if err != nil {
			return err
		}
		*p = Precision(n)
		return nil
	default:
		return fmt.Errorf("precision must be \"auto\" or an integer, got %T", v)
	}
}

// File mirrors scopetimer.toml. Report.Precision must be preset to
// report.PrecisionAuto before decoding, since an absent key leaves it alone.
type File struct {
	Report ReportSection `toml:"report"`
	Log    LogSection    `toml:"log"`
}

type ReportSection struct {
	Unit      string    `toml:"unit"`
	Precision Precision `toml:"precision"`
	Divider   string    `toml:"divider"`
	Verbose   bool      `toml:"verbose"`
}

type LogSection struct {
	Level string `toml:"level"`
}

// Settings are the validated defaults a Timer starts from.
type Settings struct {
	Unit      report.Unit
	Precision int
	Divider   render.Divider
	Verbose   bool
	LogLevel  string
	// Source is the file the settings came from, empty for built-ins.
	Source string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Unit:      report.UnitAuto,
		Precision: report.PrecisionAuto,
		Divider:   render.DividerRule,
		LogLevel:  "warn",
	}
}

// Find walks from startDir up to the filesystem root looking for
// scopetimer.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes scopetimer.toml starting at startDir. Without a
// file it returns Defaults and no error.
func Load(startDir string) (Settings, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Defaults(), err
	}
	return LoadFile(path)
}

// LoadFile decodes and validates one config file.
func LoadFile(path string) (Settings, error) {
	f := File{Report: ReportSection{Precision: report.PrecisionAuto}}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Defaults(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	s, err := f.Settings()
	if err != nil {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// Settings validates f and merges it over Defaults.
func (f File) Settings() (Settings, error) {
	s := Defaults()
	unit, err := report.ParseUnit(f.Report.Unit)
	if err != nil {
		return s, fmt.Errorf("[report].unit: %w", err)
	}
	s.Unit = unit
	s.Precision = int(f.Report.Precision)
	div, err := render.ParseDivider(f.Report.Divider)
	if err != nil {
		return s, fmt.Errorf("[report].divider: %w", err)
	}
	s.Divider = div
	s.Verbose = f.Report.Verbose
	if lvl := strings.TrimSpace(f.Log.Level); lvl != "" {
		s.LogLevel = strings.ToLower(lvl)
	}
	return s, nil
}
