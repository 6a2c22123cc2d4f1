package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	scopetimer "github.com/skst328/scope-timer"
	"github.com/skst328/scope-timer/internal/config"
	"github.com/skst328/scope-timer/internal/logger"
	"github.com/skst328/scope-timer/internal/prof"
	"github.com/skst328/scope-timer/internal/render"
	"github.com/skst328/scope-timer/internal/report"
	"github.com/skst328/scope-timer/internal/trace"
)

// session bundles what every subcommand needs: a timer built from the
// config file, environment and flags, plus the profilers and tracer that
// must be stopped on exit.
type session struct {
	timer  *scopetimer.Timer
	log    *log.Logger
	color  bool
	tracer trace.Tracer
	prof   *prof.Session
}

// newSession builds the session for cmd. enabled overrides the environment
// switch when non-nil. The caller must defer close.
func newSession(cmd *cobra.Command, enabled *bool) (*session, error) {
	root := cmd.Root().PersistentFlags()

	settings, cfgErr := config.Load(".")

	level, err := root.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if level == "" {
		level = settings.LogLevel
		if env, ok := os.LookupEnv(config.EnvLogLevel); ok {
			level = env
		}
	}

	colorValue, err := root.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(colorValue)
	if err != nil {
		return nil, err
	}

	s := &session{color: shouldColor(mode)}
	s.log = logger.New(logger.Options{
		Level:  level,
		Color:  s.color && isTerminal(os.Stderr),
		Module: "cli",
	})
	if cfgErr != nil {
		s.log.Warn().Err(cfgErr).Msg("ignoring scopetimer config")
	} else if settings.Source != "" {
		s.log.Debug().Str("path", settings.Source).Msg("loaded scopetimer config")
	}

	reportOpts, err := reportOptionsFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	on := true
	if enabled != nil {
		on = *enabled
	} else if envOn, err := config.Enabled(); err != nil {
		s.log.Warn().Err(err).Msg("timer stays enabled")
	} else {
		on = envOn
	}

	if s.tracer, err = setupTracing(cmd); err != nil {
		return nil, err
	}
	if s.prof, err = setupProfiling(cmd); err != nil {
		_ = s.tracer.Close()
		return nil, err
	}

	s.timer = scopetimer.New(
		scopetimer.WithEnabled(on),
		scopetimer.WithSettings(settings),
		scopetimer.WithDefaults(reportOpts...),
		scopetimer.WithLogger(s.log),
		scopetimer.WithTracer(s.tracer),
	)
	return s, nil
}

// close stops profilers and flushes the tracer. It is safe to call more
// than once.
func (s *session) close() error {
	if s == nil {
		return nil
	}
	profErr := s.prof.Stop()
	var traceErr error
	if s.tracer != nil {
		traceErr = s.tracer.Close()
		s.tracer = nil
	}
	return errors.Join(profErr, traceErr)
}

func (s *session) summaryOptions() []scopetimer.Option {
	return []scopetimer.Option{scopetimer.WithColor(s.color)}
}

// reportOptionsFromFlags turns explicitly set report flags into options.
// Unset flags leave the config file values in place.
func reportOptionsFromFlags(cmd *cobra.Command) ([]scopetimer.Option, error) {
	root := cmd.Root().PersistentFlags()
	var opts []scopetimer.Option

	if v, _ := root.GetString("unit"); v != "" {
		u, err := report.ParseUnit(v)
		if err != nil {
			return nil, fmt.Errorf("--unit: %w", err)
		}
		opts = append(opts, scopetimer.WithUnit(u))
	}
	if v, _ := root.GetString("precision"); v != "" {
		p, err := report.ParsePrecision(v)
		if err != nil {
			return nil, fmt.Errorf("--precision: %w", err)
		}
		opts = append(opts, scopetimer.WithPrecision(p))
	}
	if v, _ := root.GetString("divider"); v != "" {
		d, err := render.ParseDivider(v)
		if err != nil {
			return nil, fmt.Errorf("--divider: %w", err)
		}
		opts = append(opts, scopetimer.WithDivider(d))
	}
	if root.Changed("verbose") {
		v, _ := root.GetBool("verbose")
		opts = append(opts, scopetimer.WithVerbose(v))
	}
	return opts, nil
}

// setupProfiling starts the profilers requested by the persistent flags.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	root := cmd.Root().PersistentFlags()
	var p prof.Paths
	var err error
	if p.CPU, err = root.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if p.Mem, err = root.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if p.Trace, err = root.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	return prof.Start(p)
}

// setupTracing builds the scope event tracer from the persistent flags.
// Without --trace, events only go to the ring buffer used for mismatch
// diagnostics.
func setupTracing(cmd *cobra.Command) (trace.Tracer, error) {
	root := cmd.Root().PersistentFlags()

	output, err := root.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	modeStr, err := root.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	if output != "" && mode == trace.ModeRing {
		mode = trace.ModeBoth
	}
	if output == "" && (mode == trace.ModeStream || mode == trace.ModeBoth) {
		return nil, fmt.Errorf("--trace-mode=%s needs --trace", mode)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tr, err := trace.New(trace.Config{
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	return tr, nil
}
