package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	scopetimer "github.com/skst328/scope-timer"
	"github.com/skst328/scope-timer/internal/version"
	"github.com/skst328/scope-timer/internal/workload"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure the overhead of scope instrumentation",
	Long: `bench runs outer{middle{inner{dot, axpy}}} over small vectors and reports
wall time statistics. --mode on records every scope, --mode off runs the same
calls with the timer disabled, and --mode native runs the loops without any
scope calls.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().String("mode", "", "instrumentation mode (on|off|native)")
	benchCmd.Flags().IntP("nruns", "n", 1, "number of repetitions")
	benchCmd.Flags().String("results", "", "append the result row to this file")
	_ = benchCmd.MarkFlagRequired("mode")
}

type benchMode string

const (
	benchOn     benchMode = "on"
	benchOff    benchMode = "off"
	benchNative benchMode = "native"
)

func readBenchMode(value string) (benchMode, error) {
	switch m := benchMode(strings.ToLower(strings.TrimSpace(value))); m {
	case benchOn, benchOff, benchNative:
		return m, nil
	default:
		return "", fmt.Errorf("invalid --mode value %q (expected on|off|native)", value)
	}
}

func runBench(cmd *cobra.Command, args []string) (err error) {
	modeValue, err := cmd.Flags().GetString("mode")
	if err != nil {
		return fmt.Errorf("failed to get mode flag: %w", err)
	}
	mode, err := readBenchMode(modeValue)
	if err != nil {
		return err
	}
	nruns, err := cmd.Flags().GetInt("nruns")
	if err != nil {
		return fmt.Errorf("failed to get nruns flag: %w", err)
	}
	if nruns < 1 {
		return fmt.Errorf("--nruns must be at least 1, got %d", nruns)
	}
	resultsPath, err := cmd.Flags().GetString("results")
	if err != nil {
		return fmt.Errorf("failed to get results flag: %w", err)
	}

	enabled := mode == benchOn
	s, err := newSession(cmd, &enabled)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var scoper workload.Scoper
	if mode != benchNative {
		scoper = s.timer
	}

	out := cmd.OutOrStdout()
	shape := workload.DefaultShape
	elapsed := make([]time.Duration, 0, nruns)
	for i := range nruns {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		t0 := time.Now()
		if _, err := workload.Nested(scoper, shape); err != nil {
			return err
		}
		d := time.Since(t0)
		fmt.Fprintf(out, "%d: elapsed=%s\n", i, d)
		elapsed = append(elapsed, d)

		if mode != benchNative {
			opts := append(s.summaryOptions(), scopetimer.WithDivider(scopetimer.DividerRule))
			if err := s.timer.Fprint(out, opts...); err != nil {
				return err
			}
		}
	}

	ver := version.Version
	if mode == benchNative {
		ver = "-"
	}
	row := benchRow(ver, string(mode), shape.Records(), computeBenchStats(elapsed, shape.Records()))

	fmt.Fprintln(out, "\nBenchmark result:")
	if err := writeBenchTable(out, row, true); err != nil {
		return err
	}
	if resultsPath != "" {
		if err := appendBenchResult(resultsPath, row); err != nil {
			return err
		}
		s.log.Info().Str("path", resultsPath).Msg("appended benchmark result")
	}
	return nil
}

// appendBenchResult appends row to path, writing the header first when the
// file is new or empty.
func appendBenchResult(path string, row []string) (err error) {
	info, statErr := os.Stat(path)
	header := statErr != nil || info.Size() == 0
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	if err := writeBenchTable(f, row, header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
