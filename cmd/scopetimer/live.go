package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skst328/scope-timer/internal/ui"
	"github.com/skst328/scope-timer/internal/workload"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run the demo workload while a live view refreshes its summary",
	Args:  cobra.NoArgs,
	RunE:  runLive,
}

func init() {
	liveCmd.Flags().String("ui", "auto", "live view (auto|on|off)")
	liveCmd.Flags().Duration("step", 20*time.Millisecond, "base sleep per workload step")
	liveCmd.Flags().Int("rounds", 5, "compute rounds")
	liveCmd.Flags().Duration("refresh", 250*time.Millisecond, "summary refresh interval")
}

type liveOutcome struct {
	err error
}

func runLive(cmd *cobra.Command, args []string) (err error) {
	f := cmd.Flags()
	uiValue, err := f.GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	step, err := f.GetDuration("step")
	if err != nil {
		return fmt.Errorf("failed to get step flag: %w", err)
	}
	rounds, err := f.GetInt("rounds")
	if err != nil {
		return fmt.Errorf("failed to get rounds flag: %w", err)
	}
	refresh, err := f.GetDuration("refresh")
	if err != nil {
		return fmt.Errorf("failed to get refresh flag: %w", err)
	}

	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if !shouldUseTUI(mode) {
		if err := runLiveWorkload(cmd.Context(), s, step, rounds, nil); err != nil {
			return err
		}
		return s.timer.Fprint(cmd.OutOrStdout(), s.summaryOptions()...)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events := make(chan ui.Event, 64)
	outcomeCh := make(chan liveOutcome, 1)
	go func() {
		err := runLiveWorkload(ctx, s, step, rounds, func(stage string, done, total int) {
			select {
			case events <- ui.Event{Stage: stage, Done: done, Total: total}:
			case <-ctx.Done():
			}
		})
		outcomeCh <- liveOutcome{err: err}
		close(events)
	}()

	summary := func(width int) string {
		var buf bytes.Buffer
		if err := s.timer.Fprint(&buf, s.summaryOptions()...); err != nil {
			return err.Error()
		}
		return buf.String()
	}

	program := tea.NewProgram(ui.NewLiveModel("scopetimer live", events, summary, refresh), tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	final, uiErr := program.Run()
	// the view is gone; unblock a workload still sending progress
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return uiErr
	}
	if ui.Interrupted(final) {
		return s.timer.Fprint(cmd.OutOrStdout(), s.summaryOptions()...)
	}
	return outcome.err
}

func runLiveWorkload(ctx context.Context, s *session, step time.Duration, rounds int, progress workload.ProgressFunc) error {
	total := 3 + rounds*10
	offset := func(base int) workload.ProgressFunc {
		if progress == nil {
			return nil
		}
		return func(stage string, done, _ int) { progress(stage, base+done, total) }
	}
	if err := workload.Pipeline(ctx, s.timer, step, offset(0)); err != nil {
		return err
	}
	return workload.Compute(ctx, s.timer, rounds, step, offset(3))
}
