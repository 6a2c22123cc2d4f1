package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skst328/scope-timer/internal/metrics"
	"github.com/skst328/scope-timer/internal/workload"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the instrumented pipeline and compute workloads and print the summary",
	Long: `demo runs pipeline{preprocess{load_data, clean_data}, postprocess{save_results}}
followed by rounds of compute{matmul, activation} on one or more workers,
then prints the scope tree. With --metrics-addr the aggregated tree is also
exported as Prometheus metrics while the demo runs.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().Int("workers", 1, "number of goroutines running the workload")
	demoCmd.Flags().Duration("step", time.Millisecond, "base sleep per workload step")
	demoCmd.Flags().Int("rounds", 2, "compute rounds per worker")
	demoCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	demoCmd.Flags().Duration("hold", 0, "keep the metrics endpoint up this long after the workload")
	demoCmd.Flags().String("save-text", "", "also write the summary as plain text to file")
	demoCmd.Flags().String("save-html", "", "also write the summary as an HTML page to file")
	demoCmd.Flags().String("save-snapshot", "", "also write the raw tree as msgpack to file")
}

type demoOptions struct {
	workers      int
	step         time.Duration
	rounds       int
	metricsAddr  string
	hold         time.Duration
	saveText     string
	saveHTML     string
	saveSnapshot string
}

func readDemoOptions(cmd *cobra.Command) (demoOptions, error) {
	var o demoOptions
	var err error
	f := cmd.Flags()
	if o.workers, err = f.GetInt("workers"); err != nil {
		return o, fmt.Errorf("failed to get workers flag: %w", err)
	}
	if o.step, err = f.GetDuration("step"); err != nil {
		return o, fmt.Errorf("failed to get step flag: %w", err)
	}
	if o.rounds, err = f.GetInt("rounds"); err != nil {
		return o, fmt.Errorf("failed to get rounds flag: %w", err)
	}
	if o.metricsAddr, err = f.GetString("metrics-addr"); err != nil {
		return o, fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	if o.hold, err = f.GetDuration("hold"); err != nil {
		return o, fmt.Errorf("failed to get hold flag: %w", err)
	}
	if o.saveText, err = f.GetString("save-text"); err != nil {
		return o, fmt.Errorf("failed to get save-text flag: %w", err)
	}
	if o.saveHTML, err = f.GetString("save-html"); err != nil {
		return o, fmt.Errorf("failed to get save-html flag: %w", err)
	}
	if o.saveSnapshot, err = f.GetString("save-snapshot"); err != nil {
		return o, fmt.Errorf("failed to get save-snapshot flag: %w", err)
	}
	if o.workers < 1 {
		return o, fmt.Errorf("--workers must be at least 1, got %d", o.workers)
	}
	if o.rounds < 0 {
		return o, fmt.Errorf("--rounds must not be negative, got %d", o.rounds)
	}
	return o, nil
}

func runDemo(cmd *cobra.Command, args []string) (err error) {
	opts, err := readDemoOptions(cmd)
	if err != nil {
		return err
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

	ctx := cmd.Context()
	var stopMetrics func() error
	if opts.metricsAddr != "" {
		srv, err := metrics.Listen(opts.metricsAddr, metrics.NewRegistry(s.timer.Collector()), s.log)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.metricsAddr, err)
		}
		metricsCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- srv.Serve(metricsCtx) }()
		stopMetrics = func() error {
			cancel()
			return <-done
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "metrics: http://%s/metrics\n", srv.Addr())
	}

	started := time.Now()
	runErr := workload.FanOut(ctx, opts.workers, func(ctx context.Context, worker int) error {
		if err := workload.Pipeline(ctx, s.timer, opts.step, nil); err != nil {
			return err
		}
		return workload.Compute(ctx, s.timer, opts.rounds, opts.step, nil)
	})
	s.log.Info().Int("workers", opts.workers).Dur("elapsed", time.Since(started)).Msg("workload finished")

	if err := s.timer.Fprint(cmd.OutOrStdout(), s.summaryOptions()...); err != nil {
		return err
	}
	if err := saveArtifacts(s, opts.saveText, opts.saveHTML, opts.saveSnapshot); err != nil {
		return err
	}

	if stopMetrics != nil {
		if runErr == nil && opts.hold > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.hold):
			}
		}
		if err := stopMetrics(); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
	}
	return runErr
}

func saveArtifacts(s *session, textPath, htmlPath, snapshotPath string) error {
	if textPath != "" {
		if err := s.timer.SaveText(textPath); err != nil {
			return err
		}
	}
	if htmlPath != "" {
		if err := s.timer.SaveHTML(htmlPath); err != nil {
			return err
		}
	}
	if snapshotPath != "" {
		if err := s.timer.SaveSnapshot(snapshotPath); err != nil {
			return err
		}
	}
	return nil
}
