package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skst328/scope-timer/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scopetimer",
	Short: "Hierarchical scope timer demos and benchmarks",
	Long: `scopetimer exercises the scope-timer library: it runs instrumented demo
workloads, measures instrumentation overhead, and renders live summaries.`,
	SilenceUsage: true,
}

// main registers subcommands and persistent flags and runs the root command
// until it finishes or the process is interrupted.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("log-level", "", "log level (trace|debug|info|warn|error|off); overrides SCOPE_TIMER_LOG_LEVEL")
	pf.String("unit", "", "report time unit (auto|s|ms|us)")
	pf.String("precision", "", "report decimals (auto or an integer)")
	pf.String("divider", "", "separator between root scopes (rule|blank)")
	pf.Bool("verbose", false, "show min/max/avg/var per scope")

	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime execution trace to file; scopes appear as regions")

	pf.String("trace", "", "scope event trace output (file path or - for stderr)")
	pf.String("trace-mode", "ring", "scope event storage (off|stream|ring|both)")
	pf.String("trace-format", "auto", "scope event format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity for scope events")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
