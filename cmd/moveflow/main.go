package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"moveflow/internal/version"
)

// exitError carries a process exit code. The command already reported the
// reason, so main prints nothing for it.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// errProblemsFound makes check and gather exit with status 1.
var errProblemsFound = exitError{code: 1}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "moveflow",
		Short:         "Move and initialization tracking for MIR fixtures",
		Long:          `moveflow builds move paths, moves and initializations for every function of a .mir fixture and reports illegal moves`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	pf.Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	pf.String("config", "", "path to moveflow.toml (default: search upwards from the input)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGatherCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}
	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, "moveflow:", err)
	os.Exit(2)
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
