package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"moveflow/internal/diag"
	"moveflow/internal/diagfmt"
	"moveflow/internal/driver"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [file.mir|directory]",
		Short: "Report illegal moves in MIR fixtures",
		Long:  `Parse and validate every function of a .mir fixture (or of all *.mir files within a directory), gather its moves and report illegal ones`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Bool("disk-cache", false, "reuse move data of unchanged fixtures from the disk cache")
	cmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	return cmd
}

// runCheck executes the "check" command. It exits with status 1 when any
// diagnostic is an error.
func runCheck(cmd *cobra.Command, args []string) error {
	target := targetArg(args)
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	s, err := loadSettings(cmd, target, out)
	if err != nil {
		return err
	}
	switch s.format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", s.format)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer dumpTraceOnPanic(cmd, errOut)

	opts, err := s.driverOptions()
	if err != nil {
		return err
	}
	files, baseDir, err := driver.Resolve(target)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", target, err)
	}

	var res *driver.Result
	if len(files) > 1 && s.format == "pretty" && !s.quiet && shouldUseTUI(s.ui, errOut) {
		res, err = runAnalyzeWithUI(cmd.Context(), errOut, "moveflow check", files, baseDir, opts)
	} else {
		res, err = driver.AnalyzeFiles(cmd.Context(), baseDir, files, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	bag := res.Diagnostics()
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch s.format {
	case "pretty":
		diagfmt.Pretty(out, bag, res.Files, diagfmt.PrettyOpts{
			Color:     s.color,
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
		if !s.quiet {
			printSummary(out, res, bag)
		}
	case "short":
		if output := diag.FormatShortDiagnostics(bag.Items(), res.Files, withNotes); output != "" {
			fmt.Fprintln(out, output)
		}
	case "json":
		if err := diagfmt.JSON(out, bag, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if s.timings {
		printRunTimings(errOut, res)
	}
	if res.HasErrors() {
		return errProblemsFound
	}
	return nil
}

func targetArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func printSummary(w io.Writer, res *driver.Result, bag *diag.Bag) {
	errs, warns := 0, 0
	for _, d := range bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			errs++
		case d.Severity == diag.SevWarning:
			warns++
		}
	}
	bodies := 0
	for i := range res.Results {
		bodies += len(res.Results[i].Bodies)
	}
	fmt.Fprintf(w, "checked %d files, %d functions: %d errors, %d warnings\n", len(res.Results), bodies, errs, warns)
}
