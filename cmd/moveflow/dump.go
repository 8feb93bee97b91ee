package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moveflow/internal/diag"
	"moveflow/internal/driver"
	"moveflow/internal/mir"
	"moveflow/internal/moves"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [flags] [file.mir|directory]",
		Short: "Print parsed MIR in canonical form",
		Long:  `Parse .mir fixtures and print them back in canonical form, optionally followed by the move data of each function`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDump,
	}
	cmd.Flags().Bool("skip-types", false, "omit nominal type declarations")
	cmd.Flags().Bool("moves", false, "append move paths, moves and inits of each function")
	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	target := targetArg(args)
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	skipTypes, err := cmd.Flags().GetBool("skip-types")
	if err != nil {
		return fmt.Errorf("failed to get skip-types flag: %w", err)
	}
	withMoves, err := cmd.Flags().GetBool("moves")
	if err != nil {
		return fmt.Errorf("failed to get moves flag: %w", err)
	}

	s, err := loadSettings(cmd, target, out)
	if err != nil {
		return err
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
	res, err := driver.Analyze(cmd.Context(), target, opts)
	if err != nil {
		return fmt.Errorf("dump failed: %w", err)
	}

	multi := len(res.Results) > 1
	for i := range res.Results {
		fr := &res.Results[i]
		if !fr.Loaded || fr.Module == nil {
			continue
		}
		if multi {
			fmt.Fprintf(out, "// %s\n", fr.Path)
		}
		if err := mir.DumpModule(out, fr.Module, fr.Types, mir.DumpOptions{SkipTypes: skipTypes}); err != nil {
			return fmt.Errorf("%s: %w", fr.Path, err)
		}
		if !withMoves {
			continue
		}
		for j := range fr.Bodies {
			br := &fr.Bodies[j]
			if br.Data == nil {
				continue
			}
			fmt.Fprintf(out, "\n// moves of %s\n", br.Name)
			if err := moves.Dump(out, br.Body, fr.Types, br.Data, br.Errors); err != nil {
				return fmt.Errorf("%s: %w", br.Name, err)
			}
		}
	}

	// dump печатает то, что удалось разобрать; ошибки перемещений остаются за check
	blocking := blockingDumpDiagnostics(res.Diagnostics().Items())
	if len(blocking) > 0 {
		fmt.Fprintln(errOut, diag.FormatShortDiagnostics(blocking, res.Files, false))
		return errProblemsFound
	}
	return nil
}

func blockingDumpDiagnostics(items []*diag.Diagnostic) []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for _, d := range items {
		if d.Severity >= diag.SevError && !d.Code.IsMove() {
			out = append(out, d)
		}
	}
	return out
}
