package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"moveflow/internal/diag"
	"moveflow/internal/driver"
	"moveflow/internal/mir"
	"moveflow/internal/moves"
	"moveflow/internal/types"
)

func newGatherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gather [flags] [file.mir|directory]",
		Short: "Print the move data of every function",
		Long:  `Build the move path forest, moves and initializations of every function and print them as tables, JSON or msgpack snapshots`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGather,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack)")
	cmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	cmd.Flags().Bool("paths-only", false, "print only the move path forest")
	cmd.Flags().Bool("disk-cache", false, "reuse move data of unchanged fixtures from the disk cache")
	return cmd
}

func runGather(cmd *cobra.Command, args []string) (err error) {
	target := targetArg(args)
	errOut := cmd.ErrOrStderr()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	pathsOnly, err := cmd.Flags().GetBool("paths-only")
	if err != nil {
		return fmt.Errorf("failed to get paths-only flag: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, createErr := os.Create(outputPath) //nolint:gosec // user-selected output
		if createErr != nil {
			return fmt.Errorf("failed to create output: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		out = f
	} else if format == "msgpack" && isTerminal(out) {
		return errors.New("refusing to write msgpack to a terminal, use -o")
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
		return fmt.Errorf("gather failed: %w", err)
	}

	switch format {
	case "pretty":
		err = writeGatherPretty(out, res, pathsOnly, s.color)
	case "json":
		err = writeGatherJSON(out, res, pathsOnly)
	case "msgpack":
		err = writeGatherMsgpack(out, res)
	}
	if err != nil {
		return err
	}

	bag := res.Diagnostics()
	if bag.Len() > 0 && !s.quiet {
		fmt.Fprintln(errOut, diag.FormatShortDiagnostics(bag.Items(), res.Files, false))
	}
	if s.timings {
		printRunTimings(errOut, res)
	}
	if res.HasErrors() {
		return errProblemsFound
	}
	return nil
}

func bodyStatus(br *driver.BodyResult) string {
	switch {
	case br.Err != nil:
		return "failed"
	case br.Invalid:
		return "invalid"
	case br.Data == nil:
		return "skipped"
	case br.Cached:
		return "cached"
	default:
		return "ok"
	}
}

func writeGatherPretty(w io.Writer, res *driver.Result, pathsOnly, color bool) error {
	for i := range res.Results {
		fr := &res.Results[i]
		for j := range fr.Bodies {
			br := &fr.Bodies[j]
			if br.Data == nil {
				if _, err := fmt.Fprintf(w, "%s: fn %s: %s\n\n", fr.Path, br.Name, bodyStatus(br)); err != nil {
					return err
				}
				continue
			}
			title := fmt.Sprintf("%s: fn %s", fr.Path, br.Name)
			for _, t := range bodyTables(title, br, fr.Types, pathsOnly) {
				if err := t.render(w, color); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func mpLabel(mpi moves.MovePathIndex) string {
	if mpi == moves.NoMovePath {
		return "-"
	}
	return "mp" + strconv.Itoa(int(mpi))
}

func indexList[T ~int32](prefix string, idx []T) string {
	if len(idx) == 0 {
		return ""
	}
	out := ""
	for i, v := range idx {
		if i > 0 {
			out += " "
		}
		out += prefix + strconv.Itoa(int(v))
	}
	return out
}

func bodyTables(title string, br *driver.BodyResult, in *types.Interner, pathsOnly bool) []*table {
	data := br.Data
	place := func(p mir.Place) string { return mir.FormatPlace(in, br.Body, p) }

	paths := &table{title: title, headers: []string{"path", "place", "parent", "moves", "inits"}}
	for i := range data.MovePaths {
		mp := &data.MovePaths[i]
		paths.add(mpLabel(moves.MovePathIndex(i)), place(mp.Place), mpLabel(mp.Parent),
			indexList("mo", data.PathMap[i]), indexList("in", data.InitPathMap[i]))
	}
	if pathsOnly {
		return []*table{paths}
	}
	tables := []*table{paths}

	if len(data.Moves) > 0 {
		mt := &table{headers: []string{"move", "place", "at"}}
		for i, m := range data.Moves {
			mt.add("mo"+strconv.Itoa(i), place(data.MovePaths[m.Path].Place), m.Source.String())
		}
		tables = append(tables, mt)
	}
	if len(data.Inits) > 0 {
		it := &table{headers: []string{"init", "place", "at", "kind"}}
		for i, ini := range data.Inits {
			it.add("in"+strconv.Itoa(i), place(data.MovePaths[ini.Path].Place), ini.Location.String(), ini.Kind.String())
		}
		tables = append(tables, it)
	}
	if len(br.Errors) > 0 {
		et := &table{headers: []string{"error", "place", "at"}}
		for _, pe := range br.Errors {
			et.add(moves.CodeFor(pe.Err.Illegal.Kind).ID(), place(pe.Place), pe.Err.Illegal.Location.String())
		}
		tables = append(tables, et)
	}
	return tables
}

type gatherFileJSON struct {
	File   string           `json:"file"`
	Bodies []gatherBodyJSON `json:"bodies"`
}

type gatherBodyJSON struct {
	Name   string          `json:"name"`
	Status string          `json:"status"`
	Paths  []pathJSON      `json:"paths,omitempty"`
	Moves  []moveJSON      `json:"moves,omitempty"`
	Inits  []initJSON      `json:"inits,omitempty"`
	Errors []moveErrorJSON `json:"errors,omitempty"`
}

type pathJSON struct {
	Index  moves.MovePathIndex  `json:"index"`
	Place  string               `json:"place"`
	Parent moves.MovePathIndex  `json:"parent"`
	Moves  []moves.MoveOutIndex `json:"moves,omitempty"`
	Inits  []moves.InitIndex    `json:"inits,omitempty"`
}

type moveJSON struct {
	Path     moves.MovePathIndex `json:"path"`
	Location string              `json:"location"`
}

type initJSON struct {
	Path     moves.MovePathIndex `json:"path"`
	Location string              `json:"location"`
	Kind     string              `json:"kind"`
}

type moveErrorJSON struct {
	Code     string `json:"code"`
	Kind     string `json:"kind"`
	Place    string `json:"place"`
	Location string `json:"location"`
}

func buildGatherJSON(res *driver.Result, pathsOnly bool) []gatherFileJSON {
	files := make([]gatherFileJSON, 0, len(res.Results))
	for i := range res.Results {
		fr := &res.Results[i]
		fj := gatherFileJSON{File: fr.Path, Bodies: make([]gatherBodyJSON, 0, len(fr.Bodies))}
		for j := range fr.Bodies {
			br := &fr.Bodies[j]
			bj := gatherBodyJSON{Name: br.Name, Status: bodyStatus(br)}
			if data := br.Data; data != nil {
				place := func(p mir.Place) string { return mir.FormatPlace(fr.Types, br.Body, p) }
				for k := range data.MovePaths {
					mp := &data.MovePaths[k]
					bj.Paths = append(bj.Paths, pathJSON{
						Index:  moves.MovePathIndex(k),
						Place:  place(mp.Place),
						Parent: mp.Parent,
						Moves:  data.PathMap[k],
						Inits:  data.InitPathMap[k],
					})
				}
				if !pathsOnly {
					for _, m := range data.Moves {
						bj.Moves = append(bj.Moves, moveJSON{Path: m.Path, Location: m.Source.String()})
					}
					for _, ini := range data.Inits {
						bj.Inits = append(bj.Inits, initJSON{Path: ini.Path, Location: ini.Location.String(), Kind: ini.Kind.String()})
					}
					for _, pe := range br.Errors {
						bj.Errors = append(bj.Errors, moveErrorJSON{
							Code:     moves.CodeFor(pe.Err.Illegal.Kind).ID(),
							Kind:     pe.Err.Illegal.Kind.Kind.String(),
							Place:    place(pe.Place),
							Location: pe.Err.Illegal.Location.String(),
						})
					}
				}
			}
			fj.Bodies = append(fj.Bodies, bj)
		}
		files = append(files, fj)
	}
	return files
}

func writeGatherJSON(w io.Writer, res *driver.Result, pathsOnly bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildGatherJSON(res, pathsOnly))
}

// writeGatherMsgpack streams one snapshot per gathered body.
func writeGatherMsgpack(w io.Writer, res *driver.Result) error {
	for i := range res.Results {
		fr := &res.Results[i]
		for j := range fr.Bodies {
			br := &fr.Bodies[j]
			if br.Data == nil {
				continue
			}
			if err := moves.EncodeSnapshot(w, br.Name, br.Data, br.Errors); err != nil {
				return fmt.Errorf("%s: %w", br.Name, err)
			}
		}
	}
	return nil
}
