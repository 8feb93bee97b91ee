package main

import (
	"io"
	"path/filepath"

	"moveflow/internal/driver"
	"moveflow/internal/observ"
)

// printRunTimings prints the run phases followed by each file's phases.
func printRunTimings(out io.Writer, res *driver.Result) {
	if out == nil || res == nil || res.Timing == nil {
		return
	}
	report := observ.Report{TotalMS: res.Timing.TotalMS}
	report.Merge("", *res.Timing)
	for i := range res.Results {
		fr := &res.Results[i]
		if fr.Timing == nil {
			continue
		}
		report.Merge(filepath.Base(fr.Path)+": ", *fr.Timing)
	}

	report.WriteText(out, 32)
}
