package driver

import (
	"encoding/json"
	"fmt"

	"moveflow/internal/diag"
	"moveflow/internal/observ"
	"moveflow/internal/source"
)

// timingPayload is the JSON carried in the note of an ObsTimings diagnostic.
type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// attachFileTimings adds the file's phase report to bag as an info
// diagnostic. It is forced past the bag limit so a noisy file still shows
// where its time went.
func attachFileTimings(bag *diag.Bag, path string, report observ.Report) {
	data, err := json.Marshal(timingPayload{Kind: "file", Path: path, TotalMS: report.TotalMS, Phases: report.Phases})
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (file): total %.2f ms, %s", report.TotalMS, path)
	bag.Force(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).WithNote(source.Span{}, string(data)))
}
