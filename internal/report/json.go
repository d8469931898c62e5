// Package report renders the outcome of a kvikk-fix run.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/andyballingall/kvikk-fix/internal/runner"
)

// JSONReporter writes a machine-readable summary of a run.
type JSONReporter struct{}

type jsonFile struct {
	Path       string `json:"path"`
	Conforming *bool  `json:"conforming,omitempty"`
	Error      string `json:"error,omitempty"`
}

type jsonOutput struct {
	Mode      string `json:"mode"`
	Status    string `json:"status"`
	ExitCode  int    `json:"exitCode"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Stats     struct {
		Total         int `json:"total"`
		Failed        int `json:"failed"`
		NonConforming int `json:"nonConforming"`
	} `json:"stats"`
	Files []jsonFile `json:"files"`
}

func (jr *JSONReporter) Write(w io.Writer, r *runner.Report) error {
	out := jsonOutput{
		Mode:      r.Mode.String(),
		Status:    r.Status.String(),
		ExitCode:  r.Status.ExitCode(),
		StartTime: r.StartTime.Format(time.RFC3339),
		EndTime:   r.EndTime.Format(time.RFC3339),
		Duration:  r.EndTime.Sub(r.StartTime).String(),
		Files:     make([]jsonFile, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		f := jsonFile{Path: res.Path}
		if res.Err != nil {
			f.Error = res.Err.Error()
		} else if r.Mode == runner.ModeCheck {
			conforming := res.Conforming
			f.Conforming = &conforming
		}
		out.Files = append(out.Files, f)
	}
	out.Stats.Total = len(r.Results)
	out.Stats.Failed = len(r.Failures())
	out.Stats.NonConforming = len(r.NonConforming())

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
