package runner

import (
	"io"
	"time"
)

// Reporter renders a finished run.
type Reporter interface {
	Write(w io.Writer, report *Report) error
}

// FileResult is the outcome of one file's pipeline. Err is nil on success.
// Conforming is meaningful only for a successful check.
type FileResult struct {
	Path       string
	Conforming bool
	Err        error
}

// Report collects the outcome of a run in input order.
type Report struct {
	Mode      Mode
	Results   []FileResult
	Status    Status
	StartTime time.Time
	EndTime   time.Time
}

// NewReport creates an empty report for mode.
func NewReport(mode Mode) *Report {
	return &Report{Mode: mode, Status: StatusClean}
}

// AddFailure records a failed file and raises the status to StatusError.
func (r *Report) AddFailure(path string, err error) {
	r.Results = append(r.Results, FileResult{Path: path, Err: err})
	r.Status = r.Status.Raise(StatusError)
}

// AddSuccess records a successful file. In check mode a non-conforming file
// raises the status to StatusNonConforming.
func (r *Report) AddSuccess(path string, conforming bool) {
	r.Results = append(r.Results, FileResult{Path: path, Conforming: conforming})
	if r.Mode == ModeCheck && !conforming {
		r.Status = r.Status.Raise(StatusNonConforming)
	}
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// NonConforming returns the successful check results that did not conform.
func (r *Report) NonConforming() []FileResult {
	if r.Mode != ModeCheck {
		return nil
	}
	var out []FileResult
	for _, res := range r.Results {
		if res.Err == nil && !res.Conforming {
			out = append(out, res)
		}
	}
	return out
}
