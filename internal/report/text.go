package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/runner"
)

// TextReporter writes the diagnostic listing of a run: each failing file as
// "<path>: " followed by the error and a blank line, and each non-conforming
// file as its bare path, in input order.
type TextReporter struct {
	// Verbose adds a summary line after the listing.
	Verbose   bool
	UseColour bool
	// Base, when set, shortens paths below it to relative ones.
	Base string
}

func (tr *TextReporter) colour(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if tr.UseColour {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (tr *TextReporter) Write(w io.Writer, r *runner.Report) error {
	failCol := tr.colour(color.FgRed, color.Bold)
	warnCol := tr.colour(color.FgYellow)
	greyCol := tr.colour(color.FgHiBlack)

	for _, res := range r.Results {
		path := fs.Display(tr.Base, res.Path)
		switch {
		case res.Err != nil:
			if _, err := fmt.Fprintf(w, "%s\n%v\n\n", failCol.Sprint(path+": "), res.Err); err != nil {
				return err
			}
		case r.Mode == runner.ModeCheck && !res.Conforming:
			if _, err := fmt.Fprintln(w, warnCol.Sprint(path)); err != nil {
				return err
			}
		}
	}

	if !tr.Verbose {
		return nil
	}

	failed := len(r.Failures())
	summary := fmt.Sprintf("%s %d files", pastTense(r.Mode), len(r.Results))
	if r.Mode == runner.ModeCheck {
		summary += fmt.Sprintf(", %d non-conforming", len(r.NonConforming()))
	}
	summary += fmt.Sprintf(", %d failed", failed)

	statusCol := tr.colour(color.FgGreen, color.Bold)
	switch r.Status {
	case runner.StatusError:
		statusCol = failCol
	case runner.StatusNonConforming:
		statusCol = warnCol
	}

	_, err := fmt.Fprintf(w, "%s %s\n", statusCol.Sprint(summary), greyCol.Sprintf("(%s)", r.EndTime.Sub(r.StartTime)))
	return err
}

func pastTense(m runner.Mode) string {
	if m == runner.ModeCheck {
		return "Checked"
	}
	return "Rewrote"
}
