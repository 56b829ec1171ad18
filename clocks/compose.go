package clocks

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
)

// PhaseFactory builds the three closed programs of a row recipe: pre-roll,
// per-pixel and post-roll (parallel transfer), in that order
type PhaseFactory func() (pre, pixel, post *Program, err error)

// Row is the opcode table of one full CCD row
type Row struct {
	// Table is pre-roll, then the pixel phase PixelsPerRow times, then the
	// post-roll RowBinning times
	Table Table `json:"table"`

	// TickTime is the length of one tick in seconds
	TickTime float64 `json:"tickTime"`

	// Seconds is the time taken to clock out the row
	Seconds float64 `json:"seconds"`

	PixelsPerRow int `json:"pixelsPerRow"`
	RowBinning   int `json:"rowBinning"`

	// PhaseEntries holds the number of table entries of each phase program
	PhaseEntries [3]int `json:"phaseEntries"`

	// Warnings holds authoring problems that did not prevent composition
	Warnings []string `json:"warnings,omitempty"`
}

// ComposeRow builds the phases with f and concatenates their tables into a row
func ComposeRow(pixelsPerRow int, f PhaseFactory, rowBinning int) (*Row, error) {
	if pixelsPerRow < 0 {
		return nil, fmt.Errorf("pixels per row must be non-negative, got %d", pixelsPerRow)
	}
	if rowBinning < 1 {
		return nil, fmt.Errorf("row binning must be at least 1, got %d", rowBinning)
	}
	pre, pix, post, err := f()
	if err != nil {
		return nil, errors.Wrap(err, "building phases")
	}
	phases := [3]*Program{pre, pix, post}
	names := [3]string{"pre", "pixel", "post"}
	var tables [3]Table
	for i, p := range phases {
		if p == nil {
			return nil, fmt.Errorf("phase factory returned no %s program", names[i])
		}
		if p.TickTime() != pre.TickTime() {
			return nil, errors.Wrapf(ErrTickTimeMismatch, "%s phase ticks at %g s, pre-roll at %g s", names[i], p.TickTime(), pre.TickTime())
		}
		tables[i], err = p.Opcodes()
		if err != nil {
			return nil, errors.Wrapf(err, "%s phase", names[i])
		}
	}

	row := &Row{
		TickTime:     pre.TickTime(),
		PixelsPerRow: pixelsPerRow,
		RowBinning:   rowBinning,
	}
	for i, p := range phases {
		row.PhaseEntries[i] = tables[i].Len()
		for _, c := range p.HoldContradictions() {
			row.warn("%s phase: %s %s", names[i], c, p.Registry().Format(c.Signals))
		}
	}
	if pix.LastActive() != pix.NetInitial() {
		row.warn("pixel phase ends in %s but starts in %s, repeats will not be identical",
			pix.Registry().Format(pix.LastActive()), pix.Registry().Format(pix.NetInitial()))
	}

	row.Table = tables[0].Append(tables[1].Repeat(pixelsPerRow)).Append(tables[2].Repeat(rowBinning))
	row.Seconds = float64(row.Table.Ticks()) * row.TickTime
	return row, nil
}

func (r *Row) warn(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	log.Println("clocks: warning:", s)
	r.Warnings = append(r.Warnings, s)
}

// Ticks is the number of ticks in the row
func (r *Row) Ticks() int {
	return r.Table.Ticks()
}

// FrameSeconds is the time to clock out rows rows
func (r *Row) FrameSeconds(rows int) float64 {
	return float64(rows) * r.Seconds
}
