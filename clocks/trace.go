package clocks

import (
	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/signals"
)

// InitialTick is the tick of the synthetic edge carrying a line's level
// before the program starts
const InitialTick = -1

// Edge is the level of a line from Tick onward
type Edge struct {
	Tick  int  `json:"tick"`
	Level bool `json:"level"`
}

// SignalTrace reconstructs the edges of one line over a closed program, holds
// applied.
//
// With includeInitial the trace opens with an edge at InitialTick holding the
// level before the program, and the first state only emits an edge if it
// differs.  Without it the first state always emits an edge.  After that an
// edge is emitted whenever the level changes, and the trace ends with an edge
// repeating the final level at the program's last tick.
func SignalTrace(p *Program, sig signals.Signal, includeInitial bool) ([]Edge, error) {
	if err := p.checkClosed(); err != nil {
		return nil, err
	}
	if !includeInitial {
		referenced := false
		for i := range p.states {
			if p.NetActiveAt(i).Has(sig) {
				referenced = true
				break
			}
		}
		if !referenced {
			return nil, errors.Wrapf(ErrSignalNeverReferenced, "%s in program %q", sig.Label, p.name)
		}
	}

	var (
		edges []Edge
		prev  bool
	)
	if includeInitial {
		prev = p.NetInitial().Has(sig)
		edges = append(edges, Edge{Tick: InitialTick, Level: prev})
	}
	for i := range p.states {
		lvl := p.NetActiveAt(i).Has(sig)
		if (i == 0 && !includeInitial) || lvl != prev {
			edges = append(edges, Edge{Tick: p.ticks[i], Level: lvl})
		}
		prev = lvl
	}
	edges = append(edges, Edge{Tick: p.End(), Level: prev})
	return edges, nil
}

// Traces reconstructs the edges of several lines, initial level included,
// keyed by label
func Traces(p *Program, sigs []signals.Signal) (map[string][]Edge, error) {
	out := make(map[string][]Edge, len(sigs))
	for _, s := range sigs {
		e, err := SignalTrace(p, s, true)
		if err != nil {
			return nil, err
		}
		out[s.Label] = e
	}
	return out, nil
}

// LevelAt returns the level of a trace at tick
func LevelAt(edges []Edge, tick int) bool {
	var lvl bool
	for _, e := range edges {
		if e.Tick > tick {
			break
		}
		lvl = e.Level
	}
	return lvl
}

// Changes returns true if the line's level ever differs from its initial level
func Changes(p *Program, sig signals.Signal) bool {
	init := p.NetInitial().Has(sig)
	for i := range p.states {
		if p.NetActiveAt(i).Has(sig) != init {
			return true
		}
	}
	return false
}
