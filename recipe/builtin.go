package recipe

import (
	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/signals"
)

// tick counts used by the built-in recipes, at the 10 ns sequencer tick
const (
	serialStep   = 4
	resetWidth   = 4
	integrate    = 16
	convertWidth = 4
	parallelStep = 40
	wipeStep     = 20
	frameSync    = 10
	clampWidth   = 20
	idleStep     = 100
)

func lines(l ...string) []string { return l }

// Readout is the standard correlated double sampling row readout.
//
// The pre-roll raises the frame sync and clamps the video chain.  Each pixel
// resets the output node and integrator, integrates the pedestal, clocks the
// charge through the three serial phases onto the summing well, integrates
// the signal and converts it.  The post-roll clocks the parallel phases once
// to shift the next row into the serial register.  The dump gate is held off.
var Readout = Recipe{
	Name:        "readout",
	Description: "correlated double sampling row readout",
	HoldOff:     lines(signals.DG),
	Pre: []clocks.Step{
		clocks.For(frameSync, lines(signals.SYNC, signals.P1, signals.S1, signals.SW), nil),
		clocks.For(clampWidth, lines(signals.CLAMP), lines(signals.SYNC)),
		clocks.For(frameSync, nil, lines(signals.CLAMP)),
	},
	Pixel: []clocks.Step{
		clocks.For(resetWidth, lines(signals.RG, signals.IR), nil),
		clocks.For(resetWidth, nil, lines(signals.RG)),
		clocks.For(integrate, lines(signals.IM), lines(signals.IR)),
		clocks.For(serialStep, lines(signals.S2), lines(signals.IM)),
		clocks.For(serialStep, nil, lines(signals.S1)),
		clocks.For(serialStep, lines(signals.S3), nil),
		clocks.For(serialStep, nil, lines(signals.S2)),
		clocks.For(serialStep, lines(signals.S1), lines(signals.SW)),
		clocks.For(serialStep, nil, lines(signals.S3)),
		clocks.For(integrate, lines(signals.IP), nil),
		clocks.For(convertWidth, lines(signals.CONV, signals.SW), lines(signals.IP)),
		clocks.For(convertWidth, lines(signals.STROBE), lines(signals.CONV)),
		clocks.For(convertWidth, nil, lines(signals.STROBE)),
	},
	Post: []clocks.Step{
		clocks.For(parallelStep, lines(signals.P2), nil),
		clocks.For(parallelStep, nil, lines(signals.P1)),
		clocks.For(parallelStep, lines(signals.P3), nil),
		clocks.For(parallelStep, nil, lines(signals.P2)),
		clocks.For(parallelStep, lines(signals.P1, signals.TG), nil),
		clocks.For(parallelStep, nil, lines(signals.P3, signals.TG)),
	},
}

// Wipe flushes the array without digitizing it.  The dump gate and reset
// gate are held on so charge shifted into the serial register drains, and the
// video chain is held off.
var Wipe = Recipe{
	Name:        "wipe",
	Description: "parallel flush through the dump gate, video chain idle",
	HoldOn:      lines(signals.DG, signals.RG),
	HoldOff:     lines(signals.CONV, signals.STROBE, signals.IP, signals.IM, signals.CLAMP),
	Pre: []clocks.Step{
		clocks.For(frameSync, lines(signals.SYNC, signals.P1, signals.S1, signals.S2, signals.S3, signals.SW), nil),
		clocks.For(frameSync, nil, lines(signals.SYNC)),
	},
	Pixel: []clocks.Step{
		clocks.For(serialStep, nil, nil),
	},
	Post: []clocks.Step{
		clocks.For(wipeStep, lines(signals.P2), nil),
		clocks.For(wipeStep, nil, lines(signals.P1)),
		clocks.For(wipeStep, lines(signals.P3), nil),
		clocks.For(wipeStep, nil, lines(signals.P2)),
		clocks.For(wipeStep, lines(signals.P1, signals.TG), nil),
		clocks.For(wipeStep, nil, lines(signals.P3, signals.TG)),
	},
}

// Idle keeps the array biased with charge under P1 and S1 while nothing is read out
var Idle = Recipe{
	Name:        "idle",
	Description: "static bias, no clocking",
	Pre: []clocks.Step{
		clocks.For(idleStep, lines(signals.P1, signals.S1, signals.SW), nil),
	},
	Pixel: []clocks.Step{
		clocks.For(idleStep, nil, nil),
	},
	Post: []clocks.Step{
		clocks.For(idleStep, nil, nil),
	},
}

// Builtin returns a book holding the built-in recipes
func Builtin() *Book {
	b, err := NewBook(Readout, Wipe, Idle)
	if err != nil {
		panic(err)
	}
	return b
}
