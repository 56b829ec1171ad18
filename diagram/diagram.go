/*Package diagram compiles the traces of a clock program into a compact,
renderer-agnostic timing diagram.

Each selected line becomes a lane string with one cell per quantized tick:
'0' or '1' where the level changes, '.' where it holds, and '|' where a long
stretch in which no lane changes has been cut out.  The first cell of every
lane is a lead-in holding the level before the program starts.

Zero-length states, which the opcode table keeps, take no cell; the lanes
whose level they briefly change are listed as Glitches.

A shared node string labels every instant at which some lane changes, and the
Edges carry the elapsed time of each labelled instant so a renderer can
annotate relative and absolute timing without recomputing it.  The layout is
close to WaveDrom's, see WaveJSON.
*/
package diagram

import (
	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/signals"
)

const (
	high = '1'
	low  = '0'
	hold = '.'
	gap  = '|'
)

// ErrNonIntegerQuantization is generated when an edge does not land a whole
// number of quantization steps after the edge before it
var ErrNonIntegerQuantization = errors.New("transition is not a multiple of the tick divisor")

// Options selects lanes and sets up quantization
type Options struct {
	// Signals to draw.  If empty, every line whose level changes is drawn.
	Signals []signals.Signal

	// Groups are display groups drawn in full, even lines that never change
	Groups []string

	// TickDiv is the number of ticks per cell
	TickDiv int

	// CutAfter is the number of idle cells after which a stretch is cut to a
	// single gap.  Zero disables cutting.
	CutAfter int
}

// Lane is one line's compressed trace
type Lane struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Bit         int    `json:"bit"`
	Wave        string `json:"wave"`
}

// Group is a display group of lanes
type Group struct {
	Name  string `json:"name"`
	Lanes []Lane `json:"lanes"`
}

// Span is a stretch of idle cells that was cut, in quantized ticks from the
// start of the program
type Span struct {
	Start int `json:"start"`
	Len   int `json:"len"`
}

// EdgeLabel annotates one instant at which some lane changes
type EdgeLabel struct {
	Label string `json:"label"`

	// Position is the index of the cell in the compressed lanes, in runes
	Position int `json:"position"`

	// Quantum is the quantized tick, before cutting
	Quantum int `json:"quantum"`

	// Tick is the absolute program tick
	Tick int `json:"tick"`

	// SincePrev is the time since the previous labelled instant, or since the
	// start of the program for the first one, in seconds
	SincePrev float64 `json:"sincePrev"`

	// SinceStart is the time since the start of the program in seconds
	SinceStart float64 `json:"sinceStart"`
}

// Glitch is a zero-length interval in which some drawn lanes briefly take
// another level.  A cell cannot show it, so it is listed instead.
type Glitch struct {
	// Tick is the absolute program tick of the interval
	Tick int `json:"tick"`

	// Quantum is the quantized tick, before cutting
	Quantum int `json:"quantum"`

	// Lanes are the labels of the lines that glitch
	Lanes []string `json:"lanes"`
}

// Diagram is the compiled timing diagram of a program
type Diagram struct {
	Program  string      `json:"program"`
	TickTime float64     `json:"tickTime"`
	TickDiv  int         `json:"tickDiv"`
	CutAfter int         `json:"cutAfter"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Groups   []Group     `json:"groups"`
	Nodes    string      `json:"nodes"`
	Idle     []Span      `json:"idle"`
	Edges    []EdgeLabel `json:"edges"`
	Glitches []Glitch    `json:"glitches"`
}

// Lanes returns every lane in display order
func (d *Diagram) Lanes() []Lane {
	var out []Lane
	for _, g := range d.Groups {
		out = append(out, g.Lanes...)
	}
	return out
}

// Lane finds a lane by label
func (d *Diagram) Lane(label string) (Lane, bool) {
	for _, l := range d.Lanes() {
		if l.Label == label {
			return l, true
		}
	}
	return Lane{}, false
}

// Select returns the lines drawn by default: every line that changes, plus
// every member of the pinned groups, in group order
func Select(p *clocks.Program, opts Options) []signals.Signal {
	reg := p.Registry()
	var chosen []signals.Signal
	seen := map[string]bool{}
	add := func(s signals.Signal) {
		if !seen[s.Label] {
			seen[s.Label] = true
			chosen = append(chosen, s)
		}
	}
	if len(opts.Signals) > 0 {
		for _, s := range opts.Signals {
			add(s)
		}
	} else {
		for _, s := range reg.All() {
			if clocks.Changes(p, s) {
				add(s)
			}
		}
	}
	for _, g := range opts.Groups {
		for _, s := range reg.InGroup(g) {
			add(s)
		}
	}
	return signals.GroupOrder(chosen)
}

// Compile builds the diagram of a closed program
func Compile(p *clocks.Program, opts Options) (*Diagram, error) {
	if opts.TickDiv < 1 {
		return nil, errors.Wrapf(ErrNonIntegerQuantization, "tick divisor must be at least 1, got %d", opts.TickDiv)
	}
	if opts.CutAfter < 0 {
		return nil, errors.Errorf("cut threshold must be non-negative, got %d", opts.CutAfter)
	}
	if !p.Closed() {
		return nil, errors.Wrapf(clocks.ErrIncompleteProgram, "program %q", p.Name())
	}
	sigs := Select(p, opts)
	start, end := p.Start(), p.End()
	if (end-start)%opts.TickDiv != 0 {
		return nil, errors.Wrapf(ErrNonIntegerQuantization, "program %q lasts %d ticks, tick divisor %d", p.Name(), end-start, opts.TickDiv)
	}

	// pass 1: sample every lane once per cell and find the instants where any lane changes
	cells := (end-start)/opts.TickDiv + 1
	raw := make([][]byte, len(sigs))
	traces := make([][]clocks.Edge, len(sigs))
	changed := make([]bool, cells)
	for i, s := range sigs {
		edges, err := clocks.SignalTrace(p, s, true)
		if err != nil {
			return nil, err
		}
		traces[i] = edges
		if err := checkQuantized(s, edges, start, opts.TickDiv); err != nil {
			return nil, err
		}
		raw[i] = quantize(edges, start, opts.TickDiv, cells)
		for k := 1; k < cells; k++ {
			if raw[i][k] != hold {
				changed[k] = true
			}
		}
	}
	idle := idleSpans(changed, opts.CutAfter)

	// pass 2: run length encode, cutting the idle spans out of every lane
	d := &Diagram{
		Program:  p.Name(),
		TickTime: p.TickTime(),
		TickDiv:  opts.TickDiv,
		CutAfter: opts.CutAfter,
		Start:    start,
		End:      end,
		Idle:     idle,
		Glitches: glitches(p, sigs, traces, opts.TickDiv),
	}
	keep := cutMap(cells, idle)
	var (
		nodes    []rune
		prevTick = start
	)
	for k := 0; k < cells; k++ {
		switch {
		case keep[k] == cutOut:
			continue
		case keep[k] == cutGap:
			nodes = append(nodes, hold)
		case k > 0 && changed[k]:
			tick := start + (k-1)*opts.TickDiv
			lbl := Label(len(d.Edges))
			d.Edges = append(d.Edges, EdgeLabel{
				Label:      string(lbl),
				Position:   len(nodes),
				Quantum:    k - 1,
				Tick:       tick,
				SincePrev:  float64(tick-prevTick) * p.TickTime(),
				SinceStart: float64(tick-start) * p.TickTime(),
			})
			nodes = append(nodes, lbl)
			prevTick = tick
		default:
			nodes = append(nodes, hold)
		}
	}
	d.Nodes = string(nodes)

	lanes := make([]Lane, len(sigs))
	for i, s := range sigs {
		lanes[i] = Lane{Label: s.Label, Description: s.Description, Bit: s.Bit, Wave: compress(raw[i], keep)}
	}
	d.Groups = group(sigs, lanes)
	return d, nil
}

// glitches finds the zero-length states in which a lane's level differs from
// the level drawn at that tick
func glitches(p *clocks.Program, sigs []signals.Signal, traces [][]clocks.Edge, div int) []Glitch {
	out := []Glitch{}
	ticks := p.Ticks()
	for i := 0; i < p.Len(); i++ {
		if ticks[i] != ticks[i+1] {
			continue
		}
		net := p.NetActiveAt(i)
		var lanes []string
		for j, s := range sigs {
			if net.Has(s) != clocks.LevelAt(traces[j], ticks[i]) {
				lanes = append(lanes, s.Label)
			}
		}
		if len(lanes) > 0 {
			out = append(out, Glitch{Tick: ticks[i], Quantum: (ticks[i] - p.Start()) / div, Lanes: lanes})
		}
	}
	return out
}

// checkQuantized verifies every real edge lands a whole number of cells
// after the previous one
func checkQuantized(s signals.Signal, edges []clocks.Edge, start, div int) error {
	prev := start
	for _, e := range edges {
		if e.Tick == clocks.InitialTick {
			continue
		}
		if (e.Tick-prev)%div != 0 {
			return errors.Wrapf(ErrNonIntegerQuantization,
				"%s edge at tick %d is %d ticks after tick %d, tick divisor %d", s.Label, e.Tick, e.Tick-prev, prev, div)
		}
		prev = e.Tick
	}
	return nil
}

// quantize samples a trace into cells: the lead-in, then one per TickDiv ticks.
// A cell holds the new level where it differs from the previous cell, else hold.
func quantize(edges []clocks.Edge, start, div, cells int) []byte {
	out := make([]byte, cells)
	prev := clocks.LevelAt(edges, clocks.InitialTick)
	out[0] = levelChar(prev)
	for k := 1; k < cells; k++ {
		lvl := clocks.LevelAt(edges, start+(k-1)*div)
		if lvl != prev {
			out[k] = levelChar(lvl)
		} else {
			out[k] = hold
		}
		prev = lvl
	}
	return out
}

func levelChar(b bool) byte {
	if b {
		return high
	}
	return low
}

// idleSpans finds the runs of cells in which nothing changes that are at
// least cutAfter long.  The lead-in cell is never idle.
func idleSpans(changed []bool, cutAfter int) []Span {
	spans := []Span{}
	if cutAfter == 0 {
		return spans
	}
	k := 1
	for k < len(changed) {
		// next idle cell
		for k < len(changed) && changed[k] {
			k++
		}
		begin := k
		// next change
		for k < len(changed) && !changed[k] {
			k++
		}
		if n := k - begin; n > 0 && n >= cutAfter {
			spans = append(spans, Span{Start: begin - 1, Len: n})
		}
	}
	return spans
}

const (
	cutKeep = iota
	cutGap
	cutOut
)

// cutMap marks the first cell of each idle span as the gap and the rest as cut
func cutMap(cells int, idle []Span) []int {
	keep := make([]int, cells)
	for _, s := range idle {
		first := s.Start + 1
		keep[first] = cutGap
		for k := first + 1; k < first+s.Len; k++ {
			keep[k] = cutOut
		}
	}
	return keep
}

func compress(raw []byte, keep []int) string {
	out := make([]byte, 0, len(raw))
	for k, c := range raw {
		switch keep[k] {
		case cutOut:
		case cutGap:
			out = append(out, gap)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// group splits lanes, already in group order, by display group
func group(sigs []signals.Signal, lanes []Lane) []Group {
	groups := []Group{}
	for i, s := range sigs {
		name := s.DisplayGroup()
		if n := len(groups); n == 0 || groups[n-1].Name != name {
			groups = append(groups, Group{Name: name})
		}
		g := &groups[len(groups)-1]
		g.Lanes = append(g.Lanes, lanes[i])
	}
	return groups
}
