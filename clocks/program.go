/*Package clocks compiles clock recipes for the CCD controller's FPGA sequencer.

A Program is built by appending intervals, each holding the set of lines that
are active for its duration.  Once every interval has an end time the program
is closed and can be emitted as an opcode Table of (duration, state word)
pairs, the bit-exact format the sequencer consumes.

A minimal example, a two-interval program:

	reg := signals.CCD()
	p, err := clocks.New(reg, 10e-9)
	if err != nil {
		return err
	}
	// 10 ticks with S1 high, then 5 ticks with S2 high and S1 low
	p.ChangeFor(10, reg.MustSet("S1"), 0)
	p.ChangeFor(5, reg.MustSet("S2"), reg.MustSet("S1"))
	tbl, err := p.Opcodes()

Programs for the phases of a row (pre-roll, per-pixel, post-roll) are chained
with InitFrom and stitched together with ComposeRow.
*/
package clocks

import (
	"fmt"
	"log"
	"math"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/signals"
)

// Program is the state sequence of one phase of a clock recipe.
//
// ticks[i] is the tick at which states[i] begins; when the program is closed
// there is one more tick than states and the last tick is the end of the final
// state.  Holds are overlaid when states are read and never stored in them.
type Program struct {
	name     string
	reg      *signals.Registry
	tickTime float64

	initial   signals.Set
	holdOn    signals.Set
	holdOff   signals.Set
	inherited string

	states []signals.Set
	ticks  []int
}

type config struct {
	name    string
	initial *signals.Set
	holdOn  signals.Set
	holdOff signals.Set
	from    *Program
}

// Option configures a new Program
type Option func(*config)

// Name labels the program in log messages and diagnostics, e.g. "pixel"
func Name(name string) Option {
	return func(c *config) { c.name = name }
}

// Initial sets the lines active at the start of the program
func Initial(s signals.Set) Option {
	return func(c *config) { c.initial = &s }
}

// HoldOn forces lines on in every state of the program
func HoldOn(s signals.Set) Option {
	return func(c *config) { c.holdOn |= s }
}

// HoldOff forces lines off in every state of the program
func HoldOff(s signals.Set) Option {
	return func(c *config) { c.holdOff |= s }
}

// InitFrom starts the program in the final state of prev and inherits its holds
func InitFrom(prev *Program) Option {
	return func(c *config) { c.from = prev }
}

// New creates an empty program.  tickTime is the length of one sequencer tick in seconds.
func New(reg *signals.Registry, tickTime float64, opts ...Option) (*Program, error) {
	var c config
	for _, o := range opts {
		o(&c)
	}
	if !(tickTime > 0) {
		return nil, errors.Wrapf(ErrBadTickTime, "got %g", tickTime)
	}
	p := &Program{name: c.name, reg: reg, tickTime: tickTime}
	if c.from != nil {
		if c.initial != nil {
			return nil, fmt.Errorf("program %q: Initial and InitFrom are mutually exclusive", c.name)
		}
		if p.reg == nil {
			p.reg = c.from.reg
		}
		p.initial = c.from.LastActive()
		if c.from.hasHolds() {
			if c.holdOn != 0 || c.holdOff != 0 {
				return nil, errors.Wrapf(ErrConflictingHold,
					"program %q redeclares holds inherited from %q", c.name, c.from.name)
			}
			c.holdOn, c.holdOff = c.from.holdOn, c.from.holdOff
			p.inherited = c.from.name
			if p.inherited == "" {
				p.inherited = "predecessor"
			}
		}
	} else if c.initial != nil {
		p.initial = *c.initial
	}
	if p.reg == nil {
		return nil, fmt.Errorf("program %q has no signal registry", c.name)
	}
	if err := p.setHolds(c.holdOn, c.holdOff); err != nil {
		return nil, err
	}
	return p, nil
}

// SetHolds replaces the program's holds.  They apply to every state, including
// those already recorded.  Programs which inherited their holds may not redeclare them.
func (p *Program) SetHolds(on, off signals.Set) error {
	if p.inherited != "" {
		return errors.Wrapf(ErrConflictingHold, "program %q inherited its holds from %q", p.name, p.inherited)
	}
	return p.setHolds(on, off)
}

func (p *Program) setHolds(on, off signals.Set) error {
	if both := on.Intersect(off); !both.Empty() {
		return errors.Wrapf(ErrConflictingHold, "program %q holds %s both on and off", p.name, p.reg.Format(both))
	}
	p.holdOn, p.holdOff = on, off
	return nil
}

func (p *Program) hasHolds() bool {
	return p.holdOn != 0 || p.holdOff != 0
}

// Holds returns the lines held on and held off
func (p *Program) Holds() (on, off signals.Set) {
	return p.holdOn, p.holdOff
}

// cursor is the last declared tick
func (p *Program) cursor() int {
	if len(p.ticks) == 0 {
		return 0
	}
	return p.ticks[len(p.ticks)-1]
}

// open is true when the final state has no end time yet
func (p *Program) open() bool {
	return len(p.states) > 0 && len(p.ticks) == len(p.states)
}

func (p *Program) last() signals.Set {
	if len(p.states) == 0 {
		return p.initial
	}
	return p.states[len(p.states)-1]
}

// next applies turn-off, then turn-on, to the last state
func (p *Program) next(on, off signals.Set) signals.Set {
	if both := on.Intersect(off); !both.Empty() {
		log.Printf("clocks: program %q turns %s both on and off at tick %d, leaving them on",
			p.name, p.reg.Format(both), p.cursor())
	}
	return p.last().Minus(off).Union(on)
}

// ChangeFor turns lines off then on at the last declared tick and holds the
// result for duration ticks.  If the current state has no end time yet the
// change is merged into it.  A zero duration leaves the new state open, so a
// following change at the same tick is merged rather than emitted as an empty
// interval.
func (p *Program) ChangeFor(duration int, on, off signals.Set) error {
	if duration < 0 {
		return errors.Wrapf(ErrTimeWentBackward, "program %q: negative duration %d", p.name, duration)
	}
	next := p.next(on, off)
	if p.open() {
		p.states[len(p.states)-1] = next
	} else {
		if len(p.ticks) == 0 {
			p.ticks = append(p.ticks, 0)
		}
		p.states = append(p.states, next)
	}
	if duration > 0 {
		p.ticks = append(p.ticks, p.cursor()+duration)
	}
	return nil
}

// ChangeAt turns lines off then on at an absolute, non-negative tick.  The new state stays
// open until the next change or close.  A change at the tick of the open state
// is merged into it; a change after a closed state extends that state up to tick.
func (p *Program) ChangeAt(tick int, on, off signals.Set) error {
	if tick < 0 {
		return errors.Wrapf(ErrTimeWentBackward, "program %q: change at negative tick %d", p.name, tick)
	}
	if len(p.ticks) > 0 && tick < p.cursor() {
		return errors.Wrapf(ErrTimeWentBackward, "program %q: change at tick %d after tick %d", p.name, tick, p.cursor())
	}
	next := p.next(on, off)
	switch {
	case len(p.ticks) == 0:
		p.ticks = append(p.ticks, tick)
		p.states = append(p.states, next)
	case p.open():
		if tick == p.cursor() {
			p.states[len(p.states)-1] = next
			return nil
		}
		p.ticks = append(p.ticks, tick)
		p.states = append(p.states, next)
	default:
		p.ticks[len(p.ticks)-1] = tick
		p.states = append(p.states, next)
	}
	return nil
}

// CloseAt ends the final state at an absolute tick.  If the program is already
// closed the final state is extended to tick.
func (p *Program) CloseAt(tick int) error {
	if len(p.states) == 0 {
		return errors.Wrapf(ErrIncompleteProgram, "program %q: nothing to close", p.name)
	}
	if tick < p.cursor() {
		return errors.Wrapf(ErrTimeWentBackward, "program %q: close at tick %d after tick %d", p.name, tick, p.cursor())
	}
	if p.open() {
		p.ticks = append(p.ticks, tick)
	} else {
		p.ticks[len(p.ticks)-1] = tick
	}
	return nil
}

// CloseFor ends the final state duration ticks after the last declared tick
func (p *Program) CloseFor(duration int) error {
	if duration < 0 {
		return errors.Wrapf(ErrTimeWentBackward, "program %q: negative duration %d", p.name, duration)
	}
	return p.CloseAt(p.cursor() + duration)
}

// Closed is true when every state has an end time
func (p *Program) Closed() bool {
	return len(p.states) > 0 && len(p.ticks) == len(p.states)+1
}

func (p *Program) checkClosed() error {
	if !p.Closed() {
		return errors.Wrapf(ErrIncompleteProgram, "program %q has %d states and %d ticks", p.name, len(p.states), len(p.ticks))
	}
	return nil
}

func (p *Program) overlay(s signals.Set) signals.Set {
	return s.Union(p.holdOn).Minus(p.holdOff)
}

// NetActiveAt returns state i with the holds applied
func (p *Program) NetActiveAt(i int) signals.Set {
	return p.overlay(p.states[i])
}

// NetInitial returns the initial state with the holds applied
func (p *Program) NetInitial() signals.Set {
	return p.overlay(p.initial)
}

// LastActive returns the final state with the holds applied, or the initial
// state if nothing has been recorded.  It is what a successor built with
// InitFrom starts from.
func (p *Program) LastActive() signals.Set {
	return p.overlay(p.last())
}

// Opcodes emits the program as a sequencer table
func (p *Program) Opcodes() (Table, error) {
	if err := p.checkClosed(); err != nil {
		return Table{}, err
	}
	n := len(p.states)
	tbl := Table{Durations: make([]uint16, n), States: make([]uint32, n)}
	for i := 0; i < n; i++ {
		d := p.ticks[i+1] - p.ticks[i]
		if d > math.MaxUint16 {
			return Table{}, errors.Wrapf(ErrDurationOverflow,
				"program %q interval %d at tick %d lasts %d ticks, max %d", p.name, i, p.ticks[i], d, math.MaxUint16)
		}
		tbl.Durations[i] = uint16(d)
		tbl.States[i] = p.NetActiveAt(i).Mask()
	}
	return tbl, nil
}

// Contradiction is a state in which a line held off was explicitly turned on
type Contradiction struct {
	Program string
	Index   int
	Tick    int
	Signals signals.Set
}

func (c Contradiction) String() string {
	return fmt.Sprintf("program %q state %d at tick %d turns on held-off lines", c.Program, c.Index, c.Tick)
}

// HoldContradictions lists the states in which a held-off line was turned on.
// The hold wins when emitting, so these are authoring mistakes, not errors.
func (p *Program) HoldContradictions() []Contradiction {
	var out []Contradiction
	for i, s := range p.states {
		if bad := s.Intersect(p.holdOff); !bad.Empty() {
			out = append(out, Contradiction{Program: p.name, Index: i, Tick: p.ticks[i], Signals: bad})
		}
	}
	return out
}

// Name returns the program's name
func (p *Program) Name() string { return p.name }

// Registry returns the registry the program resolves lines with
func (p *Program) Registry() *signals.Registry { return p.reg }

// TickTime is the length of one tick in seconds
func (p *Program) TickTime() float64 { return p.tickTime }

// Len is the number of recorded states
func (p *Program) Len() int { return len(p.states) }

// Ticks returns a copy of the tick offsets
func (p *Program) Ticks() []int {
	out := make([]int, len(p.ticks))
	copy(out, p.ticks)
	return out
}

// States returns a copy of the recorded states, without holds
func (p *Program) States() []signals.Set {
	out := make([]signals.Set, len(p.states))
	copy(out, p.states)
	return out
}

// Start is the first declared tick
func (p *Program) Start() int {
	if len(p.ticks) == 0 {
		return 0
	}
	return p.ticks[0]
}

// End is the last declared tick
func (p *Program) End() int {
	return p.cursor()
}

// Duration is the number of ticks from Start to End
func (p *Program) Duration() int {
	return p.End() - p.Start()
}

// Seconds is the duration of the program in seconds
func (p *Program) Seconds() float64 {
	return float64(p.Duration()) * p.tickTime
}
