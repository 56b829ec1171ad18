/*Package signals catalogs the digital control lines driven by the FPGA clock
sequencer.

Each line is bound to a single bit of the 32-bit state word the sequencer
latches every interval.  On the CCD controller only bits 15 through 31 are
wired, giving 17 usable lines; the low bits are reserved.

A Registry is built once at startup and shared read-only by every clock
program that references it.  Sets of lines are plain bitmasks, so they are
immutable values and can be copied freely.
*/
package signals

import (
	"sort"
	"strings"

	"github.com/nasa-jpl/ccdclock/util"
)

const (
	// MinBit is the lowest bit wired to a clock line on the sequencer
	MinBit = 15

	// MaxBit is the highest bit wired to a clock line on the sequencer
	MaxBit = 31

	// Ungrouped is the display group reported for signals with no group
	Ungrouped = "ungrouped"
)

// Signal is a named, bit-addressed control line
type Signal struct {
	// Bit is the position of the line in the state word
	Bit int `json:"bit" yaml:"bit"`

	// Label is the short name of the line and its unique key, e.g. "P1"
	Label string `json:"label" yaml:"label"`

	// Description is the long description, e.g. "parallel clock phase 1"
	Description string `json:"description" yaml:"description"`

	// Group is the display group used to lay out timing diagrams
	Group string `json:"group" yaml:"group"`

	// Order is the position of the line within its group
	Order int `json:"order" yaml:"order"`
}

// Mask returns the state word with only this signal's bit set
func (s Signal) Mask() uint32 {
	return util.SetBit(0, uint(s.Bit), true)
}

// DisplayGroup returns the group, or Ungrouped if there is none
func (s Signal) DisplayGroup() string {
	if s.Group == "" {
		return Ungrouped
	}
	return s.Group
}

func (s Signal) String() string {
	return s.Label
}

// Mask ORs together the masks of each signal.  No signals yields zero.
func Mask(sigs ...Signal) uint32 {
	var m uint32
	for _, s := range sigs {
		m |= s.Mask()
	}
	return m
}

// Set is a set of signals, stored as the OR of their masks
type Set uint32

// SetOf builds a set from signals
func SetOf(sigs ...Signal) Set {
	return Set(Mask(sigs...))
}

// Has returns true if the signal is a member of the set
func (s Set) Has(sig Signal) bool {
	return util.GetBit(uint32(s), uint(sig.Bit))
}

// Union returns s ∪ o
func (s Set) Union(o Set) Set { return s | o }

// Minus returns s \ o
func (s Set) Minus(o Set) Set { return s &^ o }

// Intersect returns s ∩ o
func (s Set) Intersect(o Set) Set { return s & o }

// Empty is true when no signal is a member
func (s Set) Empty() bool { return s == 0 }

// Mask returns the state word for the set
func (s Set) Mask() uint32 { return uint32(s) }

// GroupOrder sorts signals by (group, order within the group, label).
// The input is not modified.
func GroupOrder(sigs []Signal) []Signal {
	out := make([]Signal, len(sigs))
	copy(out, sigs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ga, gb := a.DisplayGroup(), b.DisplayGroup(); ga != gb {
			return ga < gb
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return strings.Compare(a.Label, b.Label) < 0
	})
	return out
}
