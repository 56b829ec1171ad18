package signals

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownSignal is generated when a name does not resolve to a signal
	ErrUnknownSignal = errors.New("unknown signal")

	// ErrBadBit is generated when a signal's bit is outside the state word
	ErrBadBit = errors.New("bit outside of 32-bit state word")

	// ErrDuplicateSignal is generated when two signals share a bit or label
	ErrDuplicateSignal = errors.New("duplicate signal")
)

// Registry is the catalog of signals known to a sequencer.  It is immutable
// once built and safe for concurrent use.
type Registry struct {
	sigs    []Signal
	byLabel map[string]Signal
	byBit   [32]*Signal
}

// NewRegistry validates the signals and builds a Registry from them
func NewRegistry(sigs ...Signal) (*Registry, error) {
	r := &Registry{
		sigs:    make([]Signal, 0, len(sigs)),
		byLabel: make(map[string]Signal, len(sigs)),
	}
	for _, s := range sigs {
		if s.Bit < 0 || s.Bit > 31 {
			return nil, errors.Wrapf(ErrBadBit, "signal %q bit %d", s.Label, s.Bit)
		}
		if s.Label == "" {
			return nil, fmt.Errorf("signal on bit %d has no label", s.Bit)
		}
		if _, ok := r.byLabel[s.Label]; ok {
			return nil, errors.Wrapf(ErrDuplicateSignal, "label %q", s.Label)
		}
		if prev := r.byBit[s.Bit]; prev != nil {
			return nil, errors.Wrapf(ErrDuplicateSignal, "bit %d used by %q and %q", s.Bit, prev.Label, s.Label)
		}
		r.sigs = append(r.sigs, s)
		r.byLabel[s.Label] = s
		r.byBit[s.Bit] = &r.sigs[len(r.sigs)-1]
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error, for package level tables
func MustRegistry(sigs ...Signal) *Registry {
	r, err := NewRegistry(sigs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve looks up a signal by its label
func (r *Registry) Resolve(name string) (Signal, error) {
	s, ok := r.byLabel[strings.TrimSpace(name)]
	if !ok {
		return Signal{}, errors.Wrapf(ErrUnknownSignal, "%q", name)
	}
	return s, nil
}

// Set resolves each name and returns the set of them
func (r *Registry) Set(names ...string) (Set, error) {
	var set Set
	for _, n := range names {
		s, err := r.Resolve(n)
		if err != nil {
			return 0, err
		}
		set |= SetOf(s)
	}
	return set, nil
}

// MustSet is Set that panics on an unknown name.  It is meant for recipes
// written in Go against a fixed registry.
func (r *Registry) MustSet(names ...string) Set {
	s, err := r.Set(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns every signal in declaration order
func (r *Registry) All() []Signal {
	out := make([]Signal, len(r.sigs))
	copy(out, r.sigs)
	return out
}

// Len is the number of signals in the registry
func (r *Registry) Len() int {
	return len(r.sigs)
}

// Members returns the signals in s, in bit order from high to low.
// Bits that are not registered are ignored.
func (r *Registry) Members(s Set) []Signal {
	var out []Signal
	for bit := 31; bit >= 0; bit-- {
		if sig := r.byBit[bit]; sig != nil && s.Has(*sig) {
			out = append(out, *sig)
		}
	}
	return out
}

// Labels returns the labels of the members of s
func (r *Registry) Labels(s Set) []string {
	m := r.Members(s)
	out := make([]string, len(m))
	for i, sig := range m {
		out[i] = sig.Label
	}
	return out
}

// Format renders a set as "{P1,S2}" for logs and error messages
func (r *Registry) Format(s Set) string {
	return "{" + strings.Join(r.Labels(s), ",") + "}"
}

// Groups returns the distinct display groups in sorted order
func (r *Registry) Groups() []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range GroupOrder(r.sigs) {
		g := s.DisplayGroup()
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// InGroup returns the members of a display group in group order
func (r *Registry) InGroup(group string) []Signal {
	var out []Signal
	for _, s := range GroupOrder(r.sigs) {
		if s.DisplayGroup() == group {
			out = append(out, s)
		}
	}
	return out
}

// Hardware returns an error if any signal is on a bit that is not wired to
// the sequencer (below MinBit)
func (r *Registry) Hardware() error {
	for _, s := range r.sigs {
		if s.Bit < MinBit || s.Bit > MaxBit {
			return errors.Wrapf(ErrBadBit, "signal %q on bit %d is not wired, usable bits are %d..%d", s.Label, s.Bit, MinBit, MaxBit)
		}
	}
	return nil
}
