package clocks

import (
	"github.com/pkg/errors"
)

// Step is one declarative edit of a program, as written in recipe files.
//
// With End set the step closes the program at that tick.  With At set the
// change happens at that absolute tick, and For, if non-zero, then closes the
// new state after that many ticks.  Otherwise the change happens at the last
// declared tick and lasts For ticks.
type Step struct {
	At  *int     `yaml:"at,omitempty" json:"at,omitempty"`
	End *int     `yaml:"end,omitempty" json:"end,omitempty"`
	For int      `yaml:"for,omitempty" json:"for,omitempty"`
	On  []string `yaml:"on,omitempty" json:"on,omitempty"`
	Off []string `yaml:"off,omitempty" json:"off,omitempty"`
}

// For is a relative step
func For(duration int, on, off []string) Step {
	return Step{For: duration, On: on, Off: off}
}

// At is an absolute step
func At(tick int, on, off []string) Step {
	return Step{At: &tick, On: on, Off: off}
}

// EndAt is a step closing the program at tick
func EndAt(tick int) Step {
	return Step{End: &tick}
}

// Run applies steps in order, stopping at the first error
func (p *Program) Run(steps ...Step) error {
	for i, s := range steps {
		if err := p.step(s); err != nil {
			return errors.Wrapf(err, "step %d", i)
		}
	}
	return nil
}

func (p *Program) step(s Step) error {
	if s.End != nil {
		if len(s.On) > 0 || len(s.Off) > 0 || s.At != nil {
			return errors.New("an end step may not change lines")
		}
		if s.For != 0 {
			return errors.New("an end step may not have a duration")
		}
		return p.CloseAt(*s.End)
	}
	on, err := p.reg.Set(s.On...)
	if err != nil {
		return err
	}
	off, err := p.reg.Set(s.Off...)
	if err != nil {
		return err
	}
	if s.At != nil {
		if err := p.ChangeAt(*s.At, on, off); err != nil {
			return err
		}
		if s.For != 0 {
			return p.CloseFor(s.For)
		}
		return nil
	}
	return p.ChangeFor(s.For, on, off)
}
