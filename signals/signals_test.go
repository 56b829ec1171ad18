package signals_test

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/signals"
)

func ExampleMask() {
	reg := signals.CCD()
	p1, _ := reg.Resolve(signals.P1)
	sync, _ := reg.Resolve(signals.SYNC)
	fmt.Printf("%08x\n", signals.Mask(p1, sync))
	// Output: 80008000
}

func ExampleRegistry_Format() {
	reg := signals.CCD()
	fmt.Println(reg.Format(reg.MustSet("S3", "P1", "SYNC")))
	// Output: {P1,S3,SYNC}
}

func TestCCDRegistryIsHardwareClean(t *testing.T) {
	reg := signals.CCD()
	if reg.Len() != 17 {
		t.Fatalf("expected 17 lines, got %d", reg.Len())
	}
	if err := reg.Hardware(); err != nil {
		t.Error(err)
	}
	var all uint32
	for _, s := range reg.All() {
		all |= s.Mask()
	}
	if all != 0xFFFF8000 {
		t.Errorf("expected lines to cover bits 15-31, got %032b", all)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := signals.CCD().Resolve("P9")
	if !errors.Is(err, signals.ErrUnknownSignal) {
		t.Errorf("expected ErrUnknownSignal, got %v", err)
	}
	_, err = signals.CCD().Set("P1", "nope")
	if !errors.Is(err, signals.ErrUnknownSignal) {
		t.Errorf("expected ErrUnknownSignal from Set, got %v", err)
	}
}

func TestMaskEmpty(t *testing.T) {
	if m := signals.Mask(); m != 0 {
		t.Errorf("expected empty mask to be 0, got %d", m)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := signals.NewRegistry(
		signals.Signal{Bit: 0, Label: "A"},
		signals.Signal{Bit: 0, Label: "B"},
	)
	if !errors.Is(err, signals.ErrDuplicateSignal) {
		t.Errorf("expected duplicate bit to be rejected, got %v", err)
	}
	_, err = signals.NewRegistry(
		signals.Signal{Bit: 0, Label: "A"},
		signals.Signal{Bit: 1, Label: "A"},
	)
	if !errors.Is(err, signals.ErrDuplicateSignal) {
		t.Errorf("expected duplicate label to be rejected, got %v", err)
	}
	_, err = signals.NewRegistry(signals.Signal{Bit: 32, Label: "A"})
	if !errors.Is(err, signals.ErrBadBit) {
		t.Errorf("expected bit 32 to be rejected, got %v", err)
	}
}

func TestHardwareRejectsLowBits(t *testing.T) {
	reg := signals.MustRegistry(signals.Signal{Bit: 0, Label: "A"})
	if err := reg.Hardware(); !errors.Is(err, signals.ErrBadBit) {
		t.Errorf("expected bit 0 to be unwired, got %v", err)
	}
}

func TestGroupOrder(t *testing.T) {
	in := []signals.Signal{
		{Bit: 0, Label: "z", Group: "b", Order: 1},
		{Bit: 1, Label: "y", Group: "a", Order: 2},
		{Bit: 2, Label: "x", Group: "a", Order: 2},
		{Bit: 3, Label: "w", Group: "a", Order: 1},
		{Bit: 4, Label: "v"},
	}
	expected := []string{"w", "x", "y", "z", "v"}
	out := signals.GroupOrder(in)
	for i := range expected {
		if out[i].Label != expected[i] {
			t.Errorf("position %d: expected %s got %s", i, expected[i], out[i].Label)
		}
	}
	if in[0].Label != "z" {
		t.Error("GroupOrder modified its input")
	}
}

func TestSetAlgebra(t *testing.T) {
	reg := signals.CCD()
	a := reg.MustSet("P1", "P2")
	b := reg.MustSet("P2", "P3")
	p2, _ := reg.Resolve("P2")
	p3, _ := reg.Resolve("P3")
	if u := a.Union(b); u != reg.MustSet("P1", "P2", "P3") {
		t.Errorf("union wrong: %s", reg.Format(u))
	}
	if m := a.Minus(b); m != reg.MustSet("P1") {
		t.Errorf("difference wrong: %s", reg.Format(m))
	}
	if i := a.Intersect(b); !i.Has(p2) || i.Has(p3) {
		t.Errorf("intersection wrong: %s", reg.Format(i))
	}
}

func TestGroups(t *testing.T) {
	reg := signals.CCD()
	expected := []string{"adc", "parallel", "serial", "ungrouped", "video"}
	groups := reg.Groups()
	if len(groups) != len(expected) {
		t.Fatalf("expected %v got %v", expected, groups)
	}
	for i := range expected {
		if groups[i] != expected[i] {
			t.Errorf("expected %s got %s", expected[i], groups[i])
		}
	}
	par := reg.InGroup("parallel")
	if len(par) != 5 || par[0].Label != "P1" || par[4].Label != "DG" {
		t.Errorf("unexpected parallel group layout %v", par)
	}
}
