package util_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/nasa-jpl/ccdclock/util"
)

func ExampleSetBit_msb() {
	out := util.SetBit(0, 31, true)
	fmt.Printf("%032b\n", out)
	// Output: 10000000000000000000000000000000
}

func ExampleSetBit_lsb() {
	out := util.SetBit(255, 0, false)
	fmt.Printf("%08b\n", out)
	// Output: 11111110
}

func TestGetBit(t *testing.T) {
	var w uint32 = 1 << 17
	if !util.GetBit(w, 17) {
		t.Errorf("expected bit 17 of %032b to be set", w)
	}
	if util.GetBit(w, 16) {
		t.Errorf("expected bit 16 of %032b to be clear", w)
	}
}

func TestUniqueString(t *testing.T) {
	inp := []string{"a", "b", "c", "a"}
	expected := []string{"a", "b", "c"}
	output := util.UniqueString(inp)
	if len(output) != len(expected) {
		t.Fatalf("expected %d unique strings, got %d", len(expected), len(output))
	}
	for i := 0; i < len(output); i++ {
		if output[i] != expected[i] {
			t.Errorf("expected %s got %s", expected[i], output[i])
		}
	}
}

func TestIntSliceToCSV(t *testing.T) {
	inp := []int{1, 2, 3}
	expected := "1,2,3"
	out := util.IntSliceToCSV(inp)
	if expected != out {
		t.Errorf("expected %s got %s", expected, out)
	}
}

func TestSecsToDuration(t *testing.T) {
	var dur time.Duration = 123456789
	secs := dur.Seconds()
	out := util.SecsToDuration(secs)
	if out != dur {
		t.Errorf("expected SecsToDuration to round trip, output %v != expected %v", out, dur)
	}
}
