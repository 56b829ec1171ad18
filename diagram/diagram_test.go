package diagram_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/diagram"
	"github.com/nasa-jpl/ccdclock/signals"
)

const tick = 10e-9

var (
	reg = signals.MustRegistry(
		signals.Signal{Bit: 0, Label: "A", Group: "g", Order: 1},
		signals.Signal{Bit: 1, Label: "B", Group: "g", Order: 2},
		signals.Signal{Bit: 2, Label: "C", Group: "h"},
	)
	sigA, _ = reg.Resolve("A")
	sigB, _ = reg.Resolve("B")
	setA    = reg.MustSet("A")
	setC    = reg.MustSet("C")
)

// pulses toggles A so there is an idle stretch of 10 cells, then one of 4
func pulses(t *testing.T, div int) *clocks.Program {
	p, err := clocks.New(reg, tick, clocks.Name("pulses"))
	require.NoError(t, err)
	require.NoError(t, p.ChangeFor(1*div, setA, 0))
	require.NoError(t, p.ChangeFor(11*div, 0, setA))
	require.NoError(t, p.ChangeFor(1*div, setA, 0))
	require.NoError(t, p.ChangeFor(5*div, 0, setA))
	require.NoError(t, p.ChangeFor(1*div, setA, 0))
	return p
}

func TestCompileCutsLongIdleSpans(t *testing.T) {
	p := pulses(t, 1)
	d, err := diagram.Compile(p, diagram.Options{Signals: []signals.Signal{sigA, sigB}, TickDiv: 1, CutAfter: 5})
	require.NoError(t, err)

	a, ok := d.Lane("A")
	require.True(t, ok)
	b, ok := d.Lane("B")
	require.True(t, ok)
	assert.Equal(t, "010|10....1", a.Wave)
	assert.Equal(t, "0..|.......", b.Wave)
	assert.Equal(t, []diagram.Span{{Start: 2, Len: 10}}, d.Idle)
	assert.Equal(t, ".ab.cd....e", d.Nodes)

	require.Len(t, d.Edges, 5)
	var labels string
	for _, e := range d.Edges {
		labels += e.Label
	}
	assert.Equal(t, "abcde", labels)
	c := d.Edges[2]
	assert.Equal(t, 4, c.Position)
	assert.Equal(t, 12, c.Tick)
	assert.Equal(t, 12, c.Quantum)
	assert.InDelta(t, 11*tick, c.SincePrev, 1e-15)
	assert.InDelta(t, 12*tick, c.SinceStart, 1e-15)
}

func TestCompileWithoutCutting(t *testing.T) {
	p := pulses(t, 1)
	d, err := diagram.Compile(p, diagram.Options{Signals: []signals.Signal{sigA}, TickDiv: 1})
	require.NoError(t, err)
	a, _ := d.Lane("A")
	assert.Equal(t, "010..........10....1", a.Wave)
	assert.Empty(t, d.Idle)
}

func TestCompileQuantizes(t *testing.T) {
	p := pulses(t, 4)
	d, err := diagram.Compile(p, diagram.Options{Signals: []signals.Signal{sigA}, TickDiv: 4, CutAfter: 5})
	require.NoError(t, err)
	a, _ := d.Lane("A")
	assert.Equal(t, "010|10....1", a.Wave)
	assert.Equal(t, 48, d.Edges[2].Tick)
}

func TestCompileNonIntegerQuantization(t *testing.T) {
	p, err := clocks.New(reg, tick)
	require.NoError(t, err)
	p.ChangeFor(4, setA, 0)
	p.ChangeFor(3, 0, setA)
	p.ChangeFor(5, setA, 0)
	_, err = diagram.Compile(p, diagram.Options{TickDiv: 4})
	assert.True(t, errors.Is(err, diagram.ErrNonIntegerQuantization), "got %v", err)

	_, err = diagram.Compile(p, diagram.Options{TickDiv: 0})
	assert.True(t, errors.Is(err, diagram.ErrNonIntegerQuantization), "got %v", err)
}

func TestCompileIncomplete(t *testing.T) {
	p, err := clocks.New(reg, tick)
	require.NoError(t, err)
	p.ChangeAt(0, setA, 0)
	_, err = diagram.Compile(p, diagram.Options{TickDiv: 1})
	assert.True(t, errors.Is(err, clocks.ErrIncompleteProgram), "got %v", err)
}

func TestDefaultSelection(t *testing.T) {
	p := pulses(t, 1)
	assert.Equal(t, []signals.Signal{sigA}, diagram.Select(p, diagram.Options{}))

	// pinning group g pulls in B even though it never changes
	d, err := diagram.Compile(p, diagram.Options{Groups: []string{"g"}, TickDiv: 1, CutAfter: 5})
	require.NoError(t, err)
	require.Len(t, d.Groups, 1)
	assert.Equal(t, "g", d.Groups[0].Name)
	require.Len(t, d.Groups[0].Lanes, 2)
	assert.Equal(t, "A", d.Groups[0].Lanes[0].Label)
	assert.Equal(t, "B", d.Groups[0].Lanes[1].Label)
}

func TestGroupsFollowRegistryOrder(t *testing.T) {
	p, err := clocks.New(reg, tick)
	require.NoError(t, err)
	p.ChangeFor(2, setC, 0)
	p.ChangeFor(2, setA, setC)
	d, err := diagram.Compile(p, diagram.Options{TickDiv: 2})
	require.NoError(t, err)
	require.Len(t, d.Groups, 2)
	assert.Equal(t, "g", d.Groups[0].Name)
	assert.Equal(t, "h", d.Groups[1].Name)
	assert.Equal(t, "0.1", d.Groups[0].Lanes[0].Wave)
	assert.Equal(t, "010", d.Groups[1].Lanes[0].Wave)
}

func TestLeadInShowsInitialLevel(t *testing.T) {
	p, err := clocks.New(reg, tick, clocks.Initial(setA))
	require.NoError(t, err)
	p.ChangeFor(3, 0, 0)
	d, err := diagram.Compile(p, diagram.Options{Signals: []signals.Signal{sigA}, TickDiv: 1})
	require.NoError(t, err)
	a, _ := d.Lane("A")
	assert.Equal(t, "1...", a.Wave)
	assert.Empty(t, d.Edges)
}

func TestLabels(t *testing.T) {
	cases := map[int]rune{0: 'a', 25: 'z', 26: 'A', 51: 'Z', 52: 'α', 76: 'ω', 77: '一', 78: '丁'}
	for i, want := range cases {
		if got := diagram.Label(i); got != want {
			t.Errorf("label %d: expected %c got %c", i, want, got)
		}
	}
}

func TestManyEdgesUseExtendedLabels(t *testing.T) {
	p, err := clocks.New(reg, tick)
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		if i%2 == 0 {
			p.ChangeFor(1, setA, 0)
		} else {
			p.ChangeFor(1, 0, setA)
		}
	}
	d, err := diagram.Compile(p, diagram.Options{TickDiv: 1})
	require.NoError(t, err)
	require.Len(t, d.Edges, 60)
	assert.Equal(t, "α", d.Edges[52].Label)
	assert.Equal(t, 61, len([]rune(d.Nodes)))
}

func TestWaveJSON(t *testing.T) {
	d, err := diagram.Compile(pulses(t, 1), diagram.Options{TickDiv: 1, CutAfter: 5})
	require.NoError(t, err)
	buf, err := d.WaveJSON()
	require.NoError(t, err)
	var doc struct {
		Signal []json.RawMessage `json:"signal"`
		Edge   []string          `json:"edge"`
	}
	require.NoError(t, json.Unmarshal(buf, &doc))
	assert.Len(t, doc.Signal, 2)
	require.Len(t, doc.Edge, 4)
	assert.Equal(t, "b<->c 110ns", doc.Edge[1])
}

func ExampleCompile() {
	reg := signals.CCD()
	p, _ := clocks.New(reg, 10e-9, clocks.Name("serial"))
	p.ChangeFor(20, reg.MustSet("S1"), 0)
	p.ChangeFor(20, reg.MustSet("S2"), reg.MustSet("S1"))
	p.ChangeFor(20, reg.MustSet("S3"), reg.MustSet("S2"))
	p.ChangeFor(20, 0, reg.MustSet("S3"))
	d, _ := diagram.Compile(p, diagram.Options{TickDiv: 10})
	for _, l := range d.Lanes() {
		fmt.Printf("%-3s %s\n", l.Label, l.Wave)
	}
	fmt.Printf("    %s\n", d.Nodes)
	// Output:
	// S1  01.0.....
	// S2  0..1.0...
	// S3  0....1.0.
	//     .a.b.c.d.
}

func TestCompileListsZeroLengthPulses(t *testing.T) {
	p, err := clocks.New(reg, tick, clocks.Name("glitch"))
	require.NoError(t, err)
	require.NoError(t, p.ChangeFor(4, 0, 0))
	require.NoError(t, p.ChangeAt(4, setA, 0))
	require.NoError(t, p.CloseFor(0))
	require.NoError(t, p.ChangeFor(4, 0, setA))
	tbl, err := p.Opcodes()
	require.NoError(t, err)
	assert.Equal(t, []uint16{4, 0, 4}, tbl.Durations)

	d, err := diagram.Compile(p, diagram.Options{TickDiv: 1})
	require.NoError(t, err)
	a, ok := d.Lane("A")
	require.True(t, ok)
	assert.Equal(t, "0........", a.Wave)
	assert.Equal(t, []diagram.Glitch{{Tick: 4, Quantum: 4, Lanes: []string{"A"}}}, d.Glitches)
}

func TestCompileNoGlitchesWhenLevelsHold(t *testing.T) {
	d, err := diagram.Compile(pulses(t, 2), diagram.Options{TickDiv: 2})
	require.NoError(t, err)
	assert.Empty(t, d.Glitches)
}
