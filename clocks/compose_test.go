package clocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/ccdclock/clocks"
)

// rowPhases is pre = 10 ticks, pixel = 4+4 ticks toggling A, post = 6 ticks with B
func rowPhases(tickTime float64) clocks.PhaseFactory {
	return func() (pre, pix, post *clocks.Program, err error) {
		pre, err = clocks.New(testReg, tick, clocks.Name("pre"))
		if err != nil {
			return
		}
		pre.ChangeFor(10, 0, 0)
		pix, err = clocks.New(testReg, tickTime, clocks.Name("pixel"), clocks.InitFrom(pre))
		if err != nil {
			return
		}
		pix.ChangeFor(4, setA, 0)
		pix.ChangeFor(4, 0, setA)
		post, err = clocks.New(testReg, tick, clocks.Name("post"), clocks.InitFrom(pix))
		if err != nil {
			return
		}
		post.ChangeFor(6, setB, 0)
		return
	}
}

func TestComposeRow(t *testing.T) {
	row, err := clocks.ComposeRow(3, rowPhases(tick), 1)
	require.NoError(t, err)
	assert.Equal(t, 8, row.Table.Len())
	assert.Equal(t, []uint16{10, 4, 4, 4, 4, 4, 4, 6}, row.Table.Durations)
	assert.Equal(t, []uint32{0, 1, 0, 1, 0, 1, 0, 2}, row.Table.States)
	assert.InDelta(t, float64(10+4+4+4+4+4+4+6)*tick, row.Seconds, 1e-18)
	assert.Equal(t, [3]int{1, 2, 1}, row.PhaseEntries)
	assert.Empty(t, row.Warnings)
	assert.InDelta(t, 2*row.Seconds, row.FrameSeconds(2), 1e-18)
}

func TestComposeRowBinning(t *testing.T) {
	row, err := clocks.ComposeRow(2, rowPhases(tick), 3)
	require.NoError(t, err)
	assert.Equal(t, 1+4+3, row.Table.Len())
	assert.Equal(t, 10+16+18, row.Ticks())
}

func TestComposeRowNoPixels(t *testing.T) {
	row, err := clocks.ComposeRow(0, rowPhases(tick), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{10, 6}, row.Table.Durations)
}

func TestComposeRowTickMismatch(t *testing.T) {
	_, err := clocks.ComposeRow(1, rowPhases(2*tick), 1)
	assert.ErrorIs(t, err, clocks.ErrTickTimeMismatch)
}

func TestComposeRowBadArgs(t *testing.T) {
	_, err := clocks.ComposeRow(-1, rowPhases(tick), 1)
	assert.Error(t, err)
	_, err = clocks.ComposeRow(1, rowPhases(tick), 0)
	assert.Error(t, err)
}

func TestComposeRowIncompletePhase(t *testing.T) {
	f := func() (pre, pix, post *clocks.Program, err error) {
		pre, _, post, _ = rowPhases(tick)()
		pix, err = clocks.New(testReg, tick, clocks.Name("pixel"))
		pix.ChangeAt(0, setA, 0)
		return
	}
	_, err := clocks.ComposeRow(1, f, 1)
	assert.ErrorIs(t, err, clocks.ErrIncompleteProgram)
}

func TestComposeRowWarnsButEmits(t *testing.T) {
	f := func() (pre, pix, post *clocks.Program, err error) {
		pre, err = clocks.New(testReg, tick, clocks.Name("pre"), clocks.HoldOff(setC))
		require.NoError(t, err)
		pre.ChangeFor(10, 0, 0)
		pix, err = clocks.New(testReg, tick, clocks.Name("pixel"), clocks.InitFrom(pre))
		require.NoError(t, err)
		pix.ChangeFor(4, setA.Union(setC), 0)
		post, err = clocks.New(testReg, tick, clocks.Name("post"), clocks.InitFrom(pix))
		require.NoError(t, err)
		post.ChangeFor(6, 0, setA)
		return
	}
	row, err := clocks.ComposeRow(2, f, 1)
	require.NoError(t, err)
	// one hold-off contradiction in the pixel phase, and the pixel phase does not end where it starts
	require.Len(t, row.Warnings, 2)
	assert.Contains(t, row.Warnings[0], "held-off")
	assert.Contains(t, row.Warnings[1], "repeats will not be identical")
	for i, s := range row.Table.States {
		assert.Zero(t, s&setC.Mask(), "entry %d drives a held-off line", i)
	}
}
