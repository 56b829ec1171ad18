// Package oscilloscope renders clock programs as the digital waveforms a
// logic analyzer or scope would record on the sequencer's outputs
package oscilloscope

import (
	"bufio"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/signals"
)

// Waveform describes a recording of several lines sampled at a common rate
type Waveform struct {
	// DT is the temporal sample spacing in seconds
	DT float64 `json:"dt"`

	// T0 is the time of the first sample in seconds
	T0 float64 `json:"t0"`

	// Channels holds named data streams
	Channels map[string]Channel `json:"channels"`

	// Order is the column order used when encoding.  Channels not listed are
	// appended in sorted order
	Order []string `json:"order"`
}

// Channel represents a stream of data from an ADC.  To convert to physical units,
// compute (data-reference)*scale+offset
type Channel struct {
	// Data is the actual buffer, []byte, []int16, []uint16, or similar
	Data Data `json:"data"`

	// Scale is the vertical scale of the data or size of a single increment
	// in Data's native dtype
	Scale float64 `json:"scale"`

	// Offset is the offset applied to the data
	Offset float64 `json:"offset"`

	// Reference is the reference value for the given channel in DN
	Reference float64 `json:"reference"`
}

// Data is a moniker for an empty interface, expected to be a slice of a concrete
// numerical type
type Data interface{}

// Len is the number of samples in the channel
func (c Channel) Len() int {
	switch v := c.Data.(type) {
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []float64:
		return len(v)
	default:
		return 0
	}
}

// Physical computes the data scaled to real units
func (c Channel) Physical() []float64 {
	conv := func(n int, at func(int) float64) []float64 {
		ret := make([]float64, n)
		for i := 0; i < n; i++ {
			ret[i] = ((at(i) - c.Reference) * c.Scale) + c.Offset
		}
		return ret
	}
	// a lot of copy paste, but this gets us around the type system
	switch v := c.Data.(type) {
	case []uint8:
		return conv(len(v), func(i int) float64 { return float64(v[i]) })
	case []uint16:
		return conv(len(v), func(i int) float64 { return float64(v[i]) })
	case []uint32:
		return conv(len(v), func(i int) float64 { return float64(v[i]) })
	case []int16:
		return conv(len(v), func(i int) float64 { return float64(v[i]) })
	case []int32:
		return conv(len(v), func(i int) float64 { return float64(v[i]) })
	case []float64:
		return conv(len(v), func(i int) float64 { return v[i] })
	default:
		panic("attempt to convert non numerical data to physical units")
	}
}

// FromProgram samples each line once per tick over a closed program, holds
// applied.  Samples are 0 or 1 with unit scale.
func FromProgram(p *clocks.Program, sigs []signals.Signal) (*Waveform, error) {
	traces, err := clocks.Traces(p, sigs)
	if err != nil {
		return nil, err
	}
	start, n := p.Start(), p.Duration()
	wav := &Waveform{
		DT:       p.TickTime(),
		T0:       float64(start) * p.TickTime(),
		Channels: make(map[string]Channel, len(sigs)),
		Order:    make([]string, 0, len(sigs)),
	}
	for _, s := range sigs {
		buf := make([]uint8, n)
		edges := traces[s.Label]
		for i, e := range edges {
			if !e.Level || i == len(edges)-1 {
				continue
			}
			lo, hi := e.Tick-start, edges[i+1].Tick-start
			if lo < 0 {
				lo = 0
			}
			for j := lo; j < hi && j < n; j++ {
				buf[j] = 1
			}
		}
		wav.Channels[s.Label] = Channel{Data: buf, Scale: 1}
		wav.Order = append(wav.Order, s.Label)
	}
	return wav, nil
}

// columns is the encoding order of the channels
func (wav *Waveform) columns() []string {
	seen := make(map[string]bool, len(wav.Order))
	out := make([]string, 0, len(wav.Channels))
	for _, k := range wav.Order {
		if _, ok := wav.Channels[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0)
	for k := range wav.Channels {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// EncodeCSV converts the waveform data to physical units
// and writes it to a CSV in streaming fashion, one row per sample with the
// time in the first column
func (wav *Waveform) EncodeCSV(w io.Writer) error {
	labels := wav.columns()
	data := make([][]float64, len(labels))
	n := -1
	for j, l := range labels {
		data[j] = wav.Channels[l].Physical()
		if n >= 0 && len(data[j]) != n {
			return errors.Errorf("channel %s has %d samples, expected %d", l, len(data[j]), n)
		}
		n = len(data[j])
	}
	if n < 0 {
		n = 0
	}

	bw := bufio.NewWriter(w)
	writer := csv.NewWriter(bw)
	row := append([]string{"time"}, labels...)
	if err := writer.Write(row); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		row[0] = strconv.FormatFloat(wav.T0+float64(i)*wav.DT, 'G', -1, 64)
		for j := range data {
			row[j+1] = strconv.FormatFloat(data[j][i], 'G', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
