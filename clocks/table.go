package clocks

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/snksoft/crc"
)

// EntrySize is the number of bytes one table entry occupies in MarshalBinary's output
const EntrySize = 6

var crcTable = crc.NewTable(crc.XMODEM)

// Table is the opcode table consumed by the sequencer: entry i holds the state
// word States[i] for Durations[i] ticks.  Bits 15-31 of a state word drive the
// clock lines, the low bits are reserved.
type Table struct {
	Durations []uint16 `json:"durations"`
	States    []uint32 `json:"states"`
}

// Entry is one (duration, state) pair
type Entry struct {
	Duration uint16 `json:"duration"`
	State    uint32 `json:"state"`
}

// Len is the number of entries
func (t Table) Len() int {
	return len(t.Durations)
}

// Entries returns the table as a slice of pairs
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.Durations))
	for i := range t.Durations {
		out[i] = Entry{Duration: t.Durations[i], State: t.States[i]}
	}
	return out
}

// Ticks is the sum of all durations
func (t Table) Ticks() int {
	var sum int
	for _, d := range t.Durations {
		sum += int(d)
	}
	return sum
}

// Append returns t followed by o.  Neither input is modified.
func (t Table) Append(o Table) Table {
	out := Table{
		Durations: make([]uint16, 0, len(t.Durations)+len(o.Durations)),
		States:    make([]uint32, 0, len(t.States)+len(o.States)),
	}
	out.Durations = append(append(out.Durations, t.Durations...), o.Durations...)
	out.States = append(append(out.States, t.States...), o.States...)
	return out
}

// Repeat returns t concatenated n times.  n <= 0 yields an empty table.
func (t Table) Repeat(n int) Table {
	if n <= 0 {
		return Table{Durations: []uint16{}, States: []uint32{}}
	}
	out := Table{
		Durations: make([]uint16, 0, n*len(t.Durations)),
		States:    make([]uint32, 0, n*len(t.States)),
	}
	for i := 0; i < n; i++ {
		out.Durations = append(out.Durations, t.Durations...)
		out.States = append(out.States, t.States...)
	}
	return out
}

// MarshalBinary packs the table as big-endian (uint16 duration, uint32 state)
// entries, EntrySize bytes each
func (t Table) MarshalBinary() ([]byte, error) {
	if len(t.Durations) != len(t.States) {
		return nil, fmt.Errorf("table has %d durations but %d states", len(t.Durations), len(t.States))
	}
	buf := make([]byte, EntrySize*len(t.Durations))
	for i := range t.Durations {
		off := i * EntrySize
		binary.BigEndian.PutUint16(buf[off:], t.Durations[i])
		binary.BigEndian.PutUint32(buf[off+2:], t.States[i])
	}
	return buf, nil
}

// UnmarshalBinary is the inverse of MarshalBinary
func (t *Table) UnmarshalBinary(b []byte) error {
	if len(b)%EntrySize != 0 {
		return fmt.Errorf("table encoding is %d bytes, not a multiple of %d", len(b), EntrySize)
	}
	n := len(b) / EntrySize
	t.Durations = make([]uint16, n)
	t.States = make([]uint32, n)
	for i := 0; i < n; i++ {
		off := i * EntrySize
		t.Durations[i] = binary.BigEndian.Uint16(b[off:])
		t.States[i] = binary.BigEndian.Uint32(b[off+2:])
	}
	return nil
}

// Checksum is the CRC-16/XMODEM of the binary encoding, for checking a table
// read back from the sequencer against the one that was sent
func (t Table) Checksum() uint16 {
	buf, err := t.MarshalBinary()
	if err != nil {
		return 0
	}
	c := crcTable.InitCrc()
	c = crcTable.UpdateCrc(c, buf)
	return crcTable.CRC16(c)
}

// WriteText writes the table one entry per line as "duration 0xSTATE"
func (t Table) WriteText(w io.Writer) error {
	for i := range t.Durations {
		if _, err := fmt.Fprintf(w, "%5d 0x%08X\n", t.Durations[i], t.States[i]); err != nil {
			return err
		}
	}
	return nil
}
