package clocks_test

import (
	"bytes"
	"testing"

	"github.com/nasa-jpl/ccdclock/clocks"
)

func TestTableBinaryEncoding(t *testing.T) {
	tbl := clocks.Table{Durations: []uint16{10, 0xABCD}, States: []uint32{0x80000000, 0x00018000}}
	buf, err := tbl.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	truth := []byte{0x00, 0x0A, 0x80, 0x00, 0x00, 0x00, 0xAB, 0xCD, 0x00, 0x01, 0x80, 0x00}
	if !bytes.Equal(buf, truth) {
		t.Fatalf("expected % X got % X", truth, buf)
	}
	var back clocks.Table
	if err := back.UnmarshalBinary(buf); err != nil {
		t.Fatal(err)
	}
	if back.Len() != 2 || back.Durations[1] != 0xABCD || back.States[1] != 0x00018000 {
		t.Errorf("decoded table differs: %v", back.Entries())
	}
	if err := back.UnmarshalBinary(buf[:5]); err == nil {
		t.Error("expected a truncated encoding to be rejected")
	}
}

func TestTableChecksumTracksContent(t *testing.T) {
	a := clocks.Table{Durations: []uint16{10, 5}, States: []uint32{1, 2}}
	b := clocks.Table{Durations: []uint16{10, 5}, States: []uint32{1, 2}}
	c := clocks.Table{Durations: []uint16{10, 5}, States: []uint32{1, 3}}
	if a.Checksum() != b.Checksum() {
		t.Error("equal tables have different checksums")
	}
	if a.Checksum() == c.Checksum() {
		t.Error("different tables have equal checksums")
	}
}

func TestTableRepeatAndAppend(t *testing.T) {
	a := clocks.Table{Durations: []uint16{1, 2}, States: []uint32{1, 2}}
	b := clocks.Table{Durations: []uint16{3}, States: []uint32{4}}
	r := a.Repeat(3).Append(b)
	if r.Len() != 7 || r.Ticks() != 3*3+3 {
		t.Errorf("expected 7 entries and 12 ticks, got %d and %d", r.Len(), r.Ticks())
	}
	if a.Repeat(0).Len() != 0 {
		t.Error("expected Repeat(0) to be empty")
	}
	if a.Len() != 2 || b.Len() != 1 {
		t.Error("Append or Repeat modified an input")
	}
}

func TestRowWriteFITS(t *testing.T) {
	row, err := clocks.ComposeRow(3, rowPhases(tick), 1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := row.WriteFITS(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 || buf.Len()%2880 != 0 {
		t.Errorf("expected a non-empty FITS stream of 2880 byte blocks, got %d bytes", buf.Len())
	}
	for _, key := range []string{"TICKTIME", "ROWTIME", "NOPCODE", "TBLCRC"} {
		if !bytes.Contains(buf.Bytes(), []byte(key)) {
			t.Errorf("expected header card %s in FITS stream", key)
		}
	}
	empty := clocks.Row{}
	if err := empty.WriteFITS(&buf); err == nil {
		t.Error("expected an empty row to be rejected")
	}
}
