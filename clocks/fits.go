package clocks

import (
	"io"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"
)

// Cards describes the row timing as FITS header cards, for stamping into the
// headers of frames read out with this row
func (r *Row) Cards() []fitsio.Card {
	return []fitsio.Card{
		{Name: "TICKTIME", Value: r.TickTime, Comment: "sequencer tick length [s]"},
		{Name: "ROWTIME", Value: r.Seconds, Comment: "row readout time [s]"},
		{Name: "ROWTICKS", Value: r.Ticks(), Comment: "row readout time [ticks]"},
		{Name: "NPIXROW", Value: r.PixelsPerRow, Comment: "pixel phase repeats per row"},
		{Name: "ROWBIN", Value: r.RowBinning, Comment: "post-roll repeats per row"},
		{Name: "NOPCODE", Value: r.Table.Len(), Comment: "sequencer table entries"},
		{Name: "TBLCRC", Value: int(r.Table.Checksum()), Comment: "CRC-16/XMODEM of the table"},
	}
}

// WriteFITS streams the row to w as a FITS file.  The table is stored as a
// 2 x N int32 image of (duration, state word) pairs, state words reinterpreted
// as signed, and the timing cards are in the header.
func (r *Row) WriteFITS(w io.Writer) error {
	n := r.Table.Len()
	if n == 0 {
		return errors.New("cannot write an empty table to FITS")
	}
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(32, []int{2, n})
	defer im.Close()
	err = im.Header().Append(r.Cards()...)
	if err != nil {
		return err
	}
	buf := make([]int32, 2*n)
	for i := 0; i < n; i++ {
		buf[2*i] = int32(r.Table.Durations[i])
		buf[2*i+1] = int32(r.Table.States[i])
	}
	err = im.Write(buf)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
