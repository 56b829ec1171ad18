package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/diagram"
	"github.com/nasa-jpl/ccdclock/generichttp/sequencer"
	"github.com/nasa-jpl/ccdclock/recipe"
	"github.com/nasa-jpl/ccdclock/signals"
	"github.com/nasa-jpl/ccdclock/util"
)

// Config holds the parameters of the sequencer compiler and its server
type Config struct {
	// Addr is the address to listen at
	Addr string `koanf:"Addr" yaml:"Addr"`

	// TickTime is the sequencer tick in seconds
	TickTime float64 `koanf:"TickTime" yaml:"TickTime"`

	// PixelsPerRow is the number of pixels clocked out per row
	PixelsPerRow int `koanf:"PixelsPerRow" yaml:"PixelsPerRow"`

	// RowBinning is the number of rows summed in the serial register
	RowBinning int `koanf:"RowBinning" yaml:"RowBinning"`

	// Recipe is the recipe used when a command is not given one
	Recipe string `koanf:"Recipe" yaml:"Recipe"`

	// RecipeFiles are YAML files of recipes added to the built-in ones
	RecipeFiles []string `koanf:"RecipeFiles" yaml:"RecipeFiles"`

	// TickDiv is the number of ticks per diagram cell
	TickDiv int `koanf:"TickDiv" yaml:"TickDiv"`

	// CutAfter is the number of idle diagram cells cut to a gap, 0 to never cut
	CutAfter int `koanf:"CutAfter" yaml:"CutAfter"`
}

// DefaultConfig is the configuration used when no file is present
func DefaultConfig() Config {
	return Config{
		Addr:         ":8000",
		TickTime:     10e-9,
		PixelsPerRow: 1024,
		RowBinning:   1,
		Recipe:       recipe.Readout.Name,
		RecipeFiles:  []string{},
		TickDiv:      2,
		CutAfter:     8,
	}
}

// Params are the row parameters of the config
func (c Config) Params() recipe.Params {
	return recipe.Params{TickTime: c.TickTime, PixelsPerRow: c.PixelsPerRow, RowBinning: c.RowBinning}
}

// LoadBook returns the built-in recipes plus those in the config's recipe files
func LoadBook(c Config) (*recipe.Book, error) {
	b := recipe.Builtin()
	if err := recipe.LoadInto(b, c.RecipeFiles...); err != nil {
		return nil, err
	}
	return b, nil
}

// Check composes every recipe in the book and logs their warnings
func Check(ctx context.Context, c Config, b *recipe.Book) error {
	rows, err := recipe.CompileAll(ctx, b, signals.CCD(), c.Params())
	if err != nil {
		return err
	}
	for _, name := range b.Names() {
		row := rows[name]
		log.Printf("recipe %s: %d entries, %d ticks, %g s per row, %d warnings",
			name, row.Table.Len(), row.Ticks(), row.Seconds, len(row.Warnings))
	}
	return nil
}

// BuildMux loads the recipes and returns the HTTP interface to them
func BuildMux(c Config) (chi.Router, error) {
	b, err := LoadBook(c)
	if err != nil {
		return nil, err
	}
	if err = Check(context.Background(), c, b); err != nil {
		return nil, err
	}
	seq := sequencer.NewHTTPSequencer(signals.CCD(), b, c.Params(),
		sequencer.Defaults{TickDiv: c.TickDiv, CutAfter: c.CutAfter})
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	seq.RT().Bind(root)
	return root, nil
}

// recipeArg returns args[i], or the configured recipe
func recipeArg(c Config, args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return c.Recipe
}

func row(c Config, name string) (*clocks.Row, error) {
	b, err := LoadBook(c)
	if err != nil {
		return nil, err
	}
	r, err := b.Lookup(name)
	if err != nil {
		return nil, err
	}
	return r.Row(signals.CCD(), c.Params())
}

func phase(c Config, name, ph string) (*clocks.Program, error) {
	b, err := LoadBook(c)
	if err != nil {
		return nil, err
	}
	r, err := b.Lookup(name)
	if err != nil {
		return nil, err
	}
	return r.Phase(signals.CCD(), c.Params(), ph)
}

// WriteTable writes the opcode table of a recipe's row as text
func WriteTable(w io.Writer, c Config, args []string) error {
	name := recipeArg(c, args, 0)
	r, err := row(c, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s: %d entries (%s per phase), %d ticks, %g s, crc 0x%04X\n",
		name, r.Table.Len(), util.IntSliceToCSV(r.PhaseEntries[:]), r.Ticks(), r.Seconds, r.Table.Checksum())
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "# warning: %s\n", warn)
	}
	return r.Table.WriteText(w)
}

// WriteDiagram writes the WaveDrom document of one phase of a recipe.
// args are recipe and phase, both optional.
func WriteDiagram(w io.Writer, c Config, args []string) error {
	ph := ""
	if len(args) > 1 {
		ph = args[1]
	}
	p, err := phase(c, recipeArg(c, args, 0), ph)
	if err != nil {
		return err
	}
	d, err := diagram.Compile(p, diagram.Options{TickDiv: c.TickDiv, CutAfter: c.CutAfter})
	if err != nil {
		return err
	}
	b, err := d.WaveJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTrace writes the edges of a line in one phase of a recipe, one per line.
// args are recipe, phase and signal.
func WriteTrace(w io.Writer, c Config, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: ccdclock trace <recipe> <phase> <signal>")
	}
	sig, err := signals.CCD().Resolve(args[2])
	if err != nil {
		return err
	}
	p, err := phase(c, args[0], args[1])
	if err != nil {
		return err
	}
	edges, err := clocks.SignalTrace(p, sig, true)
	if err != nil {
		return err
	}
	for _, e := range edges {
		lvl := 0
		if e.Level {
			lvl = 1
		}
		fmt.Fprintf(w, "%d %d\n", e.Tick, lvl)
	}
	return nil
}

// WriteFITS writes a recipe's row as a FITS file.  args are recipe, optional.
func WriteFITS(w io.Writer, c Config, args []string) error {
	r, err := row(c, recipeArg(c, args, 0))
	if err != nil {
		return err
	}
	return r.WriteFITS(w)
}
