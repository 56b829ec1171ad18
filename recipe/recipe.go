/*Package recipe holds the clock recipes of the CCD controller.

A Recipe is a declarative description of the three phases of a row: the
pre-roll, the per-pixel phase that is repeated once per pixel, and the
post-roll, which carries the parallel transfer and is repeated once per binned
row.  Each phase is a list of steps turning lines on and off and holding the
result for a number of ticks.  The phases are chained, so the pixel phase
starts where the pre-roll ends and inherits its holds.

Recipes are written in Go (see Builtin) or loaded from YAML files:

	recipes:
	  - name: flush
	    description: fast parallel flush, serial register drained
	    holdOn: [DG]
	    pre:
	      - {for: 10, on: [P1, S1, S2, S3]}
	    pixel:
	      - {for: 4}
	    post:
	      - {for: 20, on: [P2]}
	      - {for: 20, off: [P1]}
*/
package recipe

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/signals"
)

var (
	// ErrUnknownRecipe is generated when a recipe name is not in the book
	ErrUnknownRecipe = errors.New("unknown recipe")

	// ErrDuplicateRecipe is generated when a recipe name is registered twice
	ErrDuplicateRecipe = errors.New("duplicate recipe")

	// ErrUnknownPhase is generated when a phase other than pre, pixel or post is requested
	ErrUnknownPhase = errors.New("unknown phase, expected pre, pixel or post")
)

// Params are the row parameters a recipe is built with
type Params struct {
	// TickTime is the length of a sequencer tick in seconds
	TickTime float64 `json:"tickTime" yaml:"TickTime"`

	// PixelsPerRow is the number of times the pixel phase is repeated
	PixelsPerRow int `json:"pixelsPerRow" yaml:"PixelsPerRow"`

	// RowBinning is the number of times the post-roll is repeated
	RowBinning int `json:"rowBinning" yaml:"RowBinning"`
}

// Recipe describes the phases of a row
type Recipe struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	HoldOn      []string      `yaml:"holdOn,omitempty" json:"holdOn,omitempty"`
	HoldOff     []string      `yaml:"holdOff,omitempty" json:"holdOff,omitempty"`
	Pre         []clocks.Step `yaml:"pre" json:"pre"`
	Pixel       []clocks.Step `yaml:"pixel" json:"pixel"`
	Post        []clocks.Step `yaml:"post" json:"post"`
}

// Phases builds the three programs of the recipe
func (r Recipe) Phases(reg *signals.Registry, prm Params) (pre, pix, post *clocks.Program, err error) {
	on, err := reg.Set(r.HoldOn...)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "recipe %q hold on", r.Name)
	}
	off, err := reg.Set(r.HoldOff...)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "recipe %q hold off", r.Name)
	}
	pre, err = clocks.New(reg, prm.TickTime, clocks.Name(r.Name+"/pre"), clocks.HoldOn(on), clocks.HoldOff(off))
	if err != nil {
		return nil, nil, nil, err
	}
	if err = pre.Run(r.Pre...); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "recipe %q pre-roll", r.Name)
	}
	pix, err = clocks.New(reg, prm.TickTime, clocks.Name(r.Name+"/pixel"), clocks.InitFrom(pre))
	if err != nil {
		return nil, nil, nil, err
	}
	if err = pix.Run(r.Pixel...); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "recipe %q pixel phase", r.Name)
	}
	post, err = clocks.New(reg, prm.TickTime, clocks.Name(r.Name+"/post"), clocks.InitFrom(pix))
	if err != nil {
		return nil, nil, nil, err
	}
	if err = post.Run(r.Post...); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "recipe %q post-roll", r.Name)
	}
	return pre, pix, post, nil
}

// Factory binds the recipe to a registry and parameters
func (r Recipe) Factory(reg *signals.Registry, prm Params) clocks.PhaseFactory {
	return func() (*clocks.Program, *clocks.Program, *clocks.Program, error) {
		return r.Phases(reg, prm)
	}
}

// Row composes the full row table of the recipe
func (r Recipe) Row(reg *signals.Registry, prm Params) (*clocks.Row, error) {
	row, err := clocks.ComposeRow(prm.PixelsPerRow, r.Factory(reg, prm), prm.RowBinning)
	if err != nil {
		return nil, errors.Wrapf(err, "recipe %q", r.Name)
	}
	return row, nil
}

// Phase builds the recipe and returns one of its programs by name: pre, pixel or post
func (r Recipe) Phase(reg *signals.Registry, prm Params, phase string) (*clocks.Program, error) {
	pre, pix, post, err := r.Phases(reg, prm)
	if err != nil {
		return nil, err
	}
	switch phase {
	case "pre":
		return pre, nil
	case "pixel", "":
		return pix, nil
	case "post":
		return post, nil
	default:
		return nil, errors.Wrapf(ErrUnknownPhase, "%q", phase)
	}
}

// Book is a set of recipes by name.  It is not safe for concurrent
// registration; reads may be concurrent once it is filled.
type Book struct {
	recipes map[string]Recipe
}

// NewBook returns a book holding the given recipes
func NewBook(rs ...Recipe) (*Book, error) {
	b := &Book{recipes: map[string]Recipe{}}
	for _, r := range rs {
		if err := b.Register(r); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Register adds a recipe to the book
func (b *Book) Register(r Recipe) error {
	if r.Name == "" {
		return errors.New("recipe has no name")
	}
	if _, ok := b.recipes[r.Name]; ok {
		return errors.Wrapf(ErrDuplicateRecipe, "%q", r.Name)
	}
	b.recipes[r.Name] = r
	return nil
}

// Lookup finds a recipe by name
func (b *Book) Lookup(name string) (Recipe, error) {
	r, ok := b.recipes[name]
	if !ok {
		return Recipe{}, errors.Wrapf(ErrUnknownRecipe, "%q", name)
	}
	return r, nil
}

// Names returns the recipe names in sorted order
func (b *Book) Names() []string {
	out := make([]string, 0, len(b.recipes))
	for k := range b.recipes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Recipes returns every recipe in the book, sorted by name
func (b *Book) Recipes() []Recipe {
	names := b.Names()
	out := make([]Recipe, len(names))
	for i, n := range names {
		out[i] = b.recipes[n]
	}
	return out
}

// CompileAll composes the row of every recipe in the book concurrently.
// Programs share nothing but the read-only registry, so no locking is needed.
func CompileAll(ctx context.Context, b *Book, reg *signals.Registry, prm Params) (map[string]*clocks.Row, error) {
	names := b.Names()
	rows := make([]*clocks.Row, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, r := i, b.recipes[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := r.Row(reg, prm)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*clocks.Row, len(names))
	for i, name := range names {
		out[name] = rows[i]
	}
	return out, nil
}
