// Package sequencer exposes the clock recipes of a CCD controller over HTTP
// for inspection: opcode tables, timing diagrams, traces and waveforms.
// Nothing here talks to hardware; the routes are read only.
package sequencer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"

	"github.com/nasa-jpl/ccdclock/clocks"
	"github.com/nasa-jpl/ccdclock/diagram"
	"github.com/nasa-jpl/ccdclock/generichttp"
	"github.com/nasa-jpl/ccdclock/oscilloscope"
	"github.com/nasa-jpl/ccdclock/recipe"
	"github.com/nasa-jpl/ccdclock/signals"
)

// errUsage marks request errors which are the client's fault
var errUsage = errors.New("bad request")

// Defaults are the diagram settings used when a request does not give them
type Defaults struct {
	TickDiv  int
	CutAfter int
}

// HTTPSequencer wraps a recipe book in an HTTP route table
type HTTPSequencer struct {
	Reg      *signals.Registry
	Book     *recipe.Book
	Params   recipe.Params
	Defaults Defaults

	// RouteTable maps URLs to functions
	RouteTable generichttp.RouteTable
}

// NewHTTPSequencer returns a new HTTP wrapper around a recipe book
func NewHTTPSequencer(reg *signals.Registry, book *recipe.Book, prm recipe.Params, def Defaults) HTTPSequencer {
	h := HTTPSequencer{Reg: reg, Book: book, Params: prm, Defaults: def}
	h.RouteTable = generichttp.RouteTable{
		generichttp.MethodPath{Method: http.MethodGet, Path: "/signals"}:                     h.GetSignals,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/recipes"}:                     h.GetRecipes,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/recipes/{name}/table"}:        h.GetTable,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/recipes/{name}/diagram"}:      h.GetDiagram,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/recipes/{name}/trace"}:        h.GetTrace,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/recipes/{name}/waveform.csv"}: h.GetWaveform,
		generichttp.MethodPath{Method: http.MethodGet, Path: "/recipes/{name}/fits"}:         h.GetFITS,
	}
	return h
}

// RT safisfies the generichttp.HTTPer interface
func (h HTTPSequencer) RT() generichttp.RouteTable {
	return h.RouteTable
}

// Router returns a chi router with the routes bound
func (h HTTPSequencer) Router() chi.Router {
	r := chi.NewRouter()
	h.RouteTable.Bind(r)
	return r
}

// fail maps an error to a status code: unknown names are 404, malformed
// requests 400, anything else 500
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recipe.ErrUnknownRecipe), errors.Is(err, signals.ErrUnknownSignal):
		generichttp.NotFound(w, err)
	case errors.Is(err, errUsage),
		errors.Is(err, recipe.ErrUnknownPhase),
		errors.Is(err, diagram.ErrNonIntegerQuantization),
		errors.Is(err, clocks.ErrSignalNeverReferenced):
		generichttp.BadRequest(w, err)
	default:
		generichttp.InternalError(w, err)
	}
}

func (h HTTPSequencer) lookup(r *http.Request) (recipe.Recipe, error) {
	return h.Book.Lookup(chi.URLParam(r, "name"))
}

func (h HTTPSequencer) phase(r *http.Request) (*clocks.Program, error) {
	rec, err := h.lookup(r)
	if err != nil {
		return nil, err
	}
	return rec.Phase(h.Reg, h.Params, r.URL.Query().Get("phase"))
}

// GetSignals lists the registry in display order
func (h HTTPSequencer) GetSignals(w http.ResponseWriter, r *http.Request) {
	generichttp.WriteJSON(w, signals.GroupOrder(h.Reg.All()))
}

type recipeSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetRecipes lists the recipes in the book
func (h HTTPSequencer) GetRecipes(w http.ResponseWriter, r *http.Request) {
	out := []recipeSummary{}
	for _, rec := range h.Book.Recipes() {
		out = append(out, recipeSummary{Name: rec.Name, Description: rec.Description})
	}
	generichttp.WriteJSON(w, out)
}

type tableResponse struct {
	*clocks.Row
	Checksum string `json:"checksum"`
}

// GetTable returns the composed row of a recipe with its checksum
func (h HTTPSequencer) GetTable(w http.ResponseWriter, r *http.Request) {
	rec, err := h.lookup(r)
	if err != nil {
		fail(w, err)
		return
	}
	row, err := rec.Row(h.Reg, h.Params)
	if err != nil {
		fail(w, err)
		return
	}
	generichttp.WriteJSON(w, tableResponse{Row: row, Checksum: fmt.Sprintf("0x%04X", row.Table.Checksum())})
}

// GetDiagram returns the timing diagram of one phase of a recipe.  With
// format=wavedrom the WaveDrom document is returned instead.
func (h HTTPSequencer) GetDiagram(w http.ResponseWriter, r *http.Request) {
	div, err := generichttp.QueryInt(r, "tickdiv", h.Defaults.TickDiv)
	if err != nil {
		fail(w, errors.Wrap(errUsage, err.Error()))
		return
	}
	cut, err := generichttp.QueryInt(r, "cutafter", h.Defaults.CutAfter)
	if err != nil {
		fail(w, errors.Wrap(errUsage, err.Error()))
		return
	}
	if div < 1 || cut < 0 {
		fail(w, errors.Wrapf(errUsage, "tickdiv must be at least 1 and cutafter non-negative, got %d and %d", div, cut))
		return
	}
	p, err := h.phase(r)
	if err != nil {
		fail(w, err)
		return
	}
	d, err := diagram.Compile(p, diagram.Options{TickDiv: div, CutAfter: cut})
	if err != nil {
		fail(w, err)
		return
	}
	if r.URL.Query().Get("format") == "wavedrom" {
		b, err := d.WaveJSON()
		if err != nil {
			fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
		return
	}
	generichttp.WriteJSON(w, d)
}

// GetTrace returns the edges of one line over one phase of a recipe
func (h HTTPSequencer) GetTrace(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("signal")
	if name == "" {
		fail(w, errors.Wrap(errUsage, "signal query parameter is required"))
		return
	}
	sig, err := h.Reg.Resolve(name)
	if err != nil {
		fail(w, err)
		return
	}
	p, err := h.phase(r)
	if err != nil {
		fail(w, err)
		return
	}
	edges, err := clocks.SignalTrace(p, sig, r.URL.Query().Get("initial") != "false")
	if err != nil {
		fail(w, err)
		return
	}
	generichttp.WriteJSON(w, edges)
}

// encodeAndRespond encodes the body into memory before anything is sent, so
// an encoding error is still answered with a clean error status
func encodeAndRespond(w http.ResponseWriter, contentType string, encode func(io.Writer) error) {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		w.Header().Del("Content-Disposition")
		fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// GetWaveform returns one phase of a recipe as a CSV with one column per line
func (h HTTPSequencer) GetWaveform(w http.ResponseWriter, r *http.Request) {
	p, err := h.phase(r)
	if err != nil {
		fail(w, err)
		return
	}
	wav, err := oscilloscope.FromProgram(p, diagram.Select(p, diagram.Options{}))
	if err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", p.Name()))
	encodeAndRespond(w, "text/csv", wav.EncodeCSV)
}

// GetFITS returns the composed row of a recipe as a FITS file
func (h HTTPSequencer) GetFITS(w http.ResponseWriter, r *http.Request) {
	rec, err := h.lookup(r)
	if err != nil {
		fail(w, err)
		return
	}
	row, err := rec.Row(h.Reg, h.Params)
	if err != nil {
		fail(w, err)
		return
	}
	encodeAndRespond(w, "image/fits", row.WriteFITS)
}
