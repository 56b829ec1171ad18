package diagram

import (
	"encoding/json"
	"fmt"

	"github.com/nasa-jpl/ccdclock/util"
)

type waveLane struct {
	Name string `json:"name"`
	Wave string `json:"wave"`
	Node string `json:"node,omitempty"`
}

// WaveJSON renders the diagram as a WaveDrom document.  Lanes are grouped,
// the node string rides on an empty lane at the top, and consecutive labelled
// instants are joined by edges annotated with the time between them.
func (d *Diagram) WaveJSON() ([]byte, error) {
	sig := []interface{}{waveLane{Name: "", Wave: "", Node: d.Nodes}}
	for _, g := range d.Groups {
		entry := []interface{}{g.Name}
		for _, l := range g.Lanes {
			entry = append(entry, waveLane{Name: l.Label, Wave: l.Wave})
		}
		sig = append(sig, entry)
	}
	edges := []string{}
	for i := 1; i < len(d.Edges); i++ {
		a, b := d.Edges[i-1], d.Edges[i]
		edges = append(edges, fmt.Sprintf("%s<->%s %v", a.Label, b.Label, util.SecsToDuration(b.SincePrev)))
	}
	doc := map[string]interface{}{
		"signal": sig,
		"edge":   edges,
		"head": map[string]interface{}{
			"text": fmt.Sprintf("%s, %d ticks per cell", d.Program, d.TickDiv),
		},
	}
	return json.Marshal(doc)
}
