package builder

import (
	"github.com/vine-io/fpdaml/caex"
	"github.com/vine-io/fpdaml/fpd"
)

// portNamer hands out port names per element and per base class: the first
// port of a class is named after the class, later ones get the suffix 1, 2, ...
type portNamer struct {
	counts map[string]map[string]int
}

func newPortNamer() *portNamer {
	return &portNamer{counts: map[string]map[string]int{}}
}

func (n *portNamer) next(owner, base string) string {
	byBase, ok := n.counts[owner]
	if !ok {
		byBase = map[string]int{}
		n.counts[owner] = byBase
	}
	i := byBase[base]
	byBase[base] = i + 1
	return caex.Suffixed(base, i)
}

// flowGeometry splits the waypoints of an edge over its two ports.
type flowGeometry struct {
	source   *fpd.Point
	target   *fpd.Point
	interior []fpd.Point
}

func newFlowGeometry(entry *fpd.ProcessEntry, id string) flowGeometry {
	var geo flowGeometry

	v, ok := entry.Visual(id)
	if !ok || len(v.Waypoints) == 0 {
		return geo
	}

	wps := v.Waypoints
	first := wps[0].Effective()
	last := wps[len(wps)-1].Effective()
	geo.source, geo.target = &first, &last

	if len(wps) > 2 {
		geo.interior = make([]fpd.Point, 0, len(wps)-2)
		for _, wp := range wps[1 : len(wps)-1] {
			geo.interior = append(geo.interior, fpd.Point{X: wp.X, Y: wp.Y})
		}
	}

	return geo
}
