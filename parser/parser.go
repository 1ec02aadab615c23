// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package parser

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/tidwall/btree"
	log "github.com/vine-io/vine/lib/logger"

	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/caex"
	"github.com/vine-io/fpdaml/fpd"
)

// Linkage maps every decomposed process id to the id of the operator it
// expands.
type Linkage map[string]string

// Parse reconstructs the graph form of a CAEX document. Only a missing
// instance hierarchy or top level Process container fails the conversion;
// anything else that cannot be mapped is skipped and reported through the
// WithWarnings collector.
func Parse(tree *etree.Document, opts ...Option) (*fpd.Document, error) {
	doc, _, err := ParseWithLinkage(tree, opts...)
	return doc, err
}

// ParseWithLinkage is like Parse and also returns the decomposition linkage
// recorded while walking the tree.
func ParseWithLinkage(tree *etree.Document, opts ...Option) (*fpd.Document, Linkage, error) {
	options := NewOptions(opts...)

	if tree == nil || tree.Root() == nil {
		return nil, nil, api.BadRequest("empty document")
	}
	root := tree.Root()

	ih := root.SelectElement(caex.TagInstanceHierarchy)
	if ih == nil {
		return nil, nil, api.BadRequest("missing %s", caex.TagInstanceHierarchy)
	}

	p := &parser{options: options, linkage: Linkage{}, taken: map[string]struct{}{}}

	top := p.findProcess(ih, caex.Name(ih))
	if top == nil {
		return nil, nil, api.BadRequest("instance hierarchy %q has no top level Process", caex.Name(ih))
	}

	rootID := p.fresh(fpd.KindProcess.Name())
	entryPoint, err := p.parseProcess(top, rootID, "", 0)
	if err != nil {
		return nil, nil, err
	}

	project := &fpd.Project{
		Name:            caex.Name(ih),
		TargetNamespace: options.TargetNamespace,
		EntryPoint:      entryPoint,
	}
	if info, ok := caex.ReadSourceInfo(root); ok && info.OriginURL != "" {
		project.TargetNamespace = info.OriginURL
	}

	doc := fpd.NewDocument(project)
	for _, entry := range p.entries {
		doc.AddEntry(entry)
	}

	return doc, p.linkage, nil
}

type parser struct {
	options *Options
	entries []*fpd.ProcessEntry
	linkage Linkage
	// taken holds every graph id handed out so far, across all processes.
	taken map[string]struct{}
}

// claim reserves id for the whole document and reports whether it was free.
func (p *parser) claim(id string) bool {
	if _, ok := p.taken[id]; ok {
		return false
	}
	p.taken[id] = struct{}{}
	return true
}

// fresh returns a generated id that is not in use anywhere in the document.
func (p *parser) fresh(prefix string) string {
	for {
		id := p.options.IDGenerator.Next(prefix)
		if p.claim(id) {
			return id
		}
	}
}

func (p *parser) warn(process, element, format string, args ...any) {
	w := Warning{Process: process, Element: element, Reason: fmt.Sprintf(format, args...)}
	log.Debugf("skip %s", w)
	if p.options.Warn != nil {
		p.options.Warn(w)
	}
}

// findProcess returns the first Process container among the direct children
// of e. Children without a class path are matched by name.
func (p *parser) findProcess(e *etree.Element, scope string) *etree.Element {
	var found *etree.Element
	for _, child := range caex.InternalElements(e) {
		if !isProcess(child) {
			continue
		}
		if found != nil {
			p.warn(scope, caex.ID(child), "more than one Process container, only the first is read")
			continue
		}
		found = child
	}
	return found
}

func isProcess(e *etree.Element) bool {
	path := caex.SystemUnitPath(e)
	if path == "" {
		return caex.Name(e) == fpd.KindProcess.Name()
	}
	kind, ok := caex.KindByClassPath(path)
	return ok && kind == fpd.KindProcess
}

// port is what a link side resolves to.
type port struct {
	element   string
	direction caex.Direction
	kind      fpd.Kind
	coord     *fpd.Point
	waypoints []fpd.Point
}

// scope holds the lookups of one process container.
type scope struct {
	id    string
	nodes map[string]*fpd.Node
	ports *btree.Map[string, *port]
}

func (p *parser) parseProcess(container *etree.Element, id, operator string, depth int) (string, error) {
	if depth >= p.options.MaxDepth {
		return "", api.PreconditionFailed("process %s: decomposition deeper than %d levels", id, p.options.MaxDepth)
	}

	sc := &scope{
		id:    id,
		nodes: map[string]*fpd.Node{},
		ports: &btree.Map[string, *port]{},
	}
	process := &fpd.Process{
		ID:                        id,
		DecomposedProcessOperator: operator,
		States:                    []string{},
		ProcessOperators:          []string{},
		Processes:                 []string{},
	}

	var limit *fpd.Node
	var limitVisual *fpd.Visual
	nodes := make([]*fpd.Node, 0)
	visuals := make([]*fpd.Visual, 0)

	for _, child := range caex.InternalElements(container) {
		treeID := caex.ID(child)
		kind, ok := caex.KindByClassPath(caex.SystemUnitPath(child))
		if !ok {
			p.warn(id, treeID, "unknown class %q", caex.SystemUnitPath(child))
			continue
		}

		switch kind {
		case fpd.KindProcess:
			p.warn(id, treeID, "Process container outside of a process operator")
			continue
		case fpd.KindSystemLimit:
			if limit != nil {
				p.warn(id, treeID, "second system limit")
				continue
			}
			limit = &fpd.Node{Kind: kind, ID: p.graphID(sc, child, kind)}
			if b := caex.DecodeVisual(child); b != nil {
				limitVisual = &fpd.Visual{ID: limit.ID, Kind: kind, Bounds: b}
			}
			sc.nodes[limit.ID] = limit
			p.recordPorts(sc, child, limit.ID)
			continue
		}

		node := &fpd.Node{
			Kind:            kind,
			ID:              p.graphID(sc, child, kind),
			Identification:  caex.DecodeIdentification(child),
			Characteristics: caex.DecodeCharacteristics(child),
			Incoming:        []string{},
			Outgoing:        []string{},
			IsAssignedTo:    []string{},
		}
		sc.nodes[node.ID] = node
		nodes = append(nodes, node)

		if b := caex.DecodeVisual(child); b != nil {
			visuals = append(visuals, &fpd.Visual{ID: node.ID, Kind: kind, Bounds: b})
		}
		p.recordPorts(sc, child, node.ID)

		switch {
		case kind.IsState():
			process.States = append(process.States, node.ID)
		case kind == fpd.KindProcessOperator:
			process.ProcessOperators = append(process.ProcessOperators, node.ID)
		}

		nested := p.findProcess(child, id)
		if nested == nil {
			continue
		}
		if kind != fpd.KindProcessOperator {
			p.warn(id, treeID, "%s cannot be decomposed", kind.Name())
			continue
		}
		childID, err := p.parseProcess(nested, node.ID, node.ID, depth+1)
		if err != nil {
			return "", err
		}
		node.DecomposedView = childID
		process.Processes = append(process.Processes, childID)
		p.linkage[childID] = node.ID
	}

	flows, flowVisuals := p.parseLinks(sc, container)
	groupTandems(flows)

	entry := &fpd.ProcessEntry{
		Process:  process,
		Elements: make([]fpd.Element, 0, len(nodes)+len(flows)+1),
		Visuals:  make([]*fpd.Visual, 0, len(visuals)+len(flowVisuals)+1),
	}
	if limit != nil {
		process.SystemLimit = limit.ID
		limit.ElementsContainer = make([]string, 0, len(nodes)+len(flows))
		for _, node := range nodes {
			limit.ElementsContainer = append(limit.ElementsContainer, node.ID)
		}
		for _, flow := range flows {
			limit.ElementsContainer = append(limit.ElementsContainer, flow.ID)
		}
		entry.Elements = append(entry.Elements, limit)
		if limitVisual != nil {
			entry.Visuals = append(entry.Visuals, limitVisual)
		}
	}
	for _, node := range nodes {
		entry.Elements = append(entry.Elements, node)
	}
	for _, flow := range flows {
		entry.Elements = append(entry.Elements, flow)
	}
	entry.Visuals = append(entry.Visuals, visuals...)
	entry.Visuals = append(entry.Visuals, flowVisuals...)

	p.entries = append(p.entries, entry)
	return id, nil
}

// graphID prefers the unique identifier of the element's identity block. An
// identifier already taken anywhere in the document is replaced by a fresh
// one; the identity block itself keeps the original value.
func (p *parser) graphID(sc *scope, e *etree.Element, kind fpd.Kind) string {
	ident := caex.DecodeIdentification(e)
	if ident == nil || ident.UniqueIdent == "" {
		return p.fresh(kind.Name())
	}
	if !p.claim(ident.UniqueIdent) {
		p.warn(sc.id, caex.ID(e), "duplicate unique identifier %q", ident.UniqueIdent)
		return p.fresh(kind.Name())
	}
	return ident.UniqueIdent
}

func (p *parser) recordPorts(sc *scope, e *etree.Element, owner string) {
	for _, ei := range caex.ExternalInterfaces(e) {
		kind, dir, ok := caex.PortKind(caex.InterfacePath(ei))
		if !ok {
			p.warn(sc.id, caex.ID(ei), "unknown interface class %q", caex.InterfacePath(ei))
			continue
		}
		sc.ports.Set(caex.ID(ei), &port{
			element:   owner,
			direction: dir,
			kind:      kind,
			coord:     caex.DecodeCoordinate(caex.FindAttribute(ei, caex.BlockCoordinate)),
			waypoints: caex.DecodeWaypoints(ei),
		})
	}
}

func (p *parser) parseLinks(sc *scope, container *etree.Element) ([]*fpd.Flow, []*fpd.Visual) {
	flows := make([]*fpd.Flow, 0)
	visuals := make([]*fpd.Visual, 0)

	for _, link := range caex.InternalLinks(container) {
		name := caex.Name(link)
		a, okA := sc.ports.Get(link.SelectAttrValue(caex.AttrRefPartnerSideA, ""))
		b, okB := sc.ports.Get(link.SelectAttrValue(caex.AttrRefPartnerSideB, ""))
		if !okA || !okB {
			p.warn(sc.id, name, "link side does not resolve to a port")
			continue
		}

		var src, dst *port
		switch {
		case a.direction == caex.DirectionOut && b.direction == caex.DirectionIn:
			src, dst = a, b
		case a.direction == caex.DirectionIn && b.direction == caex.DirectionOut:
			src, dst = b, a
		default:
			p.warn(sc.id, name, "both sides are %s ports", a.direction)
			continue
		}

		source, target := sc.nodes[src.element], sc.nodes[dst.element]
		flow := &fpd.Flow{
			Kind:      src.kind,
			ID:        p.fresh(src.kind.Name()),
			SourceRef: source.ID,
			TargetRef: target.ID,
		}
		flows = append(flows, flow)

		if wps := waypoints(src, dst); len(wps) > 0 {
			visuals = append(visuals, &fpd.Visual{ID: flow.ID, Kind: flow.Kind, Waypoints: wps})
		}

		source.Outgoing = append(source.Outgoing, flow.ID)
		target.Incoming = append(target.Incoming, flow.ID)
		assign(flow.Kind, source, target)
	}

	return flows, visuals
}

// waypoints rebuilds the edge geometry: the source coordinate, the auxiliary
// waypoints of the source port, then the target coordinate. Port coordinates
// are the recorded docking points and are flagged as such.
func waypoints(src, dst *port) []*fpd.Point {
	out := make([]*fpd.Point, 0, len(src.waypoints)+2)
	if c := src.coord; c != nil {
		out = append(out, &fpd.Point{X: c.X, Y: c.Y, Original: &fpd.Point{X: c.X, Y: c.Y}})
	}
	for _, wp := range src.waypoints {
		out = append(out, &fpd.Point{X: wp.X, Y: wp.Y})
	}
	if c := dst.coord; c != nil {
		out = append(out, &fpd.Point{X: c.X, Y: c.Y, Original: &fpd.Point{X: c.X, Y: c.Y}})
	}
	return out
}

// assign derives isAssignedTo: both ends of a Usage know each other, while on
// a state/operator edge only the state records the operator.
func assign(kind fpd.Kind, source, target *fpd.Node) {
	switch {
	case kind == fpd.KindUsage:
		source.IsAssignedTo = appendUnique(source.IsAssignedTo, target.ID)
		target.IsAssignedTo = appendUnique(target.IsAssignedTo, source.ID)
	case source.Kind.IsState() && target.Kind == fpd.KindProcessOperator:
		source.IsAssignedTo = appendUnique(source.IsAssignedTo, target.ID)
	case source.Kind == fpd.KindProcessOperator && target.Kind.IsState():
		target.IsAssignedTo = appendUnique(target.IsAssignedTo, source.ID)
	}
}

func appendUnique(list []string, id string) []string {
	for _, item := range list {
		if item == id {
			return list
		}
	}
	return append(list, id)
}

// groupTandems links the parallel and alternative flows that leave the same
// element with the same kind.
func groupTandems(flows []*fpd.Flow) {
	type key struct {
		source string
		kind   fpd.Kind
	}
	groups := map[key][]*fpd.Flow{}
	order := make([]key, 0)
	for _, flow := range flows {
		if !flow.Kind.IsTandem() {
			continue
		}
		k := key{source: flow.SourceRef, kind: flow.Kind}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], flow)
	}

	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		for _, flow := range group {
			flow.InTandemWith = make([]string, 0, len(group)-1)
			for _, other := range group {
				if other != flow {
					flow.InTandemWith = append(flow.InTandemWith, other.ID)
				}
			}
		}
	}
}
