package builder

import (
	"time"

	"github.com/beevik/etree"
	log "github.com/vine-io/vine/lib/logger"

	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/caex"
	"github.com/vine-io/fpdaml/fpd"
)

// Build converts a graph form document into a CAEX document, starting at the
// project's entry point and nesting every decomposed process inside the
// operator it expands. The input document is not modified.
func Build(doc *fpd.Document, opts ...Option) (*etree.Document, error) {
	options := NewOptions(opts...)
	if doc == nil || doc.Project == nil {
		return nil, api.BadRequest("missing %s header", fpd.KindProject)
	}

	entryPoint := options.EntryPoint
	if entryPoint == "" {
		entryPoint = doc.Project.EntryPoint
	}

	out, root := caex.NewDocument(options.FileName, caex.SourceInfo{
		OriginName:          OriginName,
		OriginID:            OriginID,
		OriginVersion:       OriginVersion,
		OriginURL:           doc.Project.TargetNamespace,
		OriginProjectTitle:  doc.Project.Name,
		LastWritingDateTime: options.Now().UTC().Format(time.RFC3339),
	})
	ih := caex.CreateInstanceHierarchy(root, doc.Project.Name, HierarchyVersion)

	b := &DocumentBuilder{doc: doc, options: options}
	if err := b.buildProcess(ih, entryPoint, 0); err != nil {
		return nil, err
	}

	if err := caex.AppendLibraries(root); err != nil {
		return nil, api.InternalServerError("%v", err)
	}

	return out, nil
}

// DocumentBuilder walks the process entries of one document.
type DocumentBuilder struct {
	doc     *fpd.Document
	options *Options
}

func (b *DocumentBuilder) buildProcess(parent *etree.Element, id string, depth int) error {
	if depth >= b.options.MaxDepth {
		return api.PreconditionFailed("process %s: decomposition deeper than %d levels", id, b.options.MaxDepth)
	}

	entry, ok := b.doc.Process(id)
	if !ok {
		return api.NotFound("process %s not found", id)
	}

	pb := NewProcessBuilder(parent, entry, b.options)
	pb.AppendSystemLimit()
	pb.AppendNodes()
	pb.AppendPorts()

	for _, node := range entry.Nodes() {
		if node.Kind != fpd.KindProcessOperator || node.DecomposedView == "" {
			continue
		}
		ie, ok := pb.Element(node.ID)
		if !ok {
			continue
		}
		if err := b.buildProcess(ie, node.DecomposedView, depth+1); err != nil {
			return err
		}
	}

	pb.AppendLinks()

	return nil
}

// ProcessBuilder emits one process container: the system limit, the node
// elements with their attribute blocks, one port per edge endpoint and the
// links pairing them.
type ProcessBuilder struct {
	entry     *fpd.ProcessEntry
	options   *Options
	container *etree.Element

	elements map[string]*etree.Element
	ports    *portNamer
	links    []*pendingLink
}

type pendingLink struct {
	flow string
	out  string
	in   string
}

func NewProcessBuilder(parent *etree.Element, entry *fpd.ProcessEntry, options *Options) *ProcessBuilder {
	container := caex.CreateInternalElement(parent,
		fpd.KindProcess.Name(),
		options.IDGenerator.Next(fpd.KindProcess.Name()),
		caex.ClassPath(fpd.KindProcess),
	)
	return &ProcessBuilder{
		entry:     entry,
		options:   options,
		container: container,
		elements:  map[string]*etree.Element{},
		ports:     newPortNamer(),
		links:     make([]*pendingLink, 0),
	}
}

// Element returns the tree element emitted for a node of this process.
func (p *ProcessBuilder) Element(id string) (*etree.Element, bool) {
	ie, ok := p.elements[id]
	return ie, ok
}

// AppendSystemLimit emits the boundary of the process as its first child. It
// only carries the visual block.
func (p *ProcessBuilder) AppendSystemLimit() {
	sl := p.entry.SystemLimit()
	if sl == nil {
		return
	}
	ie := p.appendElement(sl.Kind)
	caex.EncodeVisual(ie, p.bounds(sl.ID))
	p.elements[sl.ID] = ie
}

// AppendNodes emits every other node in input order.
func (p *ProcessBuilder) AppendNodes() {
	for _, node := range p.entry.Nodes() {
		ie := p.appendElement(node.Kind)
		caex.EncodeIdentification(ie, node.Identification)
		caex.EncodeCharacteristics(ie, node.Characteristics)
		caex.EncodeVisual(ie, p.bounds(node.ID))
		p.elements[node.ID] = ie
	}
}

func (p *ProcessBuilder) appendElement(kind fpd.Kind) *etree.Element {
	return caex.CreateInternalElement(p.container,
		kind.Name(),
		p.options.IDGenerator.Next(kind.Name()),
		caex.ClassPath(kind),
	)
}

func (p *ProcessBuilder) bounds(id string) *fpd.Bounds {
	v, ok := p.entry.Visual(id)
	if !ok {
		return nil
	}
	return v.Bounds
}

// AppendPorts emits, in edge order, the outgoing port of every edge on its
// source and the incoming port on its target.
func (p *ProcessBuilder) AppendPorts() {
	for _, flow := range p.entry.Flows() {
		classes := caex.PortClasses(flow.Kind)
		geo := newFlowGeometry(p.entry, flow.ID)

		link := &pendingLink{flow: flow.ID}
		if ie, ok := p.elements[flow.SourceRef]; ok {
			port := p.appendPort(ie, flow.SourceRef, classes.Source)
			caex.EncodeCoordinate(port, caex.BlockCoordinate, geo.source)
			caex.EncodeWaypoints(port, geo.interior)
			link.out = caex.ID(port)
		}
		if ie, ok := p.elements[flow.TargetRef]; ok {
			port := p.appendPort(ie, flow.TargetRef, classes.Target)
			caex.EncodeCoordinate(port, caex.BlockCoordinate, geo.target)
			link.in = caex.ID(port)
		}
		p.links = append(p.links, link)
	}
}

func (p *ProcessBuilder) appendPort(ie *etree.Element, owner, base string) *etree.Element {
	name := p.ports.next(owner, base)
	return caex.CreateExternalInterface(ie, name, p.options.IDGenerator.Next(base), caex.PortClassPath(base))
}

// AppendLinks emits one link per edge whose two ports exist, named Link,
// Link1, ... in edge order.
func (p *ProcessBuilder) AppendLinks() {
	i := 0
	for _, link := range p.links {
		if link.out == "" || link.in == "" {
			log.Debugf("process %s: edge %s has an unresolved endpoint, no link emitted", p.entry.Process.ID, link.flow)
			continue
		}
		caex.CreateInternalLink(p.container, caex.Suffixed("Link", i), link.out, link.in)
		i++
	}
}
