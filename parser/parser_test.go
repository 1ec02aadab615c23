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
	"strconv"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/caex"
	"github.com/vine-io/fpdaml/fpd"
	"github.com/vine-io/fpdaml/idgen"
)

type tree struct {
	doc  *etree.Document
	root *etree.Element
	ih   *etree.Element
	n    int
}

func newTree(info caex.SourceInfo) *tree {
	doc, root := caex.NewDocument("", info)
	ih := caex.CreateInstanceHierarchy(root, "Test", "")
	return &tree{doc: doc, root: root, ih: ih}
}

func (t *tree) id() string {
	t.n++
	return "tree-" + strconv.Itoa(t.n)
}

func (t *tree) process(parent *etree.Element) *etree.Element {
	return caex.CreateInternalElement(parent, "Process", t.id(), caex.ClassPath(fpd.KindProcess))
}

func (t *tree) node(parent *etree.Element, kind fpd.Kind, ident string) *etree.Element {
	ie := caex.CreateInternalElement(parent, kind.Name(), t.id(), caex.ClassPath(kind))
	if ident != "" {
		caex.EncodeIdentification(ie, &fpd.Identification{UniqueIdent: ident})
	}
	caex.EncodeVisual(ie, &fpd.Bounds{X: 1, Y: 2, Width: 3, Height: 4})
	return ie
}

func (t *tree) port(ie *etree.Element, class, id string, coord *fpd.Point, wps ...fpd.Point) *etree.Element {
	ei := caex.CreateExternalInterface(ie, class, id, caex.PortClassPath(class))
	caex.EncodeCoordinate(ei, caex.BlockCoordinate, coord)
	caex.EncodeWaypoints(ei, wps)
	return ei
}

func (t *tree) link(proc *etree.Element, a, b string) {
	caex.CreateInternalLink(proc, caex.Suffixed("Link", len(caex.InternalLinks(proc))), a, b)
}

func parse(t *testing.T, tr *tree, opts ...Option) *fpd.Document {
	opts = append([]Option{WithIDGenerator(idgen.Sequence())}, opts...)
	doc, err := Parse(tr.doc, opts...)
	require.NoError(t, err)
	return doc
}

func flowsOf(entry *fpd.ProcessEntry) map[string]*fpd.Flow {
	out := map[string]*fpd.Flow{}
	for _, f := range entry.Flows() {
		out[f.TargetRef] = f
	}
	return out
}

func TestParseSingleProcess(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	sl := caex.CreateInternalElement(proc, "SystemLimit", tr.id(), caex.ClassPath(fpd.KindSystemLimit))
	caex.EncodeVisual(sl, &fpd.Bounds{X: 10, Y: 10, Width: 500, Height: 300})
	product := tr.node(proc, fpd.KindProduct, "Product_a")
	op := tr.node(proc, fpd.KindProcessOperator, "ProcessOperator_a")
	tr.port(product, "FlowOut", "out", &fpd.Point{X: 25, Y: 50})
	tr.port(op, "FlowIn", "in", &fpd.Point{X: 25, Y: 120})
	tr.link(proc, "out", "in")

	doc := parse(t, tr)

	assert.Equal(t, "Test", doc.Project.Name)
	assert.Equal(t, DefaultTargetNamespace, doc.Project.TargetNamespace)
	root, ok := doc.Root()
	require.True(t, ok)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "", root.Process.DecomposedProcessOperator)
	assert.Equal(t, []string{"Product_a"}, root.Process.States)
	assert.Equal(t, []string{"ProcessOperator_a"}, root.Process.ProcessOperators)
	assert.Empty(t, root.Process.Processes)

	flows := root.Flows()
	require.Len(t, flows, 1)
	flow := flows[0]
	assert.Equal(t, fpd.KindFlow, flow.Kind)
	assert.Equal(t, "Product_a", flow.SourceRef)
	assert.Equal(t, "ProcessOperator_a", flow.TargetRef)
	assert.Nil(t, flow.InTandemWith)

	product2, _ := doc.Node("Product_a")
	assert.Equal(t, []string{"ProcessOperator_a"}, product2.IsAssignedTo)
	assert.Equal(t, []string{flow.ID}, product2.Outgoing)
	op2, _ := doc.Node("ProcessOperator_a")
	assert.Empty(t, op2.IsAssignedTo)
	assert.Equal(t, []string{flow.ID}, op2.Incoming)

	v, ok := doc.Visual(flow.ID)
	require.True(t, ok)
	require.Len(t, v.Waypoints, 2)
	for _, wp := range v.Waypoints {
		assert.NotNil(t, wp.Original)
	}
	assert.Equal(t, fpd.Point{X: 25, Y: 120}, v.Waypoints[1].Effective())

	limit := root.SystemLimit()
	require.NotNil(t, limit)
	assert.Equal(t, root.Process.SystemLimit, limit.ID)
	assert.Equal(t, []string{"Product_a", "ProcessOperator_a", flow.ID}, limit.ElementsContainer)
	lv, ok := doc.Visual(limit.ID)
	require.True(t, ok)
	assert.Equal(t, &fpd.Bounds{X: 10, Y: 10, Width: 500, Height: 300}, lv.Bounds)

	// system limit first, then nodes, then edges
	ids := make([]string, 0)
	for _, elem := range root.Elements {
		ids = append(ids, elem.GetID())
	}
	assert.Equal(t, []string{limit.ID, "Product_a", "ProcessOperator_a", flow.ID}, ids)
}

func TestParseAlternativeTandem(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	a := tr.node(proc, fpd.KindProduct, "a")
	b := tr.node(proc, fpd.KindProduct, "b")
	c := tr.node(proc, fpd.KindProduct, "c")
	d := tr.node(proc, fpd.KindEnergy, "d")

	tr.port(op, "AlternativeFlowOut", "o1", nil)
	tr.port(op, "AlternativeFlowOut", "o2", nil)
	tr.port(op, "FlowOut", "o3", nil)
	tr.port(op, "ParallelFlowOut", "o4", nil)
	tr.port(a, "AlternativeFlowIn", "i1", nil)
	tr.port(b, "AlternativeFlowIn", "i2", nil)
	tr.port(c, "FlowIn", "i3", nil)
	tr.port(d, "ParallelFlowIn", "i4", nil)
	tr.link(proc, "o1", "i1")
	tr.link(proc, "o2", "i2")
	tr.link(proc, "o3", "i3")
	tr.link(proc, "o4", "i4")

	doc := parse(t, tr)
	root, _ := doc.Root()
	flows := flowsOf(root)
	require.Len(t, flows, 4)

	assert.Equal(t, fpd.KindAlternativeFlow, flows["a"].Kind)
	assert.Equal(t, []string{flows["b"].ID}, flows["a"].InTandemWith)
	assert.Equal(t, []string{flows["a"].ID}, flows["b"].InTandemWith)
	assert.Nil(t, flows["c"].InTandemWith)
	// a parallel flow alone in its group has no tandem
	assert.Nil(t, flows["d"].InTandemWith)

	// edges without coordinates get no visual record
	_, ok := doc.Visual(flows["a"].ID)
	assert.False(t, ok)

	// operator to state edges assign the state
	na, _ := doc.Node("a")
	assert.Equal(t, []string{"op"}, na.IsAssignedTo)
	nop, _ := doc.Node("op")
	assert.Empty(t, nop.IsAssignedTo)
	assert.Len(t, nop.Outgoing, 4)
}

func TestParseNestedProcess(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	nested := tr.process(op)
	tr.node(nested, fpd.KindProduct, "inner")
	inner := tr.node(nested, fpd.KindProcessOperator, "inner_op")
	deeper := tr.process(inner)
	tr.node(deeper, fpd.KindInformation, "deepest")

	doc, linkage, err := ParseWithLinkage(tr.doc, WithIDGenerator(idgen.Sequence()))
	require.NoError(t, err)
	require.Len(t, doc.Entries, 3)

	nop, ok := doc.Node("op")
	require.True(t, ok)
	assert.Equal(t, "op", nop.DecomposedView)

	child, ok := doc.Process("op")
	require.True(t, ok)
	assert.Equal(t, "op", child.Process.DecomposedProcessOperator)
	assert.Equal(t, []string{"inner_op"}, child.Process.Processes)

	root, _ := doc.Root()
	assert.Equal(t, []string{"op"}, root.Process.Processes)
	assert.Equal(t, "", root.Process.DecomposedProcessOperator)

	assert.Equal(t, Linkage{"op": "op", "inner_op": "inner_op"}, linkage)
	assert.Equal(t, map[string]string(linkage), doc.Linkage())

	// three process levels
	_, _, err = ParseWithLinkage(tr.doc, WithMaxDepth(3))
	assert.NoError(t, err)
	_, _, err = ParseWithLinkage(tr.doc, WithMaxDepth(2))
	assert.True(t, api.IsCode(err, api.StatusPreconditionFiled), err)
}

func TestParseSharedUniqueIdent(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	steel := tr.node(proc, fpd.KindProduct, "steel")
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	tr.port(steel, "FlowOut", "out", nil)
	tr.port(op, "FlowIn", "in", nil)
	tr.link(proc, "out", "in")

	nested := tr.process(op)
	inner := tr.node(nested, fpd.KindProduct, "steel")
	innerOp := tr.node(nested, fpd.KindProcessOperator, "op_inner")
	tr.port(inner, "FlowOut", "inner_out", nil)
	tr.port(innerOp, "FlowIn", "inner_in", nil)
	tr.link(nested, "inner_out", "inner_in")

	warnings := make([]Warning, 0)
	doc := parse(t, tr, WithWarnings(func(w Warning) { warnings = append(warnings, w) }))
	require.Len(t, doc.Entries, 2)

	seen := map[string]int{}
	for _, entry := range doc.Entries {
		for _, elem := range entry.Elements {
			seen[elem.GetID()]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %s used %d times", id, n)
	}

	root, _ := doc.Root()
	assert.Equal(t, []string{"steel"}, root.Process.States)

	child, ok := doc.Process("op")
	require.True(t, ok)
	require.Len(t, child.Process.States, 1)
	renamed := child.Process.States[0]
	assert.NotEqual(t, "steel", renamed)

	// the identity block keeps the shared value
	n, ok := doc.Node(renamed)
	require.True(t, ok)
	assert.Equal(t, "steel", n.Identification.UniqueIdent)
	flows := child.Flows()
	require.Len(t, flows, 1)
	assert.Equal(t, renamed, flows[0].SourceRef)
	assert.Equal(t, []string{flows[0].ID}, n.Outgoing)

	require.Len(t, warnings, 1)
	assert.Equal(t, "op", warnings[0].Process)
}

func TestParseUsage(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	res := tr.node(proc, fpd.KindTechnicalResource, "res")
	tr.port(res, "UsageOut", "u1", nil)
	tr.port(op, "UsageIn", "u2", nil)
	tr.port(res, "UsageOut", "u3", nil)
	tr.port(op, "UsageIn", "u4", nil)
	tr.link(proc, "u1", "u2")
	tr.link(proc, "u3", "u4")

	doc := parse(t, tr)
	nop, _ := doc.Node("op")
	nres, _ := doc.Node("res")
	assert.Equal(t, []string{"res"}, nop.IsAssignedTo)
	assert.Equal(t, []string{"op"}, nres.IsAssignedTo)

	root, _ := doc.Root()
	for _, f := range root.Flows() {
		assert.Equal(t, fpd.KindUsage, f.Kind)
		assert.Nil(t, f.InTandemWith)
	}
}

func TestParseLinkSides(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	a := tr.node(proc, fpd.KindProduct, "a")
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	tr.port(a, "FlowOut", "out", &fpd.Point{X: 1, Y: 1}, fpd.Point{X: 2, Y: 2}, fpd.Point{X: 3, Y: 3})
	tr.port(op, "FlowIn", "in", &fpd.Point{X: 4, Y: 4})
	// partner sides swapped
	tr.link(proc, "in", "out")

	doc := parse(t, tr)
	root, _ := doc.Root()
	require.Len(t, root.Flows(), 1)
	flow := root.Flows()[0]
	assert.Equal(t, "a", flow.SourceRef)
	assert.Equal(t, "op", flow.TargetRef)

	v, ok := doc.Visual(flow.ID)
	require.True(t, ok)
	points := make([]fpd.Point, 0)
	for _, wp := range v.Waypoints {
		points = append(points, wp.Effective())
	}
	assert.Equal(t, []fpd.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}}, points)
	assert.Nil(t, v.Waypoints[1].Original)
	assert.NotNil(t, v.Waypoints[3].Original)
}

func TestParseWaypointOrder(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	a := tr.node(proc, fpd.KindProduct, "a")
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	out := tr.port(a, "FlowOut", "out", nil)
	for _, name := range []string{"Waypoint2", "Waypoint", "Waypoint10", "Waypoint1"} {
		i, _ := caex.SuffixIndex(caex.BlockWaypoint, name)
		caex.EncodeCoordinate(out, name, &fpd.Point{X: float64(i), Y: 0})
	}
	tr.port(op, "FlowIn", "in", nil)
	tr.link(proc, "out", "in")

	doc := parse(t, tr)
	root, _ := doc.Root()
	v, ok := doc.Visual(root.Flows()[0].ID)
	require.True(t, ok)
	xs := make([]float64, 0)
	for _, wp := range v.Waypoints {
		xs = append(xs, wp.X)
	}
	assert.Equal(t, []float64{0, 1, 2, 10}, xs)
}

func TestParseTolerated(t *testing.T) {
	tr := newTree(caex.SourceInfo{OriginURL: "urn:test"})
	proc := tr.process(tr.ih)
	a := tr.node(proc, fpd.KindProduct, "a")
	op := tr.node(proc, fpd.KindProcessOperator, "op")
	caex.CreateInternalElement(proc, "Robot", "robot", "AutomationMLSystemUnitClassLib/Robot")
	tr.node(proc, fpd.KindProduct, "a")
	tr.port(a, "FlowOut", "o1", nil)
	tr.port(a, "FlowOut", "o2", nil)
	tr.port(op, "FlowIn", "i1", nil)
	caex.CreateExternalInterface(op, "Signal", "sig", "AutomationMLInterfaceClassLib/Signal")
	tr.link(proc, "o1", "missing")
	tr.link(proc, "o1", "o2")
	tr.link(proc, "o2", "sig")
	tr.link(proc, "o2", "i1")

	warnings := make([]Warning, 0)
	doc := parse(t, tr, WithWarnings(func(w Warning) { warnings = append(warnings, w) }))

	assert.Equal(t, "urn:test", doc.Project.TargetNamespace)
	root, _ := doc.Root()
	assert.Len(t, root.Nodes(), 3)
	assert.Len(t, root.Flows(), 1)
	assert.Nil(t, root.SystemLimit())
	assert.Equal(t, "", root.Process.SystemLimit)

	reasons := make([]string, 0)
	for _, w := range warnings {
		assert.Equal(t, root.Process.ID, w.Process)
		reasons = append(reasons, w.Reason)
	}
	assert.Len(t, reasons, 6)
	assert.Contains(t, reasons, `unknown class "AutomationMLSystemUnitClassLib/Robot"`)
	assert.Contains(t, reasons, `duplicate unique identifier "a"`)
	assert.Contains(t, reasons, `unknown interface class "AutomationMLInterfaceClassLib/Signal"`)
	assert.Contains(t, reasons, "both sides are out ports")
}

func TestParseGeneratedIDs(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.process(tr.ih)
	tr.node(proc, fpd.KindProduct, "")
	tr.node(proc, fpd.KindProduct, "")

	doc := parse(t, tr)
	assert.Equal(t, "Process_1", doc.Project.EntryPoint)
	root, _ := doc.Root()
	assert.Equal(t, []string{"Product_2", "Product_3"}, root.Process.States)
	for _, n := range root.Nodes() {
		assert.Nil(t, n.Identification)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(nil)
	assert.True(t, api.IsCode(err, api.StatusBadRequest))

	_, err = Parse(etree.NewDocument())
	assert.True(t, api.IsCode(err, api.StatusBadRequest))

	doc, _ := caex.NewDocument("", caex.SourceInfo{})
	_, err = Parse(doc)
	assert.True(t, api.IsCode(err, api.StatusBadRequest))
	assert.ErrorContains(t, err, "missing InstanceHierarchy")

	tr := newTree(caex.SourceInfo{})
	tr.node(tr.ih, fpd.KindProduct, "a")
	_, err = Parse(tr.doc)
	assert.True(t, api.IsCode(err, api.StatusBadRequest))
	assert.ErrorContains(t, err, "no top level Process")
}

func TestParseUntypedProcess(t *testing.T) {
	tr := newTree(caex.SourceInfo{})
	proc := tr.ih.CreateElement(caex.TagInternalElement)
	proc.CreateAttr(caex.AttrName, "Process")
	proc.CreateAttr(caex.AttrID, "untyped")
	tr.node(proc, fpd.KindProduct, "a")

	doc := parse(t, tr)
	root, _ := doc.Root()
	assert.Equal(t, []string{"a"}, root.Process.States)
}
