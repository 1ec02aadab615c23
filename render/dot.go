// Package render draws graph form documents with Graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/fpd"
)

type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat resolves a format name given on the command line.
func ParseFormat(text string) (Format, error) {
	switch f := Format(strings.ToLower(text)); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", api.BadRequest("unsupported render format %q", text)
	}
}

var nodeShapes = map[fpd.Kind]string{
	fpd.KindProduct:           `shape=circle, style=filled, fillcolor="#f4cccc"`,
	fpd.KindEnergy:            `shape=diamond, style=filled, fillcolor="#d9ead3"`,
	fpd.KindInformation:       `shape=hexagon, style=filled, fillcolor="#cfe2f3"`,
	fpd.KindProcessOperator:   `shape=box, style=filled, fillcolor="#fff2cc"`,
	fpd.KindTechnicalResource: `shape=box, style="rounded,filled", fillcolor="#d9d9d9"`,
}

var edgeStyles = map[fpd.Kind]string{
	fpd.KindFlow:            "style=solid",
	fpd.KindParallelFlow:    "style=bold",
	fpd.KindAlternativeFlow: "style=dotted",
	fpd.KindUsage:           "style=dashed, arrowhead=none",
}

// ToDOT converts doc to Graphviz DOT. Every process becomes a cluster labeled
// by its id, and a decomposed operator points at its process cluster.
func ToDOT(doc *fpd.Document) string {
	var buf bytes.Buffer
	buf.WriteString("digraph FPD {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [fontsize=12];\n")

	name := ""
	if doc.Project != nil {
		name = doc.Project.Name
	}
	fmt.Fprintf(&buf, "  label=%q;\n", name)

	for i, entry := range doc.Entries {
		if entry.Process == nil {
			continue
		}
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", entry.Process.ID)
		buf.WriteString("    style=dashed;\n")
		for _, n := range entry.Nodes() {
			fmt.Fprintf(&buf, "    %q [label=%q, %s];\n", n.ID, nodeLabel(n), nodeShapes[n.Kind])
		}
		for _, f := range entry.Flows() {
			fmt.Fprintf(&buf, "    %q -> %q [%s];\n", f.SourceRef, f.TargetRef, edgeStyles[f.Kind])
		}
		buf.WriteString("  }\n")
	}

	// decomposition links go to the first node of the nested cluster
	for i, entry := range doc.Entries {
		if entry.Process == nil || entry.Process.DecomposedProcessOperator == "" {
			continue
		}
		nodes := entry.Nodes()
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=dotted, arrowhead=empty, lhead=\"cluster_%d\"];\n",
			entry.Process.DecomposedProcessOperator, nodes[0].ID, i)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n *fpd.Node) string {
	if n.Identification != nil {
		switch {
		case n.Identification.ShortName != "":
			return n.Identification.ShortName
		case n.Identification.LongName != "":
			return n.Identification.LongName
		}
	}
	return n.ID
}

// Render lays out dot with Graphviz and encodes it as format. FormatDOT
// returns dot unchanged.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gf graphviz.Format
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		gf = graphviz.SVG
	case FormatPNG:
		gf = graphviz.PNG
	default:
		return nil, api.BadRequest("unsupported render format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gf, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders a DOT graph to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, FormatSVG)
}
