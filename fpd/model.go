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

package fpd

// Element is a record of a process entry's elementDataInformation: a Node or a Flow.
type Element interface {
	GetKind() Kind
	GetID() string
}

var (
	_ Element = (*Node)(nil)
	_ Element = (*Flow)(nil)
)

// Project is the document header.
type Project struct {
	Name            string
	TargetNamespace string
	EntryPoint      string
}

// Process describes one (possibly decomposed) process. Empty strings stand for
// absent references.
type Process struct {
	ID                        string
	DecomposedProcessOperator string
	States                    []string
	SystemLimit               string
	ProcessOperators          []string
	Processes                 []string
}

type Identification struct {
	UniqueIdent    string `json:"uniqueIdent,omitempty"`
	LongName       string `json:"longName,omitempty"`
	ShortName      string `json:"shortName,omitempty"`
	VersionNumber  string `json:"versionNumber,omitempty"`
	RevisionNumber string `json:"revisionNumber,omitempty"`
}

// IsZero reports whether no field is set.
func (i *Identification) IsZero() bool {
	return i == nil || *i == Identification{}
}

type DescriptiveElement struct {
	ValueDeterminationProcess string `json:"valueDeterminationProcess,omitempty"`
	Representivity            string `json:"representivity,omitempty"`
	SetpointValue             string `json:"setpointValue,omitempty"`
	ValidityLimits            string `json:"validityLimits,omitempty"`
	ActualValues              string `json:"actualValues,omitempty"`
}

type RelationalElement struct {
	View                               string `json:"view,omitempty"`
	Model                              string `json:"model,omitempty"`
	RegulationsForRelationalGeneration string `json:"regulationsForRelationalGeneration,omitempty"`
}

// Characteristic is one entry of a node's characteristics list; each of its
// three blocks is optional.
type Characteristic struct {
	Category           *Identification     `json:"category,omitempty"`
	DescriptiveElement *DescriptiveElement `json:"descriptiveElement,omitempty"`
	RelationalElement  *RelationalElement  `json:"relationalElement,omitempty"`
}

// Node is a state, process operator, technical resource or system limit.
type Node struct {
	Kind            Kind
	ID              string
	Identification  *Identification
	Characteristics []*Characteristic
	Incoming        []string
	Outgoing        []string
	IsAssignedTo    []string

	// DecomposedView is set on process operators only.
	DecomposedView string
	// ElementsContainer is set on system limits only.
	ElementsContainer []string
}

func (n *Node) GetKind() Kind { return n.Kind }

func (n *Node) GetID() string { return n.ID }

// Flow is a typed directed edge.
type Flow struct {
	Kind         Kind
	ID           string
	SourceRef    string
	TargetRef    string
	InTandemWith []string
}

func (f *Flow) GetKind() Kind { return f.Kind }

func (f *Flow) GetID() string { return f.ID }

type Bounds struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Point is an edge waypoint. Original, when set, is the docking point the
// modeler recorded before cropping the edge at the shape border.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Original *Point  `json:"original,omitempty"`
}

// Effective returns the original docking point if present, else the point itself.
func (p *Point) Effective() Point {
	if p.Original != nil {
		return Point{X: p.Original.X, Y: p.Original.Y}
	}
	return Point{X: p.X, Y: p.Y}
}

// Visual is an elementVisualInformation record: Bounds for nodes, Waypoints for flows.
type Visual struct {
	ID        string
	Kind      Kind
	Bounds    *Bounds
	Waypoints []*Point
}

// ProcessEntry groups a process with the elements and visuals scoped to it.
type ProcessEntry struct {
	Process  *Process
	Elements []Element
	Visuals  []*Visual
}

// Nodes returns the entry's nodes in input order, system limit excluded.
func (e *ProcessEntry) Nodes() []*Node {
	out := make([]*Node, 0, len(e.Elements))
	for _, elem := range e.Elements {
		if n, ok := elem.(*Node); ok && n.Kind != KindSystemLimit {
			out = append(out, n)
		}
	}
	return out
}

// Flows returns the entry's edges in input order.
func (e *ProcessEntry) Flows() []*Flow {
	out := make([]*Flow, 0)
	for _, elem := range e.Elements {
		if f, ok := elem.(*Flow); ok {
			out = append(out, f)
		}
	}
	return out
}

// SystemLimit returns the entry's boundary node, or nil.
func (e *ProcessEntry) SystemLimit() *Node {
	for _, elem := range e.Elements {
		if n, ok := elem.(*Node); ok && n.Kind == KindSystemLimit {
			return n
		}
	}
	return nil
}

// Visual returns the visual record with the given id inside this entry.
func (e *ProcessEntry) Visual(id string) (*Visual, bool) {
	for _, v := range e.Visuals {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}
