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

import (
	"fmt"

	json "github.com/json-iterator/go"
)

var serdes = func() map[Kind]Serde {
	out := map[Kind]Serde{}
	for _, k := range NodeKinds() {
		out[k] = &nodeSerde{}
	}
	out[KindSystemLimit] = &systemLimitSerde{}
	for _, k := range FlowKinds() {
		out[k] = &flowSerde{}
	}
	return out
}()

// Serde converts one kind of Element to and from its JSON record.
type Serde interface {
	Serialize(elem Element) (any, error)
	Deserialize(kind Kind, data []byte) (Element, error)
}

func serializeElement(elem Element) (any, error) {
	serde, ok := serdes[elem.GetKind()]
	if !ok {
		return nil, fmt.Errorf("%s not support to serialize", elem.GetKind())
	}
	return serde.Serialize(elem)
}

func deserializeElement(data []byte) (Element, error) {
	typ := json.Get(data, "$type").ToString()
	kind, ok := ParseKind(typ)
	if !ok {
		return nil, fmt.Errorf("%q not support to deserialize", typ)
	}
	serde, ok := serdes[kind]
	if !ok {
		return nil, fmt.Errorf("%s not support to deserialize", kind)
	}
	return serde.Deserialize(kind, data)
}

type wireProject struct {
	Type            string `json:"$type"`
	Name            string `json:"name"`
	TargetNamespace string `json:"targetNamespace"`
	EntryPoint      string `json:"entryPoint"`
}

type wireProcess struct {
	Type                        string   `json:"$type"`
	ID                          string   `json:"id"`
	IsDecomposedProcessOperator *string  `json:"isDecomposedProcessOperator"`
	ConsistsOfStates            []string `json:"consistsOfStates"`
	ConsistsOfSystemLimit       *string  `json:"consistsOfSystemLimit"`
	ConsistsOfProcessOperator   []string `json:"consistsOfProcessOperator"`
	ConsistsOfProcesses         []string `json:"consistsOfProcesses"`
}

type wireEntry struct {
	Process  *wireProcess      `json:"process"`
	Elements []json.RawMessage `json:"elementDataInformation"`
	Visuals  []*wireVisual     `json:"elementVisualInformation"`
}

type wireEntryOut struct {
	Process  *wireProcess  `json:"process"`
	Elements []any         `json:"elementDataInformation"`
	Visuals  []*wireVisual `json:"elementVisualInformation"`
}

type wireNode struct {
	Type            string            `json:"$type"`
	ID              string            `json:"id"`
	Identification  *Identification   `json:"identification,omitempty"`
	Characteristics []*Characteristic `json:"characteristics,omitempty"`
	Incoming        []string          `json:"incoming"`
	Outgoing        []string          `json:"outgoing"`
	IsAssignedTo    []string          `json:"isAssignedTo"`
	DecomposedView  *string           `json:"decomposedView,omitempty"`
}

type wireSystemLimit struct {
	Type              string            `json:"$type"`
	ID                string            `json:"id"`
	Identification    *Identification   `json:"identification,omitempty"`
	Characteristics   []*Characteristic `json:"characteristics,omitempty"`
	ElementsContainer []string          `json:"elementsContainer"`
}

type wireFlow struct {
	Type         string   `json:"$type"`
	ID           string   `json:"id"`
	SourceRef    string   `json:"sourceRef"`
	TargetRef    string   `json:"targetRef"`
	InTandemWith []string `json:"inTandemWith,omitempty"`
}

type wireVisual struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	Waypoints []*Point `json:"waypoints,omitempty"`
}

type nodeSerde struct{}

func (s *nodeSerde) Serialize(elem Element) (any, error) {
	node, ok := elem.(*Node)
	if !ok {
		return nil, fmt.Errorf("%v is not Node", elem)
	}
	w := &wireNode{
		Type:            node.Kind.String(),
		ID:              node.ID,
		Identification:  node.Identification,
		Characteristics: node.Characteristics,
		Incoming:        nonNil(node.Incoming),
		Outgoing:        nonNil(node.Outgoing),
		IsAssignedTo:    nonNil(node.IsAssignedTo),
	}
	if node.DecomposedView != "" {
		view := node.DecomposedView
		w.DecomposedView = &view
	}
	return w, nil
}

func (s *nodeSerde) Deserialize(kind Kind, data []byte) (Element, error) {
	w := &wireNode{}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	node := &Node{
		Kind:            kind,
		ID:              w.ID,
		Identification:  w.Identification,
		Characteristics: w.Characteristics,
		Incoming:        w.Incoming,
		Outgoing:        w.Outgoing,
		IsAssignedTo:    w.IsAssignedTo,
	}
	if w.DecomposedView != nil {
		node.DecomposedView = *w.DecomposedView
	}
	return node, nil
}

type systemLimitSerde struct{}

func (s *systemLimitSerde) Serialize(elem Element) (any, error) {
	node, ok := elem.(*Node)
	if !ok || node.Kind != KindSystemLimit {
		return nil, fmt.Errorf("%v is not SystemLimit", elem)
	}
	return &wireSystemLimit{
		Type:              node.Kind.String(),
		ID:                node.ID,
		Identification:    node.Identification,
		Characteristics:   node.Characteristics,
		ElementsContainer: nonNil(node.ElementsContainer),
	}, nil
}

func (s *systemLimitSerde) Deserialize(kind Kind, data []byte) (Element, error) {
	w := &wireSystemLimit{}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return &Node{
		Kind:              kind,
		ID:                w.ID,
		Identification:    w.Identification,
		Characteristics:   w.Characteristics,
		ElementsContainer: w.ElementsContainer,
	}, nil
}

type flowSerde struct{}

func (s *flowSerde) Serialize(elem Element) (any, error) {
	flow, ok := elem.(*Flow)
	if !ok {
		return nil, fmt.Errorf("%v is not Flow", elem)
	}
	w := &wireFlow{
		Type:      flow.Kind.String(),
		ID:        flow.ID,
		SourceRef: flow.SourceRef,
		TargetRef: flow.TargetRef,
	}
	if flow.Kind.IsTandem() && len(flow.InTandemWith) > 0 {
		w.InTandemWith = flow.InTandemWith
	}
	return w, nil
}

func (s *flowSerde) Deserialize(kind Kind, data []byte) (Element, error) {
	w := &wireFlow{}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return &Flow{
		Kind:         kind,
		ID:           w.ID,
		SourceRef:    w.SourceRef,
		TargetRef:    w.TargetRef,
		InTandemWith: w.InTandemWith,
	}, nil
}

// Unmarshal decodes a graph-form JSON array. Records are recognised by shape:
// the "fpb:Project" header and process entries carrying a "process" member.
func Unmarshal(data []byte) (*Document, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode fpd document: %w", err)
	}

	var project *Project
	entries := make([]*ProcessEntry, 0, len(records))
	for i, raw := range records {
		if json.Get(raw, "$type").ToString() == KindProject.String() {
			w := &wireProject{}
			if err := json.Unmarshal(raw, w); err != nil {
				return nil, fmt.Errorf("decode project header: %w", err)
			}
			project = &Project{Name: w.Name, TargetNamespace: w.TargetNamespace, EntryPoint: w.EntryPoint}
			continue
		}

		if json.Get(raw, "process").ValueType() != json.ObjectValue {
			return nil, fmt.Errorf("record %d is neither project header nor process entry", i)
		}
		entry, err := decodeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	if project == nil {
		return nil, fmt.Errorf("missing %s header", KindProject)
	}

	doc := NewDocument(project)
	for _, entry := range entries {
		doc.AddEntry(entry)
	}
	return doc, nil
}

func decodeEntry(raw []byte) (*ProcessEntry, error) {
	w := &wireEntry{}
	if err := json.Unmarshal(raw, w); err != nil {
		return nil, fmt.Errorf("decode process entry: %w", err)
	}

	entry := &ProcessEntry{
		Process: &Process{
			ID:               w.Process.ID,
			States:           w.Process.ConsistsOfStates,
			ProcessOperators: w.Process.ConsistsOfProcessOperator,
			Processes:        w.Process.ConsistsOfProcesses,
		},
		Elements: make([]Element, 0, len(w.Elements)),
		Visuals:  make([]*Visual, 0, len(w.Visuals)),
	}
	if w.Process.IsDecomposedProcessOperator != nil {
		entry.Process.DecomposedProcessOperator = *w.Process.IsDecomposedProcessOperator
	}
	if w.Process.ConsistsOfSystemLimit != nil {
		entry.Process.SystemLimit = *w.Process.ConsistsOfSystemLimit
	}

	for _, raw := range w.Elements {
		elem, err := deserializeElement(raw)
		if err != nil {
			return nil, err
		}
		entry.Elements = append(entry.Elements, elem)
	}

	for _, v := range w.Visuals {
		visual := &Visual{ID: v.ID}
		visual.Kind, _ = ParseKind(v.Type)
		if len(v.Waypoints) > 0 {
			visual.Waypoints = v.Waypoints
		} else if v.X != nil || v.Y != nil || v.Width != nil || v.Height != nil {
			visual.Bounds = &Bounds{X: deref(v.X), Y: deref(v.Y), Width: deref(v.Width), Height: deref(v.Height)}
		}
		entry.Visuals = append(entry.Visuals, visual)
	}

	return entry, nil
}

// Marshal encodes doc as a header-first JSON array.
func Marshal(doc *Document) ([]byte, error) {
	records, err := encodeRecords(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(doc *Document, prefix, indent string) ([]byte, error) {
	records, err := encodeRecords(doc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(records, prefix, indent)
}

func encodeRecords(doc *Document) ([]any, error) {
	if doc.Project == nil {
		return nil, fmt.Errorf("missing %s header", KindProject)
	}

	records := make([]any, 0, len(doc.Entries)+1)
	records = append(records, &wireProject{
		Type:            KindProject.String(),
		Name:            doc.Project.Name,
		TargetNamespace: doc.Project.TargetNamespace,
		EntryPoint:      doc.Project.EntryPoint,
	})

	for _, entry := range doc.Entries {
		p := entry.Process
		out := &wireEntryOut{
			Process: &wireProcess{
				Type:                        KindProcess.String(),
				ID:                          p.ID,
				IsDecomposedProcessOperator: optional(p.DecomposedProcessOperator),
				ConsistsOfStates:            nonNil(p.States),
				ConsistsOfSystemLimit:       optional(p.SystemLimit),
				ConsistsOfProcessOperator:   nonNil(p.ProcessOperators),
				ConsistsOfProcesses:         nonNil(p.Processes),
			},
			Elements: make([]any, 0, len(entry.Elements)),
			Visuals:  make([]*wireVisual, 0, len(entry.Visuals)),
		}
		for _, elem := range entry.Elements {
			v, err := serializeElement(elem)
			if err != nil {
				return nil, err
			}
			out.Elements = append(out.Elements, v)
		}
		for _, v := range entry.Visuals {
			w := &wireVisual{ID: v.ID, Type: v.Kind.String()}
			if b := v.Bounds; b != nil {
				w.X, w.Y, w.Width, w.Height = &b.X, &b.Y, &b.Width, &b.Height
			}
			w.Waypoints = v.Waypoints
			out.Visuals = append(out.Visuals, w)
		}
		records = append(records, out)
	}

	return records, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
