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
	"github.com/tidwall/btree"
)

// Document is the whole graph form: one Project header plus process entries.
// Entries keep their input order; lookups go through ordered indexes that
// AddEntry maintains.
type Document struct {
	Project *Project
	Entries []*ProcessEntry

	processes *btree.Map[string, *ProcessEntry]
	elements  *btree.Map[string, Element]
	visuals   *btree.Map[string, *Visual]
}

func NewDocument(project *Project) *Document {
	return &Document{
		Project:   project,
		Entries:   make([]*ProcessEntry, 0),
		processes: &btree.Map[string, *ProcessEntry]{},
		elements:  &btree.Map[string, Element]{},
		visuals:   &btree.Map[string, *Visual]{},
	}
}

// AddEntry appends entry and indexes its process, elements and visuals.
func (d *Document) AddEntry(entry *ProcessEntry) {
	d.Entries = append(d.Entries, entry)
	d.index(entry)
}

// Reindex rebuilds the lookup indexes from Entries. Call it after mutating
// Entries directly.
func (d *Document) Reindex() {
	d.processes = &btree.Map[string, *ProcessEntry]{}
	d.elements = &btree.Map[string, Element]{}
	d.visuals = &btree.Map[string, *Visual]{}
	for _, entry := range d.Entries {
		d.index(entry)
	}
}

func (d *Document) index(entry *ProcessEntry) {
	if d.processes == nil {
		d.Reindex()
		return
	}
	if entry.Process != nil {
		d.processes.Set(entry.Process.ID, entry)
	}
	for _, elem := range entry.Elements {
		d.elements.Set(elem.GetID(), elem)
	}
	for _, v := range entry.Visuals {
		d.visuals.Set(v.ID, v)
	}
}

// Process returns the entry whose process has the given id.
func (d *Document) Process(id string) (*ProcessEntry, bool) {
	if d.processes == nil {
		d.Reindex()
	}
	return d.processes.Get(id)
}

// Element returns the node or flow with the given id, in any process.
func (d *Document) Element(id string) (Element, bool) {
	if d.elements == nil {
		d.Reindex()
	}
	return d.elements.Get(id)
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (*Node, bool) {
	elem, ok := d.Element(id)
	if !ok {
		return nil, false
	}
	n, ok := elem.(*Node)
	return n, ok
}

// Visual returns the visual record with the given id.
func (d *Document) Visual(id string) (*Visual, bool) {
	if d.visuals == nil {
		d.Reindex()
	}
	return d.visuals.Get(id)
}

// Root returns the entry named by the project's entry point.
func (d *Document) Root() (*ProcessEntry, bool) {
	if d.Project == nil {
		return nil, false
	}
	return d.Process(d.Project.EntryPoint)
}

// Linkage returns the {processId -> parentOperatorId} table of every
// decomposed process in the document.
func (d *Document) Linkage() map[string]string {
	out := make(map[string]string)
	for _, entry := range d.Entries {
		if entry.Process != nil && entry.Process.DecomposedProcessOperator != "" {
			out[entry.Process.ID] = entry.Process.DecomposedProcessOperator
		}
	}
	return out
}
