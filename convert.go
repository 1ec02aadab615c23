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

// Package fpdaml converts formalized process descriptions between their
// graph form (VDI 3682 JSON) and their tree form (AutomationML / CAEX 3.0).
package fpdaml

import (
	"time"

	"github.com/beevik/etree"
	log "github.com/vine-io/vine/lib/logger"

	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/builder"
	"github.com/vine-io/fpdaml/fpd"
	"github.com/vine-io/fpdaml/parser"
)

// Direction names one of the two conversions.
type Direction string

const (
	DirectionToAML Direction = "aml"
	DirectionToFPD Direction = "fpd"
)

// ToAML validates doc and builds its tree form.
func ToAML(doc *fpd.Document, opts ...builder.Option) (*etree.Document, error) {
	if doc == nil {
		return nil, api.BadRequest("empty document")
	}
	if err := doc.Validate(); err != nil {
		return nil, api.BadRequest("invalid graph document: %v", err)
	}

	start := time.Now()
	tree, err := builder.Build(doc, opts...)
	if err != nil {
		log.Errorf("build %s: %v", doc.Project.Name, err)
		return nil, err
	}
	log.Debugf("project %s converted to tree form in %v", doc.Project.Name, time.Since(start))

	return tree, nil
}

// ToFPD reconstructs the graph form of tree.
func ToFPD(tree *etree.Document, opts ...parser.Option) (*fpd.Document, error) {
	start := time.Now()
	doc, err := parser.Parse(tree, opts...)
	if err != nil {
		log.Errorf("parse tree: %v", err)
		return nil, err
	}
	log.Debugf("project %s converted to graph form in %v", doc.Project.Name, time.Since(start))

	return doc, nil
}

// ConvertFPD turns graph form JSON into indented CAEX XML.
func ConvertFPD(data []byte, opts ...builder.Option) ([]byte, error) {
	doc, err := fpd.Unmarshal(data)
	if err != nil {
		return nil, api.BadRequest("%v", err)
	}

	tree, err := ToAML(doc, opts...)
	if err != nil {
		return nil, err
	}
	tree.Indent(2)

	out, err := tree.WriteToBytes()
	if err != nil {
		return nil, api.InternalServerError("write tree form: %v", err)
	}
	return out, nil
}

// ConvertAML turns CAEX XML into indented graph form JSON.
func ConvertAML(data []byte, opts ...parser.Option) ([]byte, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, api.BadRequest("decode tree form: %v", err)
	}

	doc, err := ToFPD(tree, opts...)
	if err != nil {
		return nil, err
	}

	out, err := fpd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, api.InternalServerError("write graph form: %v", err)
	}
	return out, nil
}
