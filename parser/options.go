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

	"github.com/vine-io/fpdaml/idgen"
)

const (
	DefaultMaxDepth        = 64
	DefaultTargetNamespace = "http://www.hsu-ifa.de/fpdaml"
)

// Warning describes an irregularity of the input that was skipped instead of
// failing the conversion.
type Warning struct {
	// Process is the graph id of the process being parsed.
	Process string
	// Element is the tree ID (or name) of the offending element.
	Element string
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("process %s: %s: %s", w.Process, w.Element, w.Reason)
}

type Options struct {
	IDGenerator     idgen.Generator
	MaxDepth        int
	TargetNamespace string
	Warn            func(Warning)
}

// Option represents a configuration option for Parse.
type Option func(*Options)

func NewOptions(opts ...Option) *Options {
	var options Options
	for _, o := range opts {
		o(&options)
	}

	if options.IDGenerator == nil {
		options.IDGenerator = idgen.ShapeName()
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	if options.TargetNamespace == "" {
		options.TargetNamespace = DefaultTargetNamespace
	}

	return &options
}

// WithIDGenerator sets the source of graph ids for elements without an
// identity block and for every reconstructed edge.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(o *Options) {
		o.IDGenerator = gen
	}
}

// WithMaxDepth limits the number of nested process levels, the top level
// Process container included.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithTargetNamespace sets the project namespace used when the document
// header does not carry one.
func WithTargetNamespace(ns string) Option {
	return func(o *Options) {
		o.TargetNamespace = ns
	}
}

// WithWarnings registers a collector for skipped irregularities.
func WithWarnings(fn func(Warning)) Option {
	return func(o *Options) {
		o.Warn = fn
	}
}
