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

// Package idgen supplies identifiers for synthesized tree nodes, ports, links
// and graph elements. Uniqueness within one document is the only contract.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/vine-io/pkg/xname"
	"go.uber.org/atomic"
)

// Generator returns a new identifier. The prefix names the kind of object the
// identifier is for; implementations may ignore it.
type Generator interface {
	Next(prefix string) string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(prefix string) string

func (f GeneratorFunc) Next(prefix string) string {
	return f(prefix)
}

// UUID generates random RFC 4122 identifiers, the form CAEX documents use for
// element, interface and link IDs.
func UUID() Generator {
	return GeneratorFunc(func(string) string {
		return uuid.New().String()
	})
}

// ShapeName generates modeler style identifiers such as "Flow_k2j4h1a".
func ShapeName() Generator {
	return GeneratorFunc(func(prefix string) string {
		if prefix == "" {
			return randName()
		}
		return prefix + "_" + randName()
	})
}

func randName() string {
	return xname.Gen(xname.C(7), xname.Lowercase(), xname.Digit())
}

// Sequence generates "<prefix>_<n>" with n counting up from 1 across all
// prefixes. Intended for tests that need stable identifiers.
func Sequence() Generator {
	return &sequence{}
}

type sequence struct {
	n atomic.Int64
}

func (s *sequence) Next(prefix string) string {
	n := s.n.Inc()
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "_" + strconv.FormatInt(n, 10)
}
