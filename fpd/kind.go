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

import "strings"

// Kind tags every record of the graph form.
type Kind int32

const (
	KindProject Kind = iota + 1
	KindProcess
	KindProduct
	KindEnergy
	KindInformation
	KindProcessOperator
	KindTechnicalResource
	KindSystemLimit
	KindFlow
	KindParallelFlow
	KindAlternativeFlow
	KindUsage
)

// TypePrefix is the namespace prefix of every "$type" value.
const TypePrefix = "fpb:"

var kindNames = map[Kind]string{
	KindProject:           "Project",
	KindProcess:           "Process",
	KindProduct:           "Product",
	KindEnergy:            "Energy",
	KindInformation:       "Information",
	KindProcessOperator:   "ProcessOperator",
	KindTechnicalResource: "TechnicalResource",
	KindSystemLimit:       "SystemLimit",
	KindFlow:              "Flow",
	KindParallelFlow:      "ParallelFlow",
	KindAlternativeFlow:   "AlternativeFlow",
	KindUsage:             "Usage",
}

var kindsByType = func() map[string]Kind {
	out := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		out[TypePrefix+name] = k
	}
	return out
}()

// Name returns the bare kind name, e.g. "Product".
func (k Kind) Name() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// String returns the "$type" form, e.g. "fpb:Product".
func (k Kind) String() string {
	return TypePrefix + k.Name()
}

// ParseKind resolves a "$type" value. The "fpb:" prefix is optional.
func ParseKind(text string) (Kind, bool) {
	if !strings.HasPrefix(text, TypePrefix) {
		text = TypePrefix + text
	}
	k, ok := kindsByType[text]
	return k, ok
}

func (k Kind) IsState() bool {
	switch k {
	case KindProduct, KindEnergy, KindInformation:
		return true
	default:
		return false
	}
}

// IsNode reports whether k is one of the six element kinds.
func (k Kind) IsNode() bool {
	switch k {
	case KindProduct, KindEnergy, KindInformation, KindProcessOperator,
		KindTechnicalResource, KindSystemLimit:
		return true
	default:
		return false
	}
}

// IsFlow reports whether k is one of the four edge kinds.
func (k Kind) IsFlow() bool {
	switch k {
	case KindFlow, KindParallelFlow, KindAlternativeFlow, KindUsage:
		return true
	default:
		return false
	}
}

// IsTandem reports whether edges of kind k are grouped by shared source.
func (k Kind) IsTandem() bool {
	return k == KindParallelFlow || k == KindAlternativeFlow
}

// NodeKinds lists the element kinds in declaration order.
func NodeKinds() []Kind {
	return []Kind{KindProduct, KindEnergy, KindInformation, KindProcessOperator,
		KindTechnicalResource, KindSystemLimit}
}

// FlowKinds lists the edge kinds in declaration order.
func FlowKinds() []Kind {
	return []Kind{KindFlow, KindParallelFlow, KindAlternativeFlow, KindUsage}
}
