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

package caex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vine-io/fpdaml/fpd"
)

const (
	SystemUnitClassLib = "VDI3682SystemUnitClassLib"
	InterfaceClassLib  = "VDI3682InterfaceClassLib"
	AttributeTypeLib   = "VDI3682AttributeTypeLib"
)

// Attribute block names shared by the codec and the static library.
const (
	BlockIdentification     = "Identification"
	BlockCharacteristics    = "Characteristics"
	BlockCharacteristic     = "Characteristic"
	BlockCategory           = "Category"
	BlockDescriptiveElement = "DescriptiveElement"
	BlockRelationalElement  = "RelationalElement"
	BlockVisualInformation  = "VisualInformation"
	BlockCoordinate         = "Coordinate"
	BlockPosition           = "Position"
	BlockWaypoint           = "Waypoint"
)

// Direction tags a port as the source (Out) or target (In) side of an edge.
type Direction int32

const (
	DirectionOut Direction = iota + 1
	DirectionIn
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	default:
		return "unknown"
	}
}

// Ports holds the base interface class names for both ends of an edge kind.
type Ports struct {
	Source string
	Target string
}

// ClassPath returns the system unit class path of a node kind or of the
// Process container.
func ClassPath(kind fpd.Kind) string {
	switch kind {
	case fpd.KindProcess, fpd.KindProduct, fpd.KindEnergy, fpd.KindInformation,
		fpd.KindProcessOperator, fpd.KindTechnicalResource, fpd.KindSystemLimit:
		return SystemUnitClassLib + "/" + kind.Name()
	default:
		panic(fmt.Sprintf("caex: no system unit class for %s", kind))
	}
}

var kindsByClassPath = func() map[string]fpd.Kind {
	out := map[string]fpd.Kind{
		ClassPath(fpd.KindProcess): fpd.KindProcess,
	}
	for _, k := range fpd.NodeKinds() {
		out[ClassPath(k)] = k
	}
	return out
}()

// KindByClassPath is the inverse of ClassPath.
func KindByClassPath(path string) (fpd.Kind, bool) {
	k, ok := kindsByClassPath[path]
	return k, ok
}

// PortClasses returns the base interface class names used for the source and
// target ports of an edge kind.
func PortClasses(kind fpd.Kind) Ports {
	switch kind {
	case fpd.KindFlow, fpd.KindParallelFlow, fpd.KindAlternativeFlow, fpd.KindUsage:
		return Ports{Source: kind.Name() + "Out", Target: kind.Name() + "In"}
	default:
		panic(fmt.Sprintf("caex: no interface classes for %s", kind))
	}
}

// PortClassPath qualifies a base interface class name with its library.
func PortClassPath(base string) string {
	return InterfaceClassLib + "/" + base
}

type portClass struct {
	kind      fpd.Kind
	direction Direction
}

var portClasses = func() map[string]portClass {
	out := map[string]portClass{}
	for _, k := range fpd.FlowKinds() {
		ports := PortClasses(k)
		out[PortClassPath(ports.Source)] = portClass{kind: k, direction: DirectionOut}
		out[PortClassPath(ports.Target)] = portClass{kind: k, direction: DirectionIn}
	}
	return out
}()

// PortKind resolves an interface class path to its edge kind and direction.
func PortKind(classPath string) (fpd.Kind, Direction, bool) {
	pc, ok := portClasses[classPath]
	if !ok {
		return 0, 0, false
	}
	return pc.kind, pc.direction, true
}

// AttributeType returns the attribute type reference of a block.
func AttributeType(block string) string {
	switch block {
	case BlockIdentification, BlockCharacteristics, BlockCharacteristic,
		BlockDescriptiveElement, BlockRelationalElement, BlockVisualInformation, BlockCoordinate:
		return AttributeTypeLib + "/" + block
	default:
		panic(fmt.Sprintf("caex: no attribute type for block %q", block))
	}
}

// Suffixed names the i-th (zero based) sibling of a base name: the first one
// keeps the bare name, later ones get the numeric suffix 1, 2, ...
func Suffixed(base string, i int) string {
	if i == 0 {
		return base
	}
	return base + strconv.Itoa(i)
}

// SuffixIndex is the inverse of Suffixed. It reports false when name is not
// base followed by an optional positive number.
func SuffixIndex(base, name string) (int, bool) {
	if !strings.HasPrefix(name, base) {
		return 0, false
	}
	rest := name[len(base):]
	if rest == "" {
		return 0, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || rest[0] == '+' {
		return 0, false
	}
	return n, true
}
