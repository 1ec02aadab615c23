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
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/vine-io/fpdaml/fpd"
)

type field struct {
	name  string
	value *string
}

func identificationFields(i *fpd.Identification) []field {
	return []field{
		{"UniqueIdent", &i.UniqueIdent},
		{"LongName", &i.LongName},
		{"ShortName", &i.ShortName},
		{"VersionNumber", &i.VersionNumber},
		{"RevisionNumber", &i.RevisionNumber},
	}
}

func descriptiveFields(d *fpd.DescriptiveElement) []field {
	return []field{
		{"ValueDeterminationProcess", &d.ValueDeterminationProcess},
		{"Representivity", &d.Representivity},
		{"SetpointValue", &d.SetpointValue},
		{"ValidityLimits", &d.ValidityLimits},
		{"ActualValues", &d.ActualValues},
	}
}

func relationalFields(r *fpd.RelationalElement) []field {
	return []field{
		{"View", &r.View},
		{"Model", &r.Model},
		{"RegulationsForRelationalGeneration", &r.RegulationsForRelationalGeneration},
	}
}

func encodeFields(parent *etree.Element, fields []field) {
	for _, f := range fields {
		CreateValueAttribute(parent, f.name, DataTypeString, *f.value, *f.value != "")
	}
}

// decodeFields fills fields from the leaf attributes of parent and reports
// whether any of them carried a value.
func decodeFields(parent *etree.Element, fields []field) bool {
	found := false
	for _, f := range fields {
		if v, ok := Value(FindAttribute(parent, f.name)); ok {
			*f.value = v
			found = true
		}
	}
	return found
}

// EncodeIdentification appends an identity block under parent. Nothing is
// written for a nil block.
func EncodeIdentification(parent *etree.Element, ident *fpd.Identification) {
	if ident == nil {
		return
	}
	encodeIdentity(parent, BlockIdentification, ident)
}

func encodeIdentity(parent *etree.Element, name string, ident *fpd.Identification) {
	block := CreateAttribute(parent, name, AttributeType(BlockIdentification))
	encodeFields(block, identificationFields(ident))
}

// DecodeIdentification reads the identity block of e, nil when e has none.
func DecodeIdentification(e *etree.Element) *fpd.Identification {
	return decodeIdentity(FindAttribute(e, BlockIdentification))
}

func decodeIdentity(block *etree.Element) *fpd.Identification {
	if block == nil {
		return nil
	}
	ident := &fpd.Identification{}
	decodeFields(block, identificationFields(ident))
	return ident
}

// EncodeCharacteristics appends the characteristics list under parent. Entries
// are named Characteristic, Characteristic1, ... and each optional sub-block
// is written only when present.
func EncodeCharacteristics(parent *etree.Element, chars []*fpd.Characteristic) {
	if len(chars) == 0 {
		return
	}
	block := CreateAttribute(parent, BlockCharacteristics, AttributeType(BlockCharacteristics))
	for i, c := range chars {
		entry := CreateAttribute(block, Suffixed(BlockCharacteristic, i), AttributeType(BlockCharacteristic))
		if c == nil {
			continue
		}
		if c.Category != nil {
			encodeIdentity(entry, BlockCategory, c.Category)
		}
		if c.DescriptiveElement != nil {
			sub := CreateAttribute(entry, BlockDescriptiveElement, AttributeType(BlockDescriptiveElement))
			encodeFields(sub, descriptiveFields(c.DescriptiveElement))
		}
		if c.RelationalElement != nil {
			sub := CreateAttribute(entry, BlockRelationalElement, AttributeType(BlockRelationalElement))
			encodeFields(sub, relationalFields(c.RelationalElement))
		}
	}
}

// DecodeCharacteristics reads the characteristics list of e in document order.
func DecodeCharacteristics(e *etree.Element) []*fpd.Characteristic {
	block := FindAttribute(e, BlockCharacteristics)
	if block == nil {
		return nil
	}

	out := make([]*fpd.Characteristic, 0)
	for _, entry := range block.SelectElements(TagAttribute) {
		if _, ok := SuffixIndex(BlockCharacteristic, Name(entry)); !ok {
			continue
		}
		c := &fpd.Characteristic{
			Category: decodeIdentity(FindAttribute(entry, BlockCategory)),
		}
		if sub := FindAttribute(entry, BlockDescriptiveElement); sub != nil {
			c.DescriptiveElement = &fpd.DescriptiveElement{}
			decodeFields(sub, descriptiveFields(c.DescriptiveElement))
		}
		if sub := FindAttribute(entry, BlockRelationalElement); sub != nil {
			c.RelationalElement = &fpd.RelationalElement{}
			decodeFields(sub, relationalFields(c.RelationalElement))
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EncodeCoordinate appends a coordinate attribute named name. A nil point
// leaves both slots empty.
func EncodeCoordinate(parent *etree.Element, name string, p *fpd.Point) *etree.Element {
	attr := CreateAttribute(parent, name, AttributeType(BlockCoordinate))
	if p == nil {
		CreateValueAttribute(attr, "x", DataTypeDouble, "", false)
		CreateValueAttribute(attr, "y", DataTypeDouble, "", false)
		return attr
	}
	CreateValueAttribute(attr, "x", DataTypeDouble, FormatNumber(p.X), true)
	CreateValueAttribute(attr, "y", DataTypeDouble, FormatNumber(p.Y), true)
	return attr
}

// DecodeCoordinate reads a coordinate attribute. It returns nil when neither
// slot carries a value; a missing or malformed value in one slot reads as 0.
func DecodeCoordinate(attr *etree.Element) *fpd.Point {
	if attr == nil {
		return nil
	}
	x, okX := Value(FindAttribute(attr, "x"))
	y, okY := Value(FindAttribute(attr, "y"))
	if !okX && !okY {
		return nil
	}
	return &fpd.Point{X: ParseNumber(x), Y: ParseNumber(y)}
}

// EncodeVisual appends the VisualInformation block of a node. A nil bounds
// leaves every slot empty.
func EncodeVisual(parent *etree.Element, b *fpd.Bounds) {
	block := CreateAttribute(parent, BlockVisualInformation, AttributeType(BlockVisualInformation))
	if b == nil {
		EncodeCoordinate(block, BlockPosition, nil)
		CreateValueAttribute(block, "Width", DataTypeDouble, "", false)
		CreateValueAttribute(block, "Height", DataTypeDouble, "", false)
		return
	}
	EncodeCoordinate(block, BlockPosition, &fpd.Point{X: b.X, Y: b.Y})
	CreateValueAttribute(block, "Width", DataTypeDouble, FormatNumber(b.Width), true)
	CreateValueAttribute(block, "Height", DataTypeDouble, FormatNumber(b.Height), true)
}

// DecodeVisual reads the VisualInformation block of e. A block that is
// missing, or whose values are all zero or absent, yields nil: a shape at the
// origin with no size cannot be told apart from no shape.
func DecodeVisual(e *etree.Element) *fpd.Bounds {
	block := FindAttribute(e, BlockVisualInformation)
	if block == nil {
		return nil
	}

	b := &fpd.Bounds{}
	if pos := DecodeCoordinate(FindAttribute(block, BlockPosition)); pos != nil {
		b.X, b.Y = pos.X, pos.Y
	}
	w, _ := Value(FindAttribute(block, "Width"))
	h, _ := Value(FindAttribute(block, "Height"))
	b.Width, b.Height = ParseNumber(w), ParseNumber(h)

	if *b == (fpd.Bounds{}) {
		return nil
	}
	return b
}

// EncodeWaypoints appends the auxiliary waypoints of a source port as
// Waypoint, Waypoint1, ...
func EncodeWaypoints(port *etree.Element, points []fpd.Point) {
	for i := range points {
		EncodeCoordinate(port, Suffixed(BlockWaypoint, i), &points[i])
	}
}

// DecodeWaypoints reads the auxiliary waypoints of a port ordered by their
// numeric suffix, not by document order.
func DecodeWaypoints(port *etree.Element) []fpd.Point {
	type indexed struct {
		i int
		p fpd.Point
	}
	found := make([]indexed, 0)
	for _, attr := range port.SelectElements(TagAttribute) {
		i, ok := SuffixIndex(BlockWaypoint, Name(attr))
		if !ok {
			continue
		}
		p := DecodeCoordinate(attr)
		if p == nil {
			continue
		}
		found = append(found, indexed{i: i, p: *p})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].i < found[j].i })

	out := make([]fpd.Point, 0, len(found))
	for _, item := range found {
		out = append(out, item.p)
	}
	return out
}

// FormatNumber renders f as the shortest decimal text, "12.5" not "1.25e+01".
func FormatNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// ParseNumber reads decimal text; empty or malformed text reads as 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
