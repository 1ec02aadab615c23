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

// Package caex holds the CAEX 3.0 vocabulary of the tree form: element
// helpers over etree, the mapping tables between graph kinds and class paths,
// the attribute codec and the static library fragment.
package caex

import (
	"github.com/beevik/etree"
)

const (
	Namespace               = "http://www.dke.de/CAEX"
	SchemaVersion           = "3.0"
	SuperiorStandardVersion = "AutomationML 2.10"
)

const (
	TagFile                      = "CAEXFile"
	TagSuperiorStandardVersion   = "SuperiorStandardVersion"
	TagSourceDocumentInformation = "SourceDocumentInformation"
	TagInstanceHierarchy         = "InstanceHierarchy"
	TagInternalElement           = "InternalElement"
	TagExternalInterface         = "ExternalInterface"
	TagInternalLink              = "InternalLink"
	TagAttribute                 = "Attribute"
	TagValue                     = "Value"
	TagVersion                   = "Version"
)

const (
	AttrName                  = "Name"
	AttrID                    = "ID"
	AttrRefBaseSystemUnitPath = "RefBaseSystemUnitPath"
	AttrRefBaseClassPath      = "RefBaseClassPath"
	AttrRefAttributeType      = "RefAttributeType"
	AttrAttributeDataType     = "AttributeDataType"
	AttrRefPartnerSideA       = "RefPartnerSideA"
	AttrRefPartnerSideB       = "RefPartnerSideB"
)

const (
	DataTypeString = "xs:string"
	DataTypeDouble = "xs:double"
)

// SourceInfo is the SourceDocumentInformation header of a CAEX file.
type SourceInfo struct {
	OriginName          string
	OriginID            string
	OriginVersion       string
	OriginURL           string
	OriginProjectTitle  string
	LastWritingDateTime string
}

// NewDocument creates an empty CAEX file with its header and returns the
// document with its CAEXFile root.
func NewDocument(fileName string, info SourceInfo) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement(TagFile)
	root.CreateAttr("SchemaVersion", SchemaVersion)
	if fileName != "" {
		root.CreateAttr("FileName", fileName)
	}
	root.CreateAttr("xmlns", Namespace)

	root.CreateElement(TagSuperiorStandardVersion).SetText(SuperiorStandardVersion)

	sdi := root.CreateElement(TagSourceDocumentInformation)
	for _, item := range []struct{ key, value string }{
		{"OriginName", info.OriginName},
		{"OriginID", info.OriginID},
		{"OriginVersion", info.OriginVersion},
		{"OriginURL", info.OriginURL},
		{"OriginProjectTitle", info.OriginProjectTitle},
		{"LastWritingDateTime", info.LastWritingDateTime},
	} {
		if item.value != "" {
			sdi.CreateAttr(item.key, item.value)
		}
	}

	return doc, root
}

// ReadSourceInfo returns the SourceDocumentInformation header of root, if any.
func ReadSourceInfo(root *etree.Element) (SourceInfo, bool) {
	sdi := root.SelectElement(TagSourceDocumentInformation)
	if sdi == nil {
		return SourceInfo{}, false
	}
	return SourceInfo{
		OriginName:          sdi.SelectAttrValue("OriginName", ""),
		OriginID:            sdi.SelectAttrValue("OriginID", ""),
		OriginVersion:       sdi.SelectAttrValue("OriginVersion", ""),
		OriginURL:           sdi.SelectAttrValue("OriginURL", ""),
		OriginProjectTitle:  sdi.SelectAttrValue("OriginProjectTitle", ""),
		LastWritingDateTime: sdi.SelectAttrValue("LastWritingDateTime", ""),
	}, true
}

func CreateInstanceHierarchy(parent *etree.Element, name, version string) *etree.Element {
	ih := parent.CreateElement(TagInstanceHierarchy)
	ih.CreateAttr(AttrName, name)
	if version != "" {
		ih.CreateElement(TagVersion).SetText(version)
	}
	return ih
}

func CreateInternalElement(parent *etree.Element, name, id, classPath string) *etree.Element {
	ie := parent.CreateElement(TagInternalElement)
	ie.CreateAttr(AttrName, name)
	ie.CreateAttr(AttrID, id)
	ie.CreateAttr(AttrRefBaseSystemUnitPath, classPath)
	return ie
}

func CreateExternalInterface(parent *etree.Element, name, id, classPath string) *etree.Element {
	ei := parent.CreateElement(TagExternalInterface)
	ei.CreateAttr(AttrName, name)
	ei.CreateAttr(AttrID, id)
	ei.CreateAttr(AttrRefBaseClassPath, classPath)
	return ei
}

func CreateInternalLink(parent *etree.Element, name, sideA, sideB string) *etree.Element {
	link := parent.CreateElement(TagInternalLink)
	link.CreateAttr(AttrName, name)
	link.CreateAttr(AttrRefPartnerSideA, sideA)
	link.CreateAttr(AttrRefPartnerSideB, sideB)
	return link
}

// CreateAttribute appends an Attribute child. An empty attrType leaves the
// RefAttributeType reference out.
func CreateAttribute(parent *etree.Element, name, attrType string) *etree.Element {
	attr := parent.CreateElement(TagAttribute)
	attr.CreateAttr(AttrName, name)
	if attrType != "" {
		attr.CreateAttr(AttrRefAttributeType, attrType)
	}
	return attr
}

// CreateValueAttribute appends a leaf Attribute of the given data type. The
// Value child is only written when set is true, so an absent value still
// leaves its slot in the tree.
func CreateValueAttribute(parent *etree.Element, name, dataType, value string, set bool) *etree.Element {
	attr := parent.CreateElement(TagAttribute)
	attr.CreateAttr(AttrName, name)
	attr.CreateAttr(AttrAttributeDataType, dataType)
	if set {
		attr.CreateElement(TagValue).SetText(value)
	}
	return attr
}

// Value returns the text of the Value child of an attribute.
func Value(attr *etree.Element) (string, bool) {
	if attr == nil {
		return "", false
	}
	v := attr.SelectElement(TagValue)
	if v == nil {
		return "", false
	}
	return v.Text(), true
}

// FindAttribute returns the direct Attribute child of e with the given name.
func FindAttribute(e *etree.Element, name string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, child := range e.SelectElements(TagAttribute) {
		if Name(child) == name {
			return child
		}
	}
	return nil
}

func Name(e *etree.Element) string {
	return e.SelectAttrValue(AttrName, "")
}

func ID(e *etree.Element) string {
	return e.SelectAttrValue(AttrID, "")
}

// SystemUnitPath returns the declared class of an InternalElement.
func SystemUnitPath(e *etree.Element) string {
	return e.SelectAttrValue(AttrRefBaseSystemUnitPath, "")
}

// InterfacePath returns the declared class of an ExternalInterface.
func InterfacePath(e *etree.Element) string {
	return e.SelectAttrValue(AttrRefBaseClassPath, "")
}

func InternalElements(e *etree.Element) []*etree.Element {
	return e.SelectElements(TagInternalElement)
}

func ExternalInterfaces(e *etree.Element) []*etree.Element {
	return e.SelectElements(TagExternalInterface)
}

func InternalLinks(e *etree.Element) []*etree.Element {
	return e.SelectElements(TagInternalLink)
}
