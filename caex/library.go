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
	_ "embed"
	"fmt"
	"sync"

	"github.com/beevik/etree"
)

//go:embed library.xml
var libraryXML []byte

var (
	libraryOnce sync.Once
	library     []*etree.Element
	libraryErr  error
)

func loadLibrary() ([]*etree.Element, error) {
	libraryOnce.Do(func() {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(libraryXML); err != nil {
			libraryErr = fmt.Errorf("read static library: %w", err)
			return
		}
		root := doc.Root()
		if root == nil {
			libraryErr = fmt.Errorf("static library is empty")
			return
		}
		library = root.ChildElements()
	})
	return library, libraryErr
}

// Libraries returns the names of the class and attribute type libraries
// appended to every generated document.
func Libraries() []string {
	libs, err := loadLibrary()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(libs))
	for _, lib := range libs {
		out = append(out, Name(lib))
	}
	return out
}

// AppendLibraries appends a copy of the static interface, system unit and
// attribute type libraries to the CAEXFile root. The tree form is never read
// back through them.
func AppendLibraries(root *etree.Element) error {
	libs, err := loadLibrary()
	if err != nil {
		return err
	}
	for _, lib := range libs {
		root.AddChild(lib.Copy())
	}
	return nil
}
