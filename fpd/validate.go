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

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.EntryPoint, validation.Required),
	)
}

func (p Process) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
	)
}

func (n Node) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Kind, validation.By(func(value interface{}) error {
			if k, _ := value.(Kind); !k.IsNode() {
				return fmt.Errorf("%s is not an element kind", k)
			}
			return nil
		})),
	)
}

func (f Flow) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
		validation.Field(&f.SourceRef, validation.Required),
		validation.Field(&f.TargetRef, validation.Required),
		validation.Field(&f.Kind, validation.By(func(value interface{}) error {
			if k, _ := value.(Kind); !k.IsFlow() {
				return fmt.Errorf("%s is not a flow kind", k)
			}
			return nil
		})),
	)
}

// Validate checks the document shape the converters rely on: a header whose
// entry point names a process entry and records carrying their identifiers.
// Process semantics are not checked.
func (d *Document) Validate() error {
	if d.Project == nil {
		return fmt.Errorf("missing %s header", KindProject)
	}
	if err := d.Project.Validate(); err != nil {
		return fmt.Errorf("project: %w", err)
	}
	if _, ok := d.Process(d.Project.EntryPoint); !ok {
		return fmt.Errorf("entry point %s: no such process", d.Project.EntryPoint)
	}

	for _, entry := range d.Entries {
		if entry.Process == nil {
			return fmt.Errorf("process entry without process record")
		}
		if err := entry.Process.Validate(); err != nil {
			return fmt.Errorf("process: %w", err)
		}
		for _, elem := range entry.Elements {
			var err error
			switch tv := elem.(type) {
			case *Node:
				err = tv.Validate()
			case *Flow:
				err = tv.Validate()
			}
			if err != nil {
				return fmt.Errorf("process %s element %s: %w", entry.Process.ID, elem.GetID(), err)
			}
		}
	}

	return nil
}
