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
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMilling(t *testing.T) *Document {
	data, err := os.ReadFile("../testdata/milling.json")
	require.NoError(t, err)
	doc, err := Unmarshal(data)
	require.NoError(t, err)
	return doc
}

func TestUnmarshal(t *testing.T) {
	doc := loadMilling(t)

	assert.Equal(t, "Milling", doc.Project.Name)
	assert.Equal(t, "Process_root", doc.Project.EntryPoint)
	require.Len(t, doc.Entries, 2)

	root, ok := doc.Root()
	require.True(t, ok)
	assert.Equal(t, "", root.Process.DecomposedProcessOperator)
	assert.Equal(t, "SystemLimit_root", root.Process.SystemLimit)
	assert.Equal(t, []string{"ProcessOperator_mill"}, root.Process.ProcessOperators)
	assert.Len(t, root.Nodes(), 6)
	assert.Len(t, root.Flows(), 5)

	sl := root.SystemLimit()
	require.NotNil(t, sl)
	assert.Len(t, sl.ElementsContainer, 11)

	mill, ok := doc.Node("ProcessOperator_mill")
	require.True(t, ok)
	assert.Equal(t, KindProcessOperator, mill.Kind)
	assert.Equal(t, "Process_mill", mill.DecomposedView)

	in, ok := doc.Node("Product_in")
	require.True(t, ok)
	require.Len(t, in.Characteristics, 2)
	assert.Equal(t, "mass", in.Characteristics[0].Category.ShortName)
	assert.Equal(t, "12.5", in.Characteristics[0].DescriptiveElement.SetpointValue)
	assert.Nil(t, in.Characteristics[1].Category)

	elem, ok := doc.Element("Flow_3")
	require.True(t, ok)
	flow := elem.(*Flow)
	assert.Equal(t, KindAlternativeFlow, flow.Kind)
	assert.Equal(t, []string{"Flow_4"}, flow.InTandemWith)

	v, ok := doc.Visual("Flow_1")
	require.True(t, ok)
	require.Len(t, v.Waypoints, 4)
	assert.Equal(t, Point{X: 175, Y: 45}, v.Waypoints[0].Effective())
	assert.Equal(t, Point{X: 175, Y: 135}, v.Waypoints[1].Effective())

	v, ok = doc.Visual("ProcessOperator_mill")
	require.True(t, ok)
	assert.Equal(t, &Bounds{X: 180, Y: 200, Width: 150, Height: 80}, v.Bounds)

	assert.Equal(t, map[string]string{"Process_mill": "ProcessOperator_mill"}, doc.Linkage())
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := loadMilling(t)

	data, err := MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	again, err := Unmarshal(data)
	require.NoError(t, err)

	diff := cmp.Diff(doc, again,
		cmpopts.IgnoreUnexported(Document{}),
		cmpopts.EquateEmpty(),
	)
	assert.Empty(t, diff)
}

func TestMarshalShape(t *testing.T) {
	doc := loadMilling(t)
	data, err := Marshal(doc)
	require.NoError(t, err)

	assert.Equal(t, "fpb:Project", json.Get(data, 0, "$type").ToString())
	assert.Equal(t, json.NilValue, json.Get(data, 1, "process", "isDecomposedProcessOperator").ValueType())
	assert.Equal(t, "ProcessOperator_mill", json.Get(data, 2, "process", "isDecomposedProcessOperator").ToString())

	// Flow records carry inTandemWith only on tandem kinds.
	assert.Equal(t, json.InvalidValue, json.Get(data, 1, "elementDataInformation", 7, "inTandemWith").ValueType())
	assert.Equal(t, "Flow_4", json.Get(data, 1, "elementDataInformation", 9, "inTandemWith", 0).ToString())

	// System limits carry their container but no incoming/outgoing lists.
	assert.Equal(t, json.ArrayValue, json.Get(data, 1, "elementDataInformation", 0, "elementsContainer").ValueType())
	assert.Equal(t, json.InvalidValue, json.Get(data, 1, "elementDataInformation", 0, "incoming").ValueType())
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`{"not":"an array"}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`[{"process":{"id":"p"},"elementDataInformation":[],"elementVisualInformation":[]}]`))
	assert.ErrorContains(t, err, "missing fpb:Project header")

	_, err = Unmarshal([]byte(`[{"$type":"fpb:Project","name":"x","entryPoint":"p"},{"foo":1}]`))
	assert.ErrorContains(t, err, "neither project header nor process entry")

	_, err = Unmarshal([]byte(`[{"$type":"fpb:Project","name":"x","entryPoint":"p"},
		{"process":{"id":"p"},"elementDataInformation":[{"$type":"fpb:Gateway","id":"g"}]}]`))
	assert.ErrorContains(t, err, "not support to deserialize")
}

func TestKind(t *testing.T) {
	k, ok := ParseKind("fpb:TechnicalResource")
	assert.True(t, ok)
	assert.Equal(t, KindTechnicalResource, k)

	k, ok = ParseKind("Usage")
	assert.True(t, ok)
	assert.Equal(t, KindUsage, k)

	_, ok = ParseKind("fpb:Gateway")
	assert.False(t, ok)

	assert.True(t, KindEnergy.IsState())
	assert.False(t, KindProcessOperator.IsState())
	assert.True(t, KindAlternativeFlow.IsTandem())
	assert.False(t, KindUsage.IsTandem())
	assert.Equal(t, "fpb:SystemLimit", KindSystemLimit.String())
	for _, k := range NodeKinds() {
		assert.True(t, k.IsNode(), k.String())
		assert.False(t, k.IsFlow(), k.String())
	}
	for _, k := range FlowKinds() {
		assert.True(t, k.IsFlow(), k.String())
	}
}

func TestValidate(t *testing.T) {
	doc := loadMilling(t)
	assert.NoError(t, doc.Validate())

	doc.Project.EntryPoint = "Process_missing"
	assert.ErrorContains(t, doc.Validate(), "no such process")

	doc = loadMilling(t)
	doc.Project.Name = ""
	assert.Error(t, doc.Validate())

	doc = loadMilling(t)
	root, _ := doc.Root()
	root.Flows()[0].SourceRef = ""
	assert.ErrorContains(t, doc.Validate(), "Flow_1")
}
