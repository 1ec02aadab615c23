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

package fpdaml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vine-io/fpdaml/api"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input     string
		dir       string
		output    string
		direction Direction
	}{
		{"a/milling.json", "", "a/milling.aml", DirectionToAML},
		{"a/milling.aml", "", "a/milling.json", DirectionToFPD},
		{"a/milling.XML", "out", "out/milling.json", DirectionToFPD},
		{"milling.json", "out", "out/milling.aml", DirectionToAML},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, direction, err := OutputPath(tt.input, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.output), out)
			assert.Equal(t, tt.direction, direction)
		})
	}

	_, _, err := OutputPath("milling.txt", "")
	assert.True(t, api.IsCode(err, api.StatusBadRequest))
}

func TestBatch(t *testing.T) {
	src := t.TempDir()
	data, err := os.ReadFile("testdata/milling.json")
	require.NoError(t, err)

	inputs := make([]string, 0)
	for _, name := range []string{"one.json", "two.json", "three.json"} {
		path := filepath.Join(src, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		inputs = append(inputs, path)
	}
	broken := filepath.Join(src, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("[]"), 0o644))
	inputs = append(inputs, broken, filepath.Join(src, "missing.json"))

	dst := filepath.Join(t.TempDir(), "aml")
	report, err := Batch(context.Background(), inputs, WithWorkers(2), WithOutputDir(dst))
	require.NoError(t, err)

	assert.EqualValues(t, 3, report.Succeeded)
	assert.EqualValues(t, 2, report.Failed)
	require.Len(t, report.Results, len(inputs))
	for i, r := range report.Results {
		assert.Equal(t, inputs[i], r.Input)
	}
	assert.True(t, api.IsCode(report.Results[3].Err, api.StatusBadRequest), report.Results[3].Err)
	assert.True(t, os.IsNotExist(report.Results[4].Err))

	// converted files convert back
	second := make([]string, 0)
	for _, r := range report.Results[:3] {
		require.NoError(t, r.Err)
		assert.Equal(t, DirectionToAML, r.Direction)
		assert.FileExists(t, r.Output)
		second = append(second, r.Output)
	}
	back, err := Batch(context.Background(), second)
	require.NoError(t, err)
	assert.EqualValues(t, 3, back.Succeeded)
	for _, r := range back.Results {
		assert.Equal(t, filepath.Ext(r.Output), ".json")
		assert.Equal(t, dst, filepath.Dir(r.Output))
	}
}

func TestBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Batch(ctx, []string{"a.json", "b.aml"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, report.Succeeded)
	assert.EqualValues(t, 2, report.Failed)
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
