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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	log "github.com/vine-io/vine/lib/logger"
	"go.uber.org/atomic"

	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/builder"
	"github.com/vine-io/fpdaml/parser"
)

const DefaultWorkers = 4

type BatchOptions struct {
	Workers int
	// OutputDir receives the converted files. Empty means next to the input.
	OutputDir string
	Builder   []builder.Option
	Parser    []parser.Option
}

type BatchOption func(*BatchOptions)

func NewBatchOptions(opts ...BatchOption) *BatchOptions {
	var options BatchOptions
	for _, o := range opts {
		o(&options)
	}

	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}

	return &options
}

func WithWorkers(n int) BatchOption {
	return func(o *BatchOptions) {
		o.Workers = n
	}
}

func WithOutputDir(dir string) BatchOption {
	return func(o *BatchOptions) {
		o.OutputDir = dir
	}
}

// WithBuilderOptions passes options to every graph to tree conversion.
func WithBuilderOptions(opts ...builder.Option) BatchOption {
	return func(o *BatchOptions) {
		o.Builder = append(o.Builder, opts...)
	}
}

// WithParserOptions passes options to every tree to graph conversion.
func WithParserOptions(opts ...parser.Option) BatchOption {
	return func(o *BatchOptions) {
		o.Parser = append(o.Parser, opts...)
	}
}

// Result is the outcome of converting one file.
type Result struct {
	Input     string
	Output    string
	Direction Direction
	Duration  time.Duration
	Err       error
}

// Report collects the results of a batch in input order.
type Report struct {
	Results   []*Result
	Succeeded int64
	Failed    int64
}

// OutputPath derives the converted file name and the conversion direction
// from the extension of input.
func OutputPath(input, dir string) (string, Direction, error) {
	ext := strings.ToLower(filepath.Ext(input))

	var (
		direction Direction
		target    string
	)
	switch ext {
	case ".json":
		direction, target = DirectionToAML, ".aml"
	case ".aml", ".xml":
		direction, target = DirectionToFPD, ".json"
	default:
		return "", "", api.BadRequest("%s: unsupported extension %q", input, ext)
	}

	out := strings.TrimSuffix(input, filepath.Ext(input)) + target
	if dir != "" {
		out = filepath.Join(dir, filepath.Base(out))
	}
	return out, direction, nil
}

// ConvertFile converts input and writes the result next to it, or into dir
// when given.
func ConvertFile(input, dir string, options *BatchOptions) *Result {
	if options == nil {
		options = NewBatchOptions()
	}

	start := time.Now()
	r := &Result{Input: input}
	defer func() { r.Duration = time.Since(start) }()

	out, direction, err := OutputPath(input, dir)
	if err != nil {
		r.Err = err
		return r
	}
	r.Output, r.Direction = out, direction

	data, err := os.ReadFile(input)
	if err != nil {
		r.Err = err
		return r
	}

	var converted []byte
	switch direction {
	case DirectionToAML:
		opts := append([]builder.Option{builder.WithFileName(filepath.Base(out))}, options.Builder...)
		converted, err = ConvertFPD(data, opts...)
	case DirectionToFPD:
		converted, err = ConvertAML(data, options.Parser...)
	}
	if err != nil {
		r.Err = fmt.Errorf("%s: %w", input, err)
		return r
	}

	if dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			r.Err = err
			return r
		}
	}
	r.Err = os.WriteFile(out, converted, 0o644)
	return r
}

// Batch converts the given files concurrently. A failing file does not stop
// the others; files not yet started when ctx is done fail with its error.
func Batch(ctx context.Context, inputs []string, opts ...BatchOption) (*Report, error) {
	options := NewBatchOptions(opts...)

	pool, err := ants.NewPool(options.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		succeeded = atomic.NewInt64(0)
		failed    = atomic.NewInt64(0)
	)
	results := make([]*Result, len(inputs))
	done := func(i int, r *Result) {
		results[i] = r
		if r.Err != nil {
			failed.Inc()
			log.Errorf("convert %s: %v", r.Input, r.Err)
			return
		}
		succeeded.Inc()
		log.Infof("converted %s to %s (%v)", r.Input, r.Output, r.Duration)
	}

	for i, input := range inputs {
		i, input := i, input
		if err := ctx.Err(); err != nil {
			done(i, &Result{Input: input, Err: err})
			continue
		}

		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				done(i, &Result{Input: input, Err: err})
				return
			}
			done(i, ConvertFile(input, options.OutputDir, options))
		})
		if err != nil {
			wg.Done()
			done(i, &Result{Input: input, Err: err})
		}
	}
	wg.Wait()

	return &Report{
		Results:   results,
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
	}, nil
}
