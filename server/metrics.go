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

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the conversion counters of one server on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Conversions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	BodyBytes   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.Conversions = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpdaml_conversions_total",
			Help: "Conversions by direction and outcome",
		},
		[]string{"direction", "status"},
	)
	m.Duration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fpdaml_conversion_duration_seconds",
			Help:    "Conversion latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)
	m.BodyBytes = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fpdaml_request_body_bytes",
			Help:    "Size of conversion request bodies",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"direction"},
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
