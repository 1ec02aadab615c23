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

// Package server exposes the conversions over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/vine-io/vine/lib/logger"
	"golang.org/x/net/netutil"

	"github.com/vine-io/fpdaml"
	"github.com/vine-io/fpdaml/api"
	"github.com/vine-io/fpdaml/builder"
	"github.com/vine-io/fpdaml/parser"
)

const (
	DefaultAddress      = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 30 * time.Second
)

type Options struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	// MaxConns caps concurrent connections. Zero means unlimited.
	MaxConns     int
	Builder      []builder.Option
	Parser       []parser.Option
}

type Option func(*Options)

func NewOptions(opts ...Option) *Options {
	var options Options
	for _, o := range opts {
		o(&options)
	}

	if options.Address == "" {
		options.Address = DefaultAddress
	}
	if options.ReadTimeout <= 0 {
		options.ReadTimeout = DefaultTimeout
	}
	if options.WriteTimeout <= 0 {
		options.WriteTimeout = DefaultTimeout
	}
	if options.MaxBodyBytes <= 0 {
		options.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &options
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = read
		o.WriteTimeout = write
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(o *Options) {
		o.MaxBodyBytes = n
	}
}

func WithMaxConns(n int) Option {
	return func(o *Options) {
		o.MaxConns = n
	}
}

// WithBuilderOptions applies opts to every JSON to XML request.
func WithBuilderOptions(opts ...builder.Option) Option {
	return func(o *Options) {
		o.Builder = append(o.Builder, opts...)
	}
}

// WithParserOptions applies opts to every XML to JSON request.
func WithParserOptions(opts ...parser.Option) Option {
	return func(o *Options) {
		o.Parser = append(o.Parser, opts...)
	}
}

type Server struct {
	options *Options
	metrics *Metrics
	router  chi.Router
}

func New(opts ...Option) *Server {
	s := &Server{
		options: NewOptions(opts...),
		metrics: NewMetrics(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logging)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/aml", s.handleConvert(fpdaml.DirectionToAML))
		r.Post("/fpd", s.handleConvert(fpdaml.DirectionToFPD))
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hs := &http.Server{
		Addr:         s.options.Address,
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
	}

	l, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}
	if s.options.MaxConns > 0 {
		l = netutil.LimitListener(l, s.options.MaxConns)
	}

	ech := make(chan error, 1)
	go func() {
		log.Infof("fpdaml server listening on %s", l.Addr())
		ech <- hs.Serve(l)
	}()

	select {
	case err := <-ech:
		return err
	case <-ctx.Done():
	}

	log.Infof("fpdaml server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.WriteTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-ech; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debugf("%s %s %d %v", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(direction fpdaml.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		out, contentType, err := s.convert(w, r, direction)
		s.metrics.Duration.WithLabelValues(string(direction)).Observe(time.Since(start).Seconds())

		if err != nil {
			verr := api.FromErr(err)
			if verr.Code == 0 {
				verr = api.InternalServerError("%v", err)
			}
			s.metrics.Conversions.WithLabelValues(string(direction), strconv.Itoa(verr.HTTPStatus())).Inc()
			s.respondError(w, verr)
			return
		}

		s.metrics.Conversions.WithLabelValues(string(direction), strconv.Itoa(http.StatusOK)).Inc()
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out); err != nil {
			log.Errorf("write response: %v", err)
		}
	}
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request, direction fpdaml.Direction) ([]byte, string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.options.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", api.RequestTooLarge("request body exceeds %d bytes", s.options.MaxBodyBytes)
		}
		return nil, "", api.BadRequest("read request body: %v", err)
	}
	s.metrics.BodyBytes.WithLabelValues(string(direction)).Observe(float64(len(body)))

	switch direction {
	case fpdaml.DirectionToAML:
		out, err := fpdaml.ConvertFPD(body, s.options.Builder...)
		return out, "application/xml", err
	default:
		out, err := fpdaml.ConvertAML(body, s.options.Parser...)
		return out, "application/json", err
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err *api.Error) {
	s.respondJSON(w, err.HTTPStatus(), err)
}
