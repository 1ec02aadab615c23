package builder

import (
	"time"

	"github.com/vine-io/fpdaml/idgen"
)

const (
	// DefaultMaxDepth bounds how many process levels, the entry process
	// included, a conversion may walk.
	DefaultMaxDepth = 64

	OriginName    = "fpdaml"
	OriginID      = "fpdaml-vdi3682"
	OriginVersion = "1.0.0"

	// HierarchyVersion is written as the Version of the instance hierarchy.
	HierarchyVersion = "1.0.0"
)

type Options struct {
	// EntryPoint overrides the project's entry point.
	EntryPoint  string
	IDGenerator idgen.Generator
	MaxDepth    int
	FileName    string
	Now         func() time.Time
}

// Option represents a configuration option for Build.
type Option func(*Options)

func NewOptions(opts ...Option) *Options {
	var options Options
	for _, o := range opts {
		o(&options)
	}

	if options.IDGenerator == nil {
		options.IDGenerator = idgen.UUID()
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &options
}

// WithEntryPoint starts the conversion at the given process instead of the
// project's entry point.
func WithEntryPoint(id string) Option {
	return func(o *Options) {
		o.EntryPoint = id
	}
}

// WithIDGenerator sets the source of tree element, interface and link IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(o *Options) {
		o.IDGenerator = gen
	}
}

// WithMaxDepth limits the number of nested process levels. The entry process
// counts as the first level, so 1 forbids any decomposition.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithFileName sets the FileName attribute of the CAEXFile root.
func WithFileName(name string) Option {
	return func(o *Options) {
		o.FileName = name
	}
}

// WithClock sets the clock used for LastWritingDateTime.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}
