package render

import (
	"github.com/chazu/cadmesh/pkg/aci"
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

// Defaults used when no option overrides them.
const (
	DefaultArcSegments    = tessellate.DefaultSegments
	DefaultMaxInsertDepth = 16
	DefaultTextAspect     = 0.6
	DefaultArrowSize      = 2.5
)

// LayerResolver looks up layer table entries for ByLayer properties.
type LayerResolver interface {
	Layer(name string) (entity.Layer, bool)
}

// BlockResolver looks up block definitions for inserts.
type BlockResolver interface {
	Block(name string) (*entity.Block, bool)
}

// *entity.Document serves both lookups.
var (
	_ LayerResolver = (*entity.Document)(nil)
	_ BlockResolver = (*entity.Document)(nil)
)

// Options holds the tunables shared by every renderer.
type Options struct {
	ArcSegments      int
	MaxInsertDepth   int
	FallbackColor    *aci.Color
	TextAspect       float64
	SplineMinSamples int
	Layers           LayerResolver
	Blocks           BlockResolver
}

// Option configures rendering.
//
// Example:
//
//	g := render.Render(e,
//		render.WithDocument(doc),
//		render.WithArcSegments(128))
type Option func(*Options)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		ArcSegments:      DefaultArcSegments,
		MaxInsertDepth:   DefaultMaxInsertDepth,
		TextAspect:       DefaultTextAspect,
		SplineMinSamples: tessellate.DefaultSplineSamples,
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithArcSegments sets the number of segments used for a full circle.
// Partial arcs use the same count. Values below 3 are ignored.
func WithArcSegments(n int) Option {
	return func(o *Options) {
		if n >= 3 {
			o.ArcSegments = n
		}
	}
}

// WithMaxInsertDepth caps how deep nested inserts are expanded. Inserts
// below the cap render as empty placeholders.
func WithMaxInsertDepth(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxInsertDepth = n
		}
	}
}

// WithFallbackColor sets the palette color used for ByLayer and ByBlock
// entities that cannot be resolved otherwise.
//
// Example:
//
//	render.Render(e, render.WithFallbackColor(7))
func WithFallbackColor(index int) Option {
	return func(o *Options) {
		if c, ok := aci.Lookup(index); ok {
			o.FallbackColor = &c
		}
	}
}

// WithTextAspect sets the average glyph width as a fraction of text height.
func WithTextAspect(aspect float64) Option {
	return func(o *Options) {
		if aspect > 0 {
			o.TextAspect = aspect
		}
	}
}

// WithSplineMinSamples sets the minimum number of samples per spline.
func WithSplineMinSamples(n int) Option {
	return func(o *Options) {
		if n >= 2 {
			o.SplineMinSamples = n
		}
	}
}

// WithLayers injects the layer table used for ByLayer properties.
func WithLayers(r LayerResolver) Option {
	return func(o *Options) {
		o.Layers = r
	}
}

// WithBlocks injects the block table used by inserts.
func WithBlocks(r BlockResolver) Option {
	return func(o *Options) {
		o.Blocks = r
	}
}

// WithDocument uses d for both layer and block lookups.
func WithDocument(d *entity.Document) Option {
	return func(o *Options) {
		if d == nil {
			return
		}
		o.Layers = d
		o.Blocks = d
	}
}
