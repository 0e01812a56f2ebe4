// Package config loads cadmesh settings from YAML.
//
// A file only needs the keys it changes; everything else keeps the
// values from Default:
//
//	render:
//	  arc_segments: 128
//	  fallback_color: 7
//	engine:
//	  workers: 4
//	output:
//	  json: out/drawing.json
//	  svg: out/plan.svg
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/cadmesh/pkg/render"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

// Config is the full settings file.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Engine EngineConfig `yaml:"engine"`
	Output OutputConfig `yaml:"output"`
}

// RenderConfig mirrors the render options.
type RenderConfig struct {
	ArcSegments      int     `yaml:"arc_segments"`
	MaxInsertDepth   int     `yaml:"max_insert_depth"`
	FallbackColor    int     `yaml:"fallback_color"` // palette index, 0 for none
	TextAspect       float64 `yaml:"text_aspect"`
	SplineMinSamples int     `yaml:"spline_min_samples"`
}

// EngineConfig sizes the batch renderer.
type EngineConfig struct {
	Workers int `yaml:"workers"` // 0 means one per CPU
}

// OutputConfig names the files to write. Empty paths are skipped.
type OutputConfig struct {
	JSON   string `yaml:"json"`
	Indent bool   `yaml:"indent"`
	STL    string `yaml:"stl"`
	SVG    string `yaml:"svg"`
	DXF    string `yaml:"dxf"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			ArcSegments:      render.DefaultArcSegments,
			MaxInsertDepth:   render.DefaultMaxInsertDepth,
			TextAspect:       render.DefaultTextAspect,
			SplineMinSamples: tessellate.DefaultSplineSamples,
		},
		Output: OutputConfig{Indent: true},
	}
}

// Load reads the file at path over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects values the renderer cannot use.
func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.ArcSegments < 3:
		return fmt.Errorf("render.arc_segments must be at least 3, got %d", r.ArcSegments)
	case r.MaxInsertDepth < 0:
		return fmt.Errorf("render.max_insert_depth must not be negative, got %d", r.MaxInsertDepth)
	case r.FallbackColor < 0 || r.FallbackColor > 255:
		return fmt.Errorf("render.fallback_color must be a palette index, got %d", r.FallbackColor)
	case r.TextAspect <= 0:
		return fmt.Errorf("render.text_aspect must be positive, got %g", r.TextAspect)
	case r.SplineMinSamples < 2:
		return fmt.Errorf("render.spline_min_samples must be at least 2, got %d", r.SplineMinSamples)
	case c.Engine.Workers < 0:
		return fmt.Errorf("engine.workers must not be negative, got %d", c.Engine.Workers)
	}
	return nil
}

// RenderOptions converts the render section to render options.
func (c *Config) RenderOptions() []render.Option {
	opts := []render.Option{
		render.WithArcSegments(c.Render.ArcSegments),
		render.WithMaxInsertDepth(c.Render.MaxInsertDepth),
		render.WithTextAspect(c.Render.TextAspect),
		render.WithSplineMinSamples(c.Render.SplineMinSamples),
	}
	if c.Render.FallbackColor > 0 {
		opts = append(opts, render.WithFallbackColor(c.Render.FallbackColor))
	}
	return opts
}

// Outputs returns the configured output paths in a fixed order.
func (c *Config) Outputs() []string {
	var out []string
	for _, p := range []string{c.Output.JSON, c.Output.STL, c.Output.SVG, c.Output.DXF} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
