// Package entity is the read-only drawing model the renderers consume:
// one struct per entity kind, block definitions, layers and the document
// that ties them together.
//
// Coordinates are world (drawing) coordinates. Normal only orients planar
// constructions such as arcs, text and thickness extrusion; a zero normal
// means world +Z.
package entity

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// Color index sentinels.
const (
	ColorByBlock = 0
	ColorByLayer = 256
)

// Line weight sentinels, in hundredths of a millimetre otherwise.
const (
	LineWeightByLayer = -1
	LineWeightByBlock = -2
	LineWeightDefault = -3
)

// Line type names with special meaning.
const (
	LineTypeByLayer    = "ByLayer"
	LineTypeByBlock    = "ByBlock"
	LineTypeContinuous = "Continuous"
)

// Entity is implemented by every drawing entity.
type Entity interface {
	Kind() Kind
	Props() Common
}

// Common carries the properties every entity shares.
type Common struct {
	Handle        string    `json:"handle,omitempty"`
	Layer         string    `json:"layer,omitempty"`
	Color         int       `json:"color"`                // ACI; 0 ByBlock, 256 ByLayer
	TrueColor     *uint32   `json:"true_color,omitempty"` // 0xRRGGBB, wins over Color
	Transparency  int       `json:"transparency"`         // 0 opaque .. 255 clear
	LineType      string    `json:"line_type,omitempty"`
	LineWeight    int       `json:"line_weight"`
	LineTypeScale float64   `json:"line_type_scale,omitempty"`
	Invisible     bool      `json:"invisible,omitempty"`
	Normal        geom.Vec3 `json:"normal"`
	Thickness     float64   `json:"thickness,omitempty"`
}

// Props returns a copy of the shared properties.
func (c Common) Props() Common { return c }

// UnitNormal returns the extrusion direction, world Z when unset.
func (c Common) UnitNormal() geom.Vec3 { return geom.NormalOrZ(c.Normal) }
