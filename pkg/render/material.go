package render

import (
	"github.com/chazu/cadmesh/pkg/aci"
	"github.com/chazu/cadmesh/pkg/geom"
)

// Material types, named after their three.js counterparts.
const (
	MaterialLineBasic    = "LineBasicMaterial"
	MaterialPoints       = "PointsMaterial"
	MaterialMeshStandard = "MeshStandardMaterial"
	MaterialMeshBasic    = "MeshBasicMaterial"
)

// Material sides.
const (
	SideFront  = "FrontSide"
	SideDouble = "DoubleSide"
)

const (
	opaqueAlphaEpsilon = 1e-9
	defaultPointSize   = 1.0
)

// Material is a renderer-neutral material descriptor.
type Material struct {
	Type         string  `json:"Type"`
	Color        string  `json:"Color"`
	Opacity      float64 `json:"Opacity"`
	Transparent  bool    `json:"Transparent"`
	DepthTest    bool    `json:"DepthTest"`
	DepthWrite   bool    `json:"DepthWrite"`
	Side         string  `json:"Side"`
	Wireframe    bool    `json:"Wireframe"`
	VertexColors bool    `json:"VertexColors"`
	Texture      string  `json:"Texture,omitempty"`
	Size         float64 `json:"Size,omitempty"` // point size
}

// materialFor picks the default material for a primitive type. fade is the
// image fade percentage (0 for everything else).
func materialFor(primitive string, c aci.Color, fade int) Material {
	m := Material{Color: c.Hex, DepthTest: true, Side: SideFront}
	switch primitive {
	case PrimitiveTriangles:
		m.Type = MaterialMeshStandard
		m.Side = SideDouble
	case PrimitivePoints:
		m.Type = MaterialPoints
		m.Size = defaultPointSize
	default:
		m.Type = MaterialLineBasic
	}
	m.setOpacity(c.A * (1 - geom.Clamp01(float64(fade)/100)))
	return m
}

// basicMaterial is the unlit material used for text and images.
func basicMaterial(c aci.Color, fade int) Material {
	m := materialFor(PrimitiveTriangles, c, fade)
	m.Type = MaterialMeshBasic
	return m
}

func (m *Material) setOpacity(opacity float64) {
	m.Opacity = geom.Clamp01(opacity)
	m.Transparent = m.Opacity < 1-opaqueAlphaEpsilon
	m.DepthWrite = !m.Transparent
}
