// Package render turns drawing entities into renderer-agnostic geometry.
//
// Each entity kind has one pure renderer registered in a dispatch table.
// Render never fails: incomplete or degenerate input produces an empty but
// well-formed Geometry. Inserts expand their block recursively, carrying a
// stack of placements and the ancestry of block names so nesting is capped
// and cycles are cut.
package render

import (
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/chazu/cadmesh/pkg/aci"
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/mesh"
)

// RenderFunc renders one entity. It must not retain e or mutate shared
// state, and must return a non-nil Geometry.
type RenderFunc func(e entity.Entity, c *Context) *Geometry

var (
	registryMu sync.RWMutex
	registry   = make(map[entity.Kind]RenderFunc)
)

func init() {
	defaults := map[entity.Kind]RenderFunc{
		entity.KindArc:          renderArc,
		entity.KindCircle:       renderCircle,
		entity.KindEllipse:      renderEllipse,
		entity.KindLine:         renderLine,
		entity.KindPolyline2D:   renderPolyline2D,
		entity.KindPolyline3D:   renderPolyline3D,
		entity.KindSpline:       renderSpline,
		entity.KindFace3D:       renderFace3D,
		entity.KindSolid:        renderSolid,
		entity.KindMesh:         renderMesh,
		entity.KindPolyfaceMesh: renderPolyfaceMesh,
		entity.KindPolygonMesh:  renderPolygonMesh,
		entity.KindText:         renderText,
		entity.KindAttribute:    renderAttribute,
		entity.KindMText:        renderMText,
		entity.KindShape:        renderShape,
		entity.KindPoint:        renderPoint,
		entity.KindInsert:       renderInsert,
		entity.KindLeader:       renderLeader,
		entity.KindRasterImage:  renderRasterImage,
		entity.KindPdfUnderlay:  renderPdfUnderlay,
		entity.KindWipeout:      renderWipeout,
	}
	for k, f := range defaults {
		registry[k] = f
	}
}

// Register installs f as the renderer for kind, replacing any existing one.
// A nil f removes the renderer.
func Register(kind entity.Kind, f RenderFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		delete(registry, kind)
		return
	}
	registry[kind] = f
}

// Registered reports whether kind has a renderer.
func Registered(kind entity.Kind) bool {
	_, ok := lookup(kind)
	return ok
}

// Renderer returns the renderer installed for kind, nil when there is none.
func Renderer(kind entity.Kind) RenderFunc {
	f, _ := lookup(kind)
	return f
}

func lookup(kind entity.Kind) (RenderFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// Render renders a single entity.
//
// Example:
//
//	g := render.Render(circle, render.WithDocument(doc))
//	fmt.Println(g.VertexCount) // 65
func Render(e entity.Entity, opts ...Option) *Geometry {
	return NewContext(NewOptions(opts...)).Render(e)
}

// RenderAll renders entities in order. See the engine package for the
// concurrent version.
func RenderAll(entities []entity.Entity, opts ...Option) []*Geometry {
	c := NewContext(NewOptions(opts...))
	out := make([]*Geometry, len(entities))
	for i, e := range entities {
		out[i] = c.Render(e)
	}
	return out
}

// ---------------------------------------------------------------------------
// Context
// ---------------------------------------------------------------------------

// inherited holds the resolved properties an insert hands to the ByBlock
// and layer "0" entities of its block.
type inherited struct {
	layer      string
	color      aci.Color
	lineType   string
	lineWeight int
}

// Context carries options and insert-expansion state through one render
// call. A Context is cheap; nested inserts derive child contexts from it.
type Context struct {
	Options Options

	stack  blockStack
	parent *inherited
}

// NewContext returns a top-level context.
func NewContext(o Options) *Context {
	return &Context{Options: o, stack: newBlockStack()}
}

// Depth is the insert nesting level: 0 for model space.
func (c *Context) Depth() int {
	return c.stack.depth()
}

// Render dispatches e to its renderer.
func (c *Context) Render(e entity.Entity) *Geometry {
	if isNil(e) {
		return c.empty("Unknown")
	}
	f, ok := lookup(e.Kind())
	if !ok {
		Logger().Debug("render: no renderer for entity kind",
			"kind", e.Kind().String(), "handle", e.Props().Handle)
		g := c.newGeometry(e)
		g.setEmpty(geom.Vec3{})
		return g
	}
	g := f(e, c)
	if g == nil {
		g = c.newGeometry(e)
		g.setEmpty(geom.Vec3{})
	}
	return g
}

func isNil(e entity.Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// as returns e as a T whether it was passed by value or by pointer.
func as[T entity.Entity](e entity.Entity) (T, bool) {
	v, ok := entity.Deref(e).(T)
	return v, ok
}

// ---------------------------------------------------------------------------
// Shared construction
// ---------------------------------------------------------------------------

// empty returns a geometry with no entity behind it.
func (c *Context) empty(typ string) *Geometry {
	color := aci.Resolve(entity.ColorByLayer, c.Options.FallbackColor, 0)
	g := &Geometry{
		Id:               uuid.NewString(),
		Type:             typ,
		Layer:            entity.DefaultLayer,
		Vertices:         []float64{},
		Indices:          []uint32{},
		Transform:        geom.Identity(),
		Color:            color,
		Material:         materialFor("", color, 0),
		Visible:          true,
		LineType:         entity.LineTypeContinuous,
		LineWeight:       entity.LineWeightDefault,
		LineTypeScale:    1,
		CoordinateSystem: CoordinateSystem,
	}
	g.setEmpty(geom.Vec3{})
	return g
}

// newGeometry fills the properties every kind shares.
func (c *Context) newGeometry(e entity.Entity) *Geometry {
	p := e.Props()
	layer := c.effectiveLayer(p.Layer)
	color := c.resolveColor(p, layer)
	scale := p.LineTypeScale
	if scale == 0 {
		scale = 1
	}
	return &Geometry{
		Id:               uuid.NewString(),
		Type:             e.Kind().String(),
		Handle:           p.Handle,
		Layer:            layer,
		Vertices:         []float64{},
		Indices:          []uint32{},
		Transform:        geom.Identity(),
		Color:            color,
		Material:         materialFor("", color, 0),
		Visible:          !p.Invisible,
		LineType:         c.resolveLineType(p.LineType, layer),
		LineWeight:       c.resolveLineWeight(p.LineWeight, layer),
		LineTypeScale:    scale,
		Thickness:        p.Thickness,
		CoordinateSystem: CoordinateSystem,
	}
}

// setBuffers stores the vertex data and everything derived from it.
func (g *Geometry) setBuffers(primitive string, points []geom.Vec3, indices []uint32) {
	if len(points) == 0 {
		g.setEmpty(g.Centroid)
		return
	}
	if indices == nil {
		indices = []uint32{}
	}
	g.PrimitiveType = primitive
	g.Vertices = geom.Flatten(points)
	g.Indices = indices
	g.VertexCount = len(points)
	b, _ := geom.BoundsOf(points)
	g.Bounds = &b
	g.Material = materialFor(primitive, g.Color, 0)
}

// setEmpty clears the buffers, leaving zero-extent bounds at anchor.
func (g *Geometry) setEmpty(anchor geom.Vec3) {
	g.PrimitiveType = ""
	g.Vertices = []float64{}
	g.Indices = []uint32{}
	g.Normals = nil
	g.UVs = nil
	g.VertexCount = 0
	g.Centroid = anchor
	g.Bounds = &geom.Bounds{Min: anchor, Max: anchor}
}

// extrude replaces the buffers with a wall swept from path along the
// normal by thickness. It reports false when there is nothing to sweep.
func (g *Geometry) extrude(path []geom.Vec3, closed bool, normal geom.Vec3, thickness float64) bool {
	if thickness == 0 || len(path) < 2 {
		return false
	}
	m := mesh.ExtrudeWalls(path, closed, geom.NormalOrZ(normal).Mul(thickness))
	if m.IsEmpty() {
		return false
	}
	g.setBuffers(PrimitiveTriangles, m.Points(), m.Indices)
	g.Normals = m.Normals
	g.UVs = m.UVs
	return true
}

// ---------------------------------------------------------------------------
// Property resolution
// ---------------------------------------------------------------------------

// effectiveLayer applies layer "0" inheritance inside blocks.
func (c *Context) effectiveLayer(layer string) string {
	if layer == "" {
		layer = entity.DefaultLayer
	}
	if layer == entity.DefaultLayer && c.parent != nil {
		return c.parent.layer
	}
	return layer
}

func (c *Context) layer(name string) (entity.Layer, bool) {
	if c.Options.Layers == nil {
		return entity.Layer{}, false
	}
	return c.Options.Layers.Layer(name)
}

// resolveColor applies true color, ByBlock and ByLayer rules.
func (c *Context) resolveColor(p entity.Common, layer string) aci.Color {
	if p.TrueColor != nil {
		return aci.FromTrueColor(*p.TrueColor, p.Transparency)
	}
	switch p.Color {
	case entity.ColorByBlock:
		if c.parent != nil {
			return aci.Resolve(entity.ColorByBlock, &c.parent.color, p.Transparency)
		}
		return aci.Resolve(entity.ColorByBlock, c.Options.FallbackColor, p.Transparency)
	case entity.ColorByLayer:
		if l, ok := c.layer(layer); ok {
			lc := layerColor(l)
			return aci.Resolve(entity.ColorByLayer, &lc, p.Transparency)
		}
		return aci.Resolve(entity.ColorByLayer, c.Options.FallbackColor, p.Transparency)
	}
	return aci.Resolve(p.Color, nil, p.Transparency)
}

// layerColor resolves a layer's own color. A negative index marks a layer
// that is switched off; the color is its absolute value.
func layerColor(l entity.Layer) aci.Color {
	if l.TrueColor != nil {
		return aci.FromTrueColor(*l.TrueColor, 0)
	}
	idx := l.Color
	if idx < 0 {
		idx = -idx
	}
	if c, ok := aci.Lookup(idx); ok {
		return c
	}
	return aci.Default(idx)
}

func (c *Context) resolveLineType(lt, layer string) string {
	switch {
	case lt == "" || strings.EqualFold(lt, entity.LineTypeByLayer):
		if l, ok := c.layer(layer); ok && l.LineType != "" {
			return l.LineType
		}
		return entity.LineTypeContinuous
	case strings.EqualFold(lt, entity.LineTypeByBlock):
		if c.parent != nil && c.parent.lineType != "" {
			return c.parent.lineType
		}
		return entity.LineTypeContinuous
	}
	return lt
}

func (c *Context) resolveLineWeight(lw int, layer string) int {
	switch lw {
	case entity.LineWeightByLayer:
		if l, ok := c.layer(layer); ok {
			return l.LineWeight
		}
		return entity.LineWeightDefault
	case entity.LineWeightByBlock:
		if c.parent != nil {
			return c.parent.lineWeight
		}
		return entity.LineWeightDefault
	}
	return lw
}
