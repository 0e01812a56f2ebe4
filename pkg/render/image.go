package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/mesh"
)

// Image section types.
const (
	ImageRaster  = "RasterImage"
	ImagePdf     = "PdfUnderlay"
	ImageWipeout = "Wipeout"
)

// imageFrame places an image: world = origin + u*U + v*V for image
// coordinates (u, v) in [0, size].
type imageFrame struct {
	origin geom.Vec3
	u, v   geom.Vec3
	size   geom.Vec2
	normal geom.Vec3
}

func (f imageFrame) at(u, v float64) geom.Vec3 {
	return f.origin.Add(f.u.Mul(u)).Add(f.v.Mul(v))
}

func (f imageFrame) corners() []geom.Vec3 {
	w, h := f.size[0], f.size[1]
	return []geom.Vec3{f.at(0, 0), f.at(w, 0), f.at(w, h), f.at(0, h)}
}

// uv maps image coordinates into [0,1] texture space.
func (f imageFrame) uv(p geom.Vec2) (float64, float64) {
	var s, t float64
	if f.size[0] > 0 {
		s = p[0] / f.size[0]
	}
	if f.size[1] > 0 {
		t = p[1] / f.size[1]
	}
	return geom.Clamp01(s), geom.Clamp01(t)
}

// newFrame fixes up missing vectors: a zero U becomes the plane X axis, a
// zero V the in-plane perpendicular of U, a zero size one unit.
func newFrame(origin, u, v geom.Vec3, size geom.Vec2, normal geom.Vec3) imageFrame {
	n := geom.NormalOrZ(normal)
	x, y, _ := geom.Basis(n)
	if u.Len() < geom.Epsilon {
		u = x
	}
	if v.Len() < geom.Epsilon {
		if perp, ok := geom.Normalize(n.Cross(u)); ok {
			v = perp.Mul(u.Len())
		} else {
			v = y
		}
	}
	if size[0] <= 0 {
		size[0] = 1
	}
	if size[1] <= 0 {
		size[1] = 1
	}
	if un, ok := geom.Normalize(u.Cross(v)); ok {
		n = un
	}
	return imageFrame{origin: origin, u: u, v: v, size: size, normal: n}
}

func renderRasterImage(e entity.Entity, c *Context) *Geometry {
	im, ok := as[entity.RasterImage](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	f := newFrame(im.InsertPoint, im.UVector, im.VVector, im.Size, im.UnitNormal())
	g.Image = &ImageSection{
		ImageType:   ImageRaster,
		FileName:    im.FileName,
		InsertPoint: im.InsertPoint,
		UVector:     im.UVector,
		VVector:     im.VVector,
		Size:        im.Size,
		Fade:        im.Fade,
		Brightness:  im.Brightness,
		Contrast:    im.Contrast,
	}
	return finishImage(g, f, im.ClipBoundary, im.ClipType, im.Fade, im.FileName)
}

func renderPdfUnderlay(e entity.Entity, c *Context) *Geometry {
	pu, ok := as[entity.PdfUnderlay](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	xs, ys := pu.XScale, pu.YScale
	if xs == 0 {
		xs = 1
	}
	if ys == 0 {
		ys = 1
	}
	rot := geom.PlaneRotation(pu.UnitNormal(), pu.Rotation)
	u := geom.ApplyDirection(rot, geom.XAxis).Mul(xs)
	v := geom.ApplyDirection(rot, geom.YAxis).Mul(ys)
	f := newFrame(pu.InsertPoint, u, v, pu.PageSize, pu.UnitNormal())
	g.Image = &ImageSection{
		ImageType:   ImagePdf,
		FileName:    pu.FileName,
		Page:        pu.Page,
		InsertPoint: pu.InsertPoint,
		UVector:     u,
		VVector:     v,
		Size:        pu.PageSize,
		Fade:        pu.Fade,
		Contrast:    pu.Contrast,
		Monochrome:  pu.Monochrome,
	}
	return finishImage(g, f, pu.ClipBoundary, entity.ClipPolygonal, pu.Fade, pu.FileName)
}

func renderWipeout(e entity.Entity, c *Context) *Geometry {
	w, ok := as[entity.Wipeout](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	f := newFrame(w.InsertPoint, w.UVector, w.VVector, w.Size, w.UnitNormal())
	g.Image = &ImageSection{
		ImageType:   ImageWipeout,
		InsertPoint: w.InsertPoint,
		UVector:     w.UVector,
		VVector:     w.VVector,
		Size:        w.Size,
	}
	return finishImage(g, f, w.ClipBoundary, w.ClipType, 0, "")
}

// finishImage fills the quad, or the clipped outline, of an image frame.
func finishImage(g *Geometry, f imageFrame, boundary []geom.Vec2, clipType, fade int, texture string) *Geometry {
	s := g.Image
	corners := f.corners()
	s.Corners = corners
	s.Width = f.u.Len() * f.size[0]
	s.Height = f.v.Len() * f.size[1]

	mode, outline := clipOutline(boundary, clipType)
	s.ClipMode = mode

	g.RequiresYAxisFlip = true
	ux, _ := geom.Normalize(f.u)
	vy, _ := geom.Normalize(f.v)
	rot := mgl64.Mat4FromCols(ux.Vec4(0), vy.Vec4(0), f.normal.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	g.Transform = geom.NewTransform(f.origin, rot, geom.Vec3{s.Width, s.Height, 1})

	var (
		points  []geom.Vec3
		indices []uint32
		uvs     []float64
	)
	if mode == ClipNone {
		points = corners
		indices = append([]uint32(nil), quadIndices...)
		uvs = mesh.CornerUVs()
	} else {
		points = lo.Map(outline, func(p geom.Vec2, _ int) geom.Vec3 { return f.at(p[0], p[1]) })
		s.ClipBoundary = points
		indices = mesh.EarClip(points)
		for _, p := range outline {
			u, v := f.uv(p)
			uvs = append(uvs, u, v)
		}
	}

	g.Centroid = geom.PolygonCentroid(points)
	g.setBuffers(PrimitiveTriangles, points, indices)
	g.Normals = geom.Flatten(repeat(f.normal, len(points)))
	g.UVs = uvs
	g.Material = basicMaterial(g.Color, fade)
	g.Material.Texture = texture
	return g
}

// clipOutline turns a stored clip boundary into a polygon in image
// coordinates. Two points are opposite rectangle corners; three or more a
// polygon unless the type says rectangular, in which case their extent is
// used. Unknown types fall back to the rectangle.
func clipOutline(boundary []geom.Vec2, clipType int) (string, []geom.Vec2) {
	if len(boundary) < 2 {
		return ClipNone, nil
	}
	if len(boundary) >= 3 && (clipType == entity.ClipPolygonal || clipType == 0) {
		pts := boundary
		if pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) >= 3 {
			return ClipPolygon, pts
		}
	}
	lower, upper := boundary[0], boundary[0]
	for _, p := range boundary[1:] {
		lower = geom.Vec2{min(lower[0], p[0]), min(lower[1], p[1])}
		upper = geom.Vec2{max(upper[0], p[0]), max(upper[1], p[1])}
	}
	return ClipRectangle, []geom.Vec2{lower, {upper[0], lower[1]}, upper, {lower[0], upper[1]}}
}
