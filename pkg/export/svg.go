package export

import (
	"bufio"
	"fmt"
	"html"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

const (
	defaultSVGWidth  = 800
	defaultSVGMargin = 10
)

// SVG draws a top-down preview of the input. Drawing Y points up, so the
// picture is flipped to SVG's downward Y.
type SVG struct {
	Width  int // canvas width in pixels, 800 when zero
	Margin int // blank border in pixels, 10 when zero
	Title  string
}

func (*SVG) Format() string { return "svg" }

func (x *SVG) Export(path string, geoms []*render.Geometry) error {
	ls := leaves(geoms)
	v, ok := x.view(ls)
	if !ok {
		return fmt.Errorf("export: svg: %w", ErrNothingToWrite)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: svg: %w", err)
	}
	w := bufio.NewWriter(f)
	canvas := svg.New(w)
	canvas.Start(v.width, v.height)
	if x.Title != "" {
		canvas.Title(x.Title)
	}
	for _, g := range ls {
		v.draw(canvas, g)
	}
	canvas.End()

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("export: svg: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: svg: %w", err)
	}
	return nil
}

// viewport maps drawing XY onto the canvas.
type viewport struct {
	width, height int
	margin        int
	scale         float64
	minX, maxY    float64
}

func (x *SVG) view(ls []*render.Geometry) (viewport, bool) {
	var (
		b     geom.Bounds
		found bool
	)
	for _, g := range ls {
		if g.Bounds == nil {
			continue
		}
		if !found {
			b, found = *g.Bounds, true
			continue
		}
		b = b.Union(*g.Bounds)
	}
	if !found {
		return viewport{}, false
	}

	width, margin := x.Width, x.Margin
	if width <= 0 {
		width = defaultSVGWidth
	}
	if margin <= 0 {
		margin = defaultSVGMargin
	}
	inner := float64(max(width-2*margin, 1))
	size := b.Size()
	extent := math.Max(size[0], size[1])
	scale := 1.0
	if extent > 0 {
		scale = inner / extent
	}
	return viewport{
		width:  width,
		height: int(math.Ceil(size[1]*scale)) + 2*margin,
		margin: margin,
		scale:  scale,
		minX:   b.Min[0],
		maxY:   b.Max[1],
	}, true
}

func (v viewport) project(p geom.Vec3) (int, int) {
	x := float64(v.margin) + (p[0]-v.minX)*v.scale
	y := float64(v.margin) + (v.maxY-p[1])*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (v viewport) draw(canvas *svg.SVG, g *render.Geometry) {
	color := g.Color.Hex
	if color == "" {
		color = "#000000"
	}
	attrs := []string{fmt.Sprintf(`data-layer="%s"`, html.EscapeString(g.Layer))}
	if g.Handle != "" {
		attrs = append(attrs, fmt.Sprintf(`data-handle="%s"`, html.EscapeString(g.Handle)))
	}

	switch g.PrimitiveType {
	case render.PrimitiveLines:
		canvas.Group(append(attrs, "fill:none;stroke:"+color+";stroke-width:1")...)
		for _, s := range segments(g) {
			x1, y1 := v.project(s[0])
			x2, y2 := v.project(s[1])
			canvas.Line(x1, y1, x2, y2)
		}
		canvas.Gend()
	case render.PrimitiveTriangles:
		style := fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:none", color, g.Material.Opacity)
		canvas.Group(append(attrs, style)...)
		for _, t := range triangles(g) {
			xs, ys := make([]int, 3), make([]int, 3)
			for i, p := range t {
				xs[i], ys[i] = v.project(p)
			}
			canvas.Polygon(xs, ys)
		}
		canvas.Gend()
	case render.PrimitivePoints:
		canvas.Group(append(attrs, "fill:"+color)...)
		for _, p := range g.Points() {
			x, y := v.project(p)
			canvas.Circle(x, y, 2)
		}
		canvas.Gend()
	}
}
