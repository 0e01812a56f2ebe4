package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	dxfentity "github.com/yofu/dxf/entity"

	"github.com/chazu/cadmesh/pkg/aci"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

// DXF writes an exploded plan drawing: every line segment becomes a two
// vertex LWPOLYLINE and every triangle a closed outline. Layers are
// recreated with the nearest palette color of their first geometry.
type DXF struct{}

func (*DXF) Format() string { return "dxf" }

func (*DXF) Export(path string, geoms []*render.Geometry) error {
	ls := leaves(geoms)
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	layers := map[string]bool{"0": true}
	written := 0
	for _, g := range ls {
		outlines := outlinesOf(g)
		if len(outlines) == 0 {
			continue
		}
		layer := g.Layer
		if layer == "" {
			layer = "0"
		}
		if !layers[layer] {
			if _, err := d.AddLayer(layer, paletteColor(g.Color), dxf.DefaultLineType, false); err != nil {
				return fmt.Errorf("export: dxf: layer %q: %w", layer, err)
			}
			layers[layer] = true
		}
		if err := d.ChangeLayer(layer); err != nil {
			return fmt.Errorf("export: dxf: layer %q: %w", layer, err)
		}
		for _, o := range outlines {
			lwp := dxfentity.NewLwPolyline(len(o))
			for i, p := range o {
				lwp.Vertices[i] = []float64{p[0], p[1]}
			}
			d.AddEntity(lwp)
			written++
		}
	}
	if written == 0 {
		return fmt.Errorf("export: dxf: %w", ErrNothingToWrite)
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: dxf: %w", err)
	}
	return nil
}

// outlinesOf returns the vertex runs to draw for g. Triangles repeat
// their first corner to close.
func outlinesOf(g *render.Geometry) [][]geom.Vec3 {
	var out [][]geom.Vec3
	for _, s := range segments(g) {
		out = append(out, []geom.Vec3{s[0], s[1]})
	}
	for _, t := range triangles(g) {
		out = append(out, []geom.Vec3{t[0], t[1], t[2], t[0]})
	}
	return out
}

func paletteColor(c aci.Color) color.ColorNumber {
	if aci.InPalette(c.Index) {
		return color.ColorNumber(c.Index)
	}
	return color.ColorNumber(aci.Nearest(c.R, c.G, c.B))
}
