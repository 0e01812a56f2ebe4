package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

func sampleGeometries() []*render.Geometry {
	d := entity.NewDocument()
	d.AddLayer(&entity.Layer{Name: "walls", Color: 1})
	d.AddBlock(&entity.Block{Name: "TRI", Entities: []entity.Entity{
		entity.Solid{Corners: [4]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 1, 0}}},
	}})
	d.Add(
		entity.Line{
			Common: entity.Common{Handle: "L1", Layer: "walls", Color: entity.ColorByLayer},
			Start:  geom.Vec3{0, 0, 0},
			End:    geom.Vec3{10, 0, 0},
		},
		entity.Face3D{
			Common:  entity.Common{Handle: "F1", Color: 3},
			Corners: [4]geom.Vec3{{0, 0, 0}, {10, 0, 0}, {5, 10, 0}, {5, 10, 0}},
		},
		entity.Point{Common: entity.Common{Handle: "P1"}, Location: geom.Vec3{3, 3, 0}},
		entity.Insert{BlockName: "TRI", InsertPoint: geom.Vec3{20, 0, 0}},
	)
	return render.RenderAll(d.Entities, render.WithDocument(d))
}

func countTriangles(geoms []*render.Geometry) int {
	n := 0
	for _, g := range leaves(geoms) {
		n += len(triangles(g))
	}
	return n
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		format  string
		wantErr bool
	}{
		{"out.json", "json", false},
		{"OUT.STL", "stl", false},
		{"plan.svg", "svg", false},
		{"a/b/c.dxf", "dxf", false},
		{"model.obj", "", true},
		{"noext", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			x, err := ForPath(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %T", x)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if x.Format() != tc.format {
				t.Errorf("Format() = %q, want %q", x.Format(), tc.format)
			}
		})
	}
}

func TestJSONExport(t *testing.T) {
	geoms := sampleGeometries()
	path := filepath.Join(t.TempDir(), "out.json")
	if err := Export(path, geoms); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back []*render.Geometry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(back) != len(geoms) {
		t.Fatalf("got %d geometries back, want %d", len(back), len(geoms))
	}
	if back[0].Handle != "L1" || back[3].Insert == nil {
		t.Errorf("round trip lost data: %+v", back[0])
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := (&JSON{}).Export(empty, nil); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(empty)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty export = %q", data)
	}
}

func TestSTLExport(t *testing.T) {
	geoms := sampleGeometries()
	n := countTriangles(geoms)
	if n != 2 {
		t.Fatalf("sample should hold 2 triangles, got %d", n)
	}
	path := filepath.Join(t.TempDir(), "out.stl")
	if err := Export(path, geoms); err != nil {
		t.Fatalf("Export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(84 + 50*n); info.Size() != want {
		t.Errorf("binary STL size = %d, want %d", info.Size(), want)
	}
}

func TestSTLNeedsTriangles(t *testing.T) {
	lines := render.RenderAll([]entity.Entity{entity.Line{End: geom.Vec3{1, 0, 0}}})
	err := (&STL{}).Export(filepath.Join(t.TempDir(), "x.stl"), lines)
	if !errors.Is(err, ErrNothingToWrite) {
		t.Errorf("err = %v, want ErrNothingToWrite", err)
	}
}

func TestSVGExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.svg")
	x := &SVG{Width: 200, Title: "plan"}
	if err := x.Export(path, sampleGeometries()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"<svg", "</svg>", "<title>plan</title>", "<line", "<polygon", "<circle", `data-layer="walls"`, "#FF0000"} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG is missing %q", want)
		}
	}
}

func TestSVGViewport(t *testing.T) {
	g := render.Render(entity.Line{Start: geom.Vec3{0, 0, 0}, End: geom.Vec3{100, 50, 0}})
	v, ok := (&SVG{Width: 120, Margin: 10}).view([]*render.Geometry{g})
	if !ok {
		t.Fatal("expected a viewport")
	}
	if v.scale != 1 || v.height != 70 {
		t.Errorf("scale=%v height=%d", v.scale, v.height)
	}
	if x, y := v.project(geom.Vec3{0, 0, 0}); x != 10 || y != 60 {
		t.Errorf("origin maps to (%d,%d), want (10,60)", x, y)
	}
	if x, y := v.project(geom.Vec3{100, 50, 0}); x != 110 || y != 10 {
		t.Errorf("far corner maps to (%d,%d), want (110,10)", x, y)
	}
	if _, ok := (&SVG{}).view(nil); ok {
		t.Error("no geometry should give no viewport")
	}
}

func TestDXFExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	if err := Export(path, sampleGeometries()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if got := strings.Count(out, "LWPOLYLINE"); got < 3 {
		t.Errorf("expected at least 3 LWPOLYLINE entities, got %d", got)
	}
	if !strings.Contains(out, "walls") {
		t.Error("layer walls should be written")
	}
}

func TestDXFNeedsOutlines(t *testing.T) {
	points := render.RenderAll([]entity.Entity{entity.Point{}})
	err := (&DXF{}).Export(filepath.Join(t.TempDir(), "x.dxf"), points)
	if !errors.Is(err, ErrNothingToWrite) {
		t.Errorf("err = %v, want ErrNothingToWrite", err)
	}
}

func TestOutlinesOf(t *testing.T) {
	tri := render.Render(entity.Face3D{Corners: [4]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 1, 0}}})
	o := outlinesOf(tri)
	if len(o) != 1 || len(o[0]) != 4 || o[0][0] != o[0][3] {
		t.Errorf("triangle outline = %v", o)
	}
	line := render.Render(entity.Line{End: geom.Vec3{2, 0, 0}})
	if o := outlinesOf(line); len(o) != 1 || len(o[0]) != 2 {
		t.Errorf("line outline = %v", o)
	}
}
