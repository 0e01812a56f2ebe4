package dxfload

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

const tol = 1e-9

func gbk(t *testing.T, s string) string {
	t.Helper()
	out, _, err := transform.String(simplifiedchinese.GBK.NewEncoder(), s)
	if err != nil {
		t.Fatalf("encode %q: %v", s, err)
	}
	return out
}

// section wraps group code/value pairs in a named DXF section.
func section(name string, pairs ...string) []string {
	out := append([]string{"0", "SECTION", "2", name}, pairs...)
	return append(out, "0", "ENDSEC")
}

// drawing joins sections into a DXF stream, one tag line per line.
func drawing(sections ...[]string) string {
	var lines []string
	for _, s := range sections {
		lines = append(lines, s...)
	}
	lines = append(lines, "0", "EOF")
	return strings.Join(lines, "\n") + "\n"
}

func read(t *testing.T, src string) *entity.Document {
	t.Helper()
	d, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return d
}

func only(t *testing.T, d *entity.Document) entity.Entity {
	t.Helper()
	if len(d.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(d.Entities))
	}
	return d.Entities[0]
}

func approx(a, b float64) bool { return math.Abs(a-b) < tol }

func vecApprox(a, b geom.Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.dxf"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "dxfload: open") {
		t.Errorf("error = %v", err)
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name     string
		entities []string
		check    func(t *testing.T, d *entity.Document)
	}{
		{
			name: "lwpolyline keeps bulge and elevation",
			entities: []string{
				"0", "LWPOLYLINE", "5", "2A", "8", "walls", "62", "1", "90", "2", "70", "0", "38", "1.5",
				"10", "0", "20", "0", "42", "1.0",
				"10", "10", "20", "0",
			},
			check: func(t *testing.T, d *entity.Document) {
				p, ok := only(t, d).(entity.Polyline2D)
				if !ok {
					t.Fatalf("got %T, want Polyline2D", d.Entities[0])
				}
				if p.Handle != "2A" || p.Color != 1 || p.Layer != "walls" || p.Closed {
					t.Errorf("common = %+v closed=%v", p.Common, p.Closed)
				}
				if len(p.Vertices) != 2 || p.Vertices[0].Bulge != 1 || p.Vertices[1].Location[2] != 1.5 {
					t.Errorf("vertices = %+v", p.Vertices)
				}
				g := render.Render(p)
				if !g.Polyline.HasBulges || !approx(g.Polyline.TotalLength, 5*math.Pi) {
					t.Errorf("half circle length = %v, want %v", g.Polyline.TotalLength, 5*math.Pi)
				}
			},
		},
		{
			name: "lwpolyline constant width and closed flag",
			entities: []string{
				"0", "LWPOLYLINE", "90", "3", "70", "1", "43", "0.5",
				"10", "0", "20", "0", "10", "1", "20", "0", "10", "1", "20", "1",
			},
			check: func(t *testing.T, d *entity.Document) {
				p := only(t, d).(entity.Polyline2D)
				if !p.Closed || p.Vertices[2].StartWidth != 0.5 || p.Vertices[2].EndWidth != 0.5 {
					t.Errorf("polyline = %+v", p)
				}
			},
		},
		{
			name: "closed 3d polyline keeps z",
			entities: []string{
				"0", "POLYLINE", "5", "3B", "8", "pipes", "66", "1", "70", "9", "10", "0", "20", "0", "30", "0",
				"0", "VERTEX", "8", "pipes", "10", "0", "20", "0", "30", "5", "70", "32",
				"0", "VERTEX", "8", "pipes", "10", "1", "20", "0", "30", "7", "70", "32",
				"0", "VERTEX", "8", "pipes", "10", "1", "20", "1", "30", "9", "70", "32",
				"0", "SEQEND",
			},
			check: func(t *testing.T, d *entity.Document) {
				p, ok := only(t, d).(entity.Polyline3D)
				if !ok {
					t.Fatalf("got %T, want Polyline3D", d.Entities[0])
				}
				if !p.Closed || p.Handle != "3B" || p.Layer != "pipes" {
					t.Errorf("polyline = %+v", p)
				}
				want := []geom.Vec3{{0, 0, 5}, {1, 0, 7}, {1, 1, 9}}
				if len(p.Vertices) != len(want) {
					t.Fatalf("vertices = %v", p.Vertices)
				}
				for i := range want {
					if p.Vertices[i] != want[i] {
						t.Errorf("vertex %d = %v, want %v", i, p.Vertices[i], want[i])
					}
				}
			},
		},
		{
			name: "2d polyline with repeated closing vertex",
			entities: []string{
				"0", "POLYLINE", "66", "1", "70", "0", "30", "2",
				"0", "VERTEX", "10", "0", "20", "0", "42", "0.5",
				"0", "VERTEX", "10", "4", "20", "0",
				"0", "VERTEX", "10", "4", "20", "4",
				"0", "VERTEX", "10", "0", "20", "0",
				"0", "SEQEND",
			},
			check: func(t *testing.T, d *entity.Document) {
				p, ok := only(t, d).(entity.Polyline2D)
				if !ok {
					t.Fatalf("got %T, want Polyline2D", d.Entities[0])
				}
				if !p.Closed || len(p.Vertices) != 3 || p.Elevation != 2 {
					t.Errorf("polyline = %+v", p)
				}
				if p.Vertices[0].Bulge != 0.5 || p.Vertices[1].Location[2] != 2 {
					t.Errorf("vertices = %+v", p.Vertices)
				}
			},
		},
		{
			name: "polygon mesh",
			entities: []string{
				"0", "POLYLINE", "66", "1", "70", "16", "71", "2", "72", "2",
				"0", "VERTEX", "10", "0", "20", "0", "70", "64",
				"0", "VERTEX", "10", "0", "20", "1", "70", "64",
				"0", "VERTEX", "10", "1", "20", "0", "70", "64",
				"0", "VERTEX", "10", "1", "20", "1", "70", "64",
				"0", "SEQEND",
			},
			check: func(t *testing.T, d *entity.Document) {
				m, ok := only(t, d).(entity.PolygonMesh)
				if !ok {
					t.Fatalf("got %T, want PolygonMesh", d.Entities[0])
				}
				if m.MCount != 2 || m.NCount != 2 || len(m.Vertices) != 4 {
					t.Errorf("mesh = %+v", m)
				}
			},
		},
		{
			name: "polyface mesh is skipped",
			entities: []string{
				"0", "POLYLINE", "66", "1", "70", "64",
				"0", "VERTEX", "10", "0", "20", "0", "70", "192",
				"0", "SEQEND",
				"0", "POINT", "10", "1", "20", "2", "30", "3",
			},
			check: func(t *testing.T, d *entity.Document) {
				p, ok := only(t, d).(entity.Point)
				if !ok || p.Location != (geom.Vec3{1, 2, 3}) {
					t.Errorf("got %+v", d.Entities[0])
				}
			},
		},
		{
			name:     "circle defaults",
			entities: []string{"0", "CIRCLE", "5", "4C", "10", "5", "20", "5", "30", "0", "40", "2"},
			check: func(t *testing.T, d *entity.Document) {
				c, ok := only(t, d).(entity.Circle)
				if !ok {
					t.Fatalf("got %T, want Circle", d.Entities[0])
				}
				if c.Handle != "4C" || c.Radius != 2 || c.Center != (geom.Vec3{5, 5, 0}) {
					t.Errorf("circle = %+v", c)
				}
				if c.Layer != entity.DefaultLayer || c.Color != entity.ColorByLayer ||
					c.LineType != entity.LineTypeByLayer || c.LineTypeScale != 1 {
					t.Errorf("common = %+v", c.Common)
				}
				if c.UnitNormal() != (geom.Vec3{0, 0, 1}) {
					t.Errorf("normal = %v", c.Normal)
				}
			},
		},
		{
			name:     "arc angles become radians",
			entities: []string{"0", "ARC", "10", "0", "20", "0", "40", "3", "50", "90", "51", "180"},
			check: func(t *testing.T, d *entity.Document) {
				a := only(t, d).(entity.Arc)
				if !approx(a.StartAngle, math.Pi/2) || !approx(a.EndAngle, math.Pi) || a.Radius != 3 {
					t.Errorf("arc = %+v", a)
				}
			},
		},
		{
			name: "line true color and transparency",
			entities: []string{
				"0", "LINE", "5", "1F", "62", "3", "420", "16711680", "440", "33554559",
				"10", "0", "20", "0", "11", "4", "21", "0",
			},
			check: func(t *testing.T, d *entity.Document) {
				l := only(t, d).(entity.Line)
				if l.TrueColor == nil || *l.TrueColor != 0xFF0000 {
					t.Errorf("TrueColor = %v", l.TrueColor)
				}
				if l.Color != 3 || l.Transparency != 128 {
					t.Errorf("color %d transparency %d", l.Color, l.Transparency)
				}
				if l.End != (geom.Vec3{4, 0, 0}) {
					t.Errorf("End = %v", l.End)
				}
			},
		},
		{
			name: "justified text uses the second point",
			entities: []string{
				"0", "TEXT", "1", "hello", "10", "1", "20", "2", "40", "2.5", "50", "90",
				"72", "1", "11", "3", "21", "2",
			},
			check: func(t *testing.T, d *entity.Document) {
				x := only(t, d).(entity.Text)
				if x.Value != "hello" || x.Height != 2.5 || x.HAlign != entity.HAlignCenter || x.WidthFactor != 1 {
					t.Errorf("text = %+v", x)
				}
				if !approx(x.Rotation, math.Pi/2) {
					t.Errorf("Rotation = %v", x.Rotation)
				}
				if x.AlignmentPoint == nil || *x.AlignmentPoint != (geom.Vec3{3, 2, 0}) {
					t.Errorf("AlignmentPoint = %v", x.AlignmentPoint)
				}
			},
		},
		{
			name:     "left text ignores the second point",
			entities: []string{"0", "TEXT", "1", "x", "10", "1", "20", "2", "40", "1"},
			check: func(t *testing.T, d *entity.Document) {
				if x := only(t, d).(entity.Text); x.AlignmentPoint != nil {
					t.Errorf("AlignmentPoint = %v", x.AlignmentPoint)
				}
			},
		},
		{
			name: "ellipse",
			entities: []string{
				"0", "ELLIPSE", "10", "0", "20", "0", "11", "4", "21", "0", "40", "0.5",
				"41", "0", "42", "3.141592653589793",
			},
			check: func(t *testing.T, d *entity.Document) {
				e := only(t, d).(entity.Ellipse)
				if e.MajorAxis != (geom.Vec3{4, 0, 0}) || e.Ratio != 0.5 || !approx(e.EndParam, math.Pi) {
					t.Errorf("ellipse = %+v", e)
				}
			},
		},
		{
			name: "spline",
			entities: []string{
				"0", "SPLINE", "70", "8", "71", "2",
				"40", "0", "40", "0", "40", "0", "40", "1", "40", "1", "40", "1",
				"10", "0", "20", "0", "30", "0",
				"10", "1", "20", "1", "30", "0",
				"10", "2", "20", "0", "30", "0",
			},
			check: func(t *testing.T, d *entity.Document) {
				s := only(t, d).(entity.Spline)
				if s.Degree != 2 || len(s.ControlPoints) != 3 || len(s.Knots) != 6 || s.FitPoints != nil {
					t.Errorf("spline = %+v", s)
				}
				if s.ControlPoints[1] != (geom.Vec3{1, 1, 0}) {
					t.Errorf("control points = %v", s.ControlPoints)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, read(t, drawing(section("ENTITIES", tc.entities...))))
		})
	}
}

func TestReadBlocksAndInserts(t *testing.T) {
	src := drawing(
		section("BLOCKS",
			"0", "BLOCK", "2", "*Model_Space", "10", "0", "20", "0", "30", "0",
			"0", "ENDBLK",
			"0", "BLOCK", "2", "DOOR", "8", "0", "10", "1", "20", "0", "30", "0",
			"0", "LINE", "5", "D1", "8", "0", "10", "0", "20", "0", "11", "1", "21", "0",
			"0", "ENDBLK",
		),
		section("ENTITIES",
			"0", "INSERT", "5", "5D", "8", "doors", "2", "DOOR", "10", "4", "20", "0", "30", "0",
			"41", "2", "50", "90",
		),
	)
	d := read(t, src)

	if len(d.Blocks) != 1 {
		t.Fatalf("blocks = %v, want DOOR only", d.Blocks)
	}
	b, ok := d.Block("DOOR")
	if !ok || b.BasePoint != (geom.Vec3{1, 0, 0}) || len(b.Entities) != 1 {
		t.Fatalf("block = %+v", b)
	}
	ins, ok := only(t, d).(entity.Insert)
	if !ok {
		t.Fatalf("got %T, want Insert", d.Entities[0])
	}
	if ins.Handle != "5D" || ins.XScale != 2 || ins.YScale != 1 || ins.RowCount != 1 || ins.ColumnCount != 1 {
		t.Errorf("insert = %+v", ins)
	}
	if !approx(ins.Rotation, math.Pi/2) {
		t.Errorf("Rotation = %v", ins.Rotation)
	}
	if _, ok := d.Layers["doors"]; !ok {
		t.Error("insert layer should be registered")
	}

	g := render.Render(ins, render.WithDocument(d))
	if g.Insert == nil || g.Insert.MissingBlock {
		t.Fatalf("insert section = %+v", g.Insert)
	}
	leaves := render.Leaves(g)
	if len(leaves) != 1 || leaves[0].Handle != "D1" {
		t.Fatalf("leaves = %v", leaves)
	}
	pts := leaves[0].Points()
	if !vecApprox(pts[0], geom.Vec3{4, -2, 0}) || !vecApprox(pts[1], geom.Vec3{4, 0, 0}) {
		t.Errorf("placed line = %v", pts)
	}
}

func TestReadLayerTable(t *testing.T) {
	src := drawing(
		section("TABLES",
			"0", "TABLE", "2", "LAYER", "70", "1",
			"0", "LAYER", "2", "walls", "70", "0", "62", "-3", "6", "DASHED",
			"0", "ENDTAB",
		),
		section("ENTITIES", "0", "LINE", "8", "walls", "10", "0", "20", "0", "11", "1", "21", "0"),
	)
	d := read(t, src)
	l, ok := d.Layer("walls")
	if !ok {
		t.Fatal("layer walls missing")
	}
	if l.Color != 3 || !l.Off || l.LineType != "DASHED" {
		t.Errorf("layer = %+v", l)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	src := drawing(section("ENTITIES", "0", "POINT", "10", "1", "20", "1", "30", "0"))
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Entities) != 1 {
		t.Errorf("entities = %d", len(d.Entities))
	}
}

func TestFoldClosing(t *testing.T) {
	id := func(v geom.Vec3) geom.Vec3 { return v }
	tests := []struct {
		name       string
		pts        []geom.Vec3
		closed     bool
		wantLen    int
		wantClosed bool
	}{
		{"single point", []geom.Vec3{{0, 0, 0}}, false, 1, false},
		{"open", []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, false, 3, false},
		{"flag closed", []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, true, 3, true},
		{"repeated end", []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}}, false, 3, true},
		{"two equal points stay", []geom.Vec3{{0, 0, 0}, {0, 0, 0}}, false, 2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pts, closed := foldClosing(tc.pts, id, tc.closed)
			if len(pts) != tc.wantLen || closed != tc.wantClosed {
				t.Errorf("got %d points closed=%v, want %d closed=%v", len(pts), closed, tc.wantLen, tc.wantClosed)
			}
		})
	}
}

func TestDecoderPassesUTF8Through(t *testing.T) {
	dec := newDecoder([]string{"0", "墙体", "walls"})
	if dec.enc != nil {
		t.Error("valid UTF-8 names should not pick a legacy encoding")
	}
	if got := dec.decode("墙体"); got != "墙体" {
		t.Errorf("decode = %q", got)
	}
}

func TestDecoderReadsGBK(t *testing.T) {
	raw := gbk(t, "墙体")
	for _, charset := range []string{"GB-18030", "", "ISO-8859-1"} {
		dec := &decoder{enc: encodingFor(charset)}
		if got := dec.decode(raw); got != "墙体" {
			t.Errorf("charset %q: decode = %q", charset, got)
		}
	}
	dec := newDecoder([]string{raw, gbk(t, "门窗"), "0"})
	if dec.enc == nil {
		t.Fatal("legacy names should pick an encoding")
	}
	if got := dec.decode("plain"); got != "plain" {
		t.Errorf("ASCII should survive any decoder, got %q", got)
	}
}

func TestNilDecoder(t *testing.T) {
	var dec *decoder
	if got := dec.decode("x"); got != "x" {
		t.Errorf("decode = %q", got)
	}
}
