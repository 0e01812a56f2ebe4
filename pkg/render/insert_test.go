package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
)

// unitLine is a ByBlock line on layer 0 from (0,0,0) to (1,0,0).
func unitLine() entity.Line {
	return entity.Line{
		Common: entity.Common{Layer: entity.DefaultLayer, Color: entity.ColorByBlock},
		End:    geom.Vec3{1, 0, 0},
	}
}

func docWithBlocks(blocks ...*entity.Block) *entity.Document {
	doc := entity.NewDocument()
	doc.AddLayer(&entity.Layer{Name: "walls", Color: 5})
	for _, b := range blocks {
		doc.AddBlock(b)
	}
	return doc
}

func firstVertex(g *Geometry) geom.Vec3 {
	return geom.Vec3{g.Vertices[0], g.Vertices[1], g.Vertices[2]}
}

func TestInsertArray(t *testing.T) {
	doc := docWithBlocks(&entity.Block{Name: "DOOR", Entities: []entity.Entity{unitLine()}})
	g := Render(entity.Insert{
		Common:        entity.Common{Layer: "walls", Color: 1},
		BlockName:     "DOOR",
		InsertPoint:   geom.Vec3{100, 0, 0},
		RowCount:      3,
		ColumnCount:   2,
		RowSpacing:    10,
		ColumnSpacing: 15,
	}, WithDocument(doc))
	checkInvariants(t, g)

	s := g.Insert
	if !s.IsMultiple || len(s.Replicas) != 6 || s.MissingBlock || s.Cyclic || s.DepthLimited {
		t.Fatalf("section = %+v", s)
	}
	last := s.Replicas[5]
	if last.Row != 2 || last.Column != 1 || len(last.Children) != 1 {
		t.Fatalf("last replica = %+v", last)
	}
	child := last.Children[0]
	if p := firstVertex(child); !vecApprox(p, geom.Vec3{115, 20, 0}, 1e-9) {
		t.Errorf("child start = %v, want (115,20,0)", p)
	}
	if child.Layer != "walls" || child.Color.Hex != "#FF0000" {
		t.Errorf("child inherited layer %q color %s", child.Layer, child.Color.Hex)
	}
	if !vecApprox(g.Bounds.Min, geom.Vec3{100, 0, 0}, 1e-9) || !vecApprox(g.Bounds.Max, geom.Vec3{116, 20, 0}, 1e-9) {
		t.Errorf("bounds = %+v", *g.Bounds)
	}
	if !vecApprox(g.Centroid, g.Bounds.Center(), 1e-12) {
		t.Errorf("centroid %v not at bounds center", g.Centroid)
	}
	if got := len(Leaves(g)); got != 6 {
		t.Errorf("Leaves = %d, want 6", got)
	}
}

func TestInsertDoesNotMutateBlock(t *testing.T) {
	line := unitLine()
	block := &entity.Block{Name: "B", Entities: []entity.Entity{&line}}
	doc := docWithBlocks(block)
	Render(entity.Insert{BlockName: "B", InsertPoint: geom.Vec3{7, 7, 0}, XScale: 3}, WithDocument(doc))
	if line.End != (geom.Vec3{1, 0, 0}) || line.Layer != entity.DefaultLayer {
		t.Errorf("block entity changed: %+v", line)
	}
}

func TestInsertPlacement(t *testing.T) {
	tests := []struct {
		name       string
		base       geom.Vec3
		ins        entity.Insert
		start, end geom.Vec3
	}{
		{
			name:  "rotated",
			ins:   entity.Insert{Rotation: math.Pi / 2},
			start: geom.Vec3{0, 0, 0},
			end:   geom.Vec3{0, 1, 0},
		},
		{
			name:  "base point",
			base:  geom.Vec3{5, 5, 0},
			ins:   entity.Insert{InsertPoint: geom.Vec3{1, 1, 0}},
			start: geom.Vec3{-4, -4, 0},
			end:   geom.Vec3{-3, -4, 0},
		},
		{
			name:  "scaled",
			ins:   entity.Insert{XScale: 2, YScale: 2, ZScale: 2, InsertPoint: geom.Vec3{0, 0, 1}},
			start: geom.Vec3{0, 0, 1},
			end:   geom.Vec3{2, 0, 1},
		},
		{
			name:  "zero scale means one",
			ins:   entity.Insert{XScale: 0, YScale: 0, ZScale: 0},
			start: geom.Vec3{0, 0, 0},
			end:   geom.Vec3{1, 0, 0},
		},
		{
			name:  "mirrored",
			ins:   entity.Insert{XScale: -1, YScale: 1, ZScale: 1},
			start: geom.Vec3{0, 0, 0},
			end:   geom.Vec3{-1, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWithBlocks(&entity.Block{Name: "L", BasePoint: tt.base, Entities: []entity.Entity{unitLine()}})
			tt.ins.BlockName = "L"
			g := Render(tt.ins, WithDocument(doc))
			checkInvariants(t, g)
			leaves := Leaves(g)
			if len(leaves) != 1 {
				t.Fatalf("got %d leaves", len(leaves))
			}
			pts := leaves[0].Points()
			if !vecApprox(pts[0], tt.start, 1e-9) || !vecApprox(pts[1], tt.end, 1e-9) {
				t.Errorf("line = %v -> %v, want %v -> %v", pts[0], pts[1], tt.start, tt.end)
			}
		})
	}
}

func TestNestedInserts(t *testing.T) {
	inner := &entity.Block{Name: "DOOR", Entities: []entity.Entity{unitLine()}}
	outer := &entity.Block{Name: "ROOM", Entities: []entity.Entity{
		entity.Insert{BlockName: "DOOR", InsertPoint: geom.Vec3{10, 0, 0}},
	}}
	doc := docWithBlocks(inner, outer)
	g := Render(entity.Insert{
		BlockName:   "ROOM",
		InsertPoint: geom.Vec3{0, 100, 0},
		XScale:      2, YScale: 2, ZScale: 2,
	}, WithDocument(doc))
	checkInvariants(t, g)

	nested := g.Insert.Replicas[0].Children[0]
	if nested.Insert == nil || nested.Insert.Depth != 1 {
		t.Fatalf("nested insert = %+v", nested.Insert)
	}
	leaves := Leaves(g)
	if len(leaves) != 1 {
		t.Fatalf("got %d leaves", len(leaves))
	}
	pts := leaves[0].Points()
	if !vecApprox(pts[0], geom.Vec3{20, 100, 0}, 1e-9) || !vecApprox(pts[1], geom.Vec3{22, 100, 0}, 1e-9) {
		t.Errorf("leaf line = %v", pts)
	}
	if !vecApprox(g.Bounds.Min, geom.Vec3{20, 100, 0}, 1e-9) {
		t.Errorf("outer bounds = %+v", *g.Bounds)
	}
	if !vecApprox(nested.Transform.Position, geom.Vec3{20, 100, 0}, 1e-9) {
		t.Errorf("nested transform position = %v", nested.Transform.Position)
	}
}

func TestInsertUnexpandable(t *testing.T) {
	selfRef := &entity.Block{Name: "LOOP", Entities: []entity.Entity{
		unitLine(),
		entity.Insert{BlockName: "loop"},
	}}
	doc := docWithBlocks(selfRef, &entity.Block{Name: "L", Entities: []entity.Entity{unitLine()}})

	t.Run("missing block", func(t *testing.T) {
		g := Render(entity.Insert{BlockName: "nope", InsertPoint: geom.Vec3{3, 4, 0}}, WithDocument(doc))
		checkInvariants(t, g)
		if !g.Insert.MissingBlock || len(g.Insert.Replicas) != 0 {
			t.Errorf("section = %+v", g.Insert)
		}
		if g.Bounds.Min != (geom.Vec3{3, 4, 0}) || g.Bounds.Max != (geom.Vec3{3, 4, 0}) {
			t.Errorf("bounds = %+v", *g.Bounds)
		}
	})

	t.Run("no block table", func(t *testing.T) {
		g := Render(entity.Insert{BlockName: "L"})
		if !g.Insert.MissingBlock {
			t.Error("insert without a block resolver should report the block missing")
		}
	})

	t.Run("cycle", func(t *testing.T) {
		g := Render(entity.Insert{BlockName: "LOOP"}, WithDocument(doc))
		checkInvariants(t, g)
		children := g.Insert.Replicas[0].Children
		if len(children) != 2 {
			t.Fatalf("got %d children", len(children))
		}
		inner := children[1].Insert
		if inner == nil || !inner.Cyclic || len(inner.Replicas) != 0 {
			t.Errorf("inner insert = %+v", inner)
		}
		if len(Leaves(g)) != 1 {
			t.Errorf("only the line should render, got %d leaves", len(Leaves(g)))
		}
	})

	t.Run("depth limit", func(t *testing.T) {
		g := Render(entity.Insert{BlockName: "L"}, WithDocument(doc), WithMaxInsertDepth(0))
		if !g.Insert.DepthLimited || len(g.Insert.Replicas) != 0 {
			t.Errorf("section = %+v", g.Insert)
		}
		g = Render(entity.Insert{BlockName: "L"}, WithDocument(doc), WithMaxInsertDepth(1))
		if g.Insert.DepthLimited || len(Leaves(g)) != 1 {
			t.Errorf("depth 1 should expand one level: %+v", g.Insert)
		}
	})
}

func TestDeepNestingIsCapped(t *testing.T) {
	doc := docWithBlocks()
	names := []string{"B0", "B1", "B2", "B3", "B4"}
	for i, name := range names {
		var ents []entity.Entity
		if i+1 < len(names) {
			ents = append(ents, entity.Insert{BlockName: names[i+1]})
		} else {
			ents = append(ents, unitLine())
		}
		doc.AddBlock(&entity.Block{Name: name, Entities: ents})
	}
	full := Render(entity.Insert{BlockName: "B0"}, WithDocument(doc))
	if len(Leaves(full)) != 1 {
		t.Errorf("five levels should expand by default, got %d leaves", len(Leaves(full)))
	}
	capped := Render(entity.Insert{BlockName: "B0"}, WithDocument(doc), WithMaxInsertDepth(3))
	if len(Leaves(capped)) != 0 {
		t.Errorf("capped expansion should not reach the line")
	}
}

func TestInsertAttributes(t *testing.T) {
	doc := docWithBlocks(&entity.Block{Name: "TAG"})
	g := Render(entity.Insert{
		Common:      entity.Common{Color: 1, Layer: "walls"},
		BlockName:   "TAG",
		InsertPoint: geom.Vec3{50, 50, 0},
		Attributes: []entity.Attribute{{
			Text: entity.Text{
				Common:      entity.Common{Color: entity.ColorByBlock},
				Value:       "D-101",
				Height:      1,
				InsertPoint: geom.Vec3{2, 3, 0},
			},
			Tag: "NUMBER",
		}},
	}, WithDocument(doc))
	checkInvariants(t, g)
	if len(g.Insert.Attributes) != 1 {
		t.Fatalf("got %d attributes", len(g.Insert.Attributes))
	}
	a := g.Insert.Attributes[0]
	if a.Text.Tag != "NUMBER" || a.Color.Hex != "#FF0000" || a.Layer != "walls" {
		t.Errorf("attribute = tag %q color %s layer %q", a.Text.Tag, a.Color.Hex, a.Layer)
	}
	if p := firstVertex(a); !vecApprox(p, geom.Vec3{2, 3, 0}, 1e-9) {
		t.Errorf("attribute stays where it is stored, got %v", p)
	}
	if !g.Bounds.Contains(geom.Vec3{2, 3, 0}, tol) {
		t.Errorf("insert bounds %+v should cover its attributes", *g.Bounds)
	}
}

func TestInsertMatrixOffsetsInRotatedFrame(t *testing.T) {
	m := InsertMatrix(geom.Vec3{}, mgl64.HomogRotate3DZ(math.Pi/2), geom.Vec3{1, 1, 1}, geom.Vec3{}, 10, 0)
	if p := geom.Apply(m, geom.Vec3{}); !vecApprox(p, geom.Vec3{0, 10, 0}, 1e-9) {
		t.Errorf("column offset = %v, want (0,10,0)", p)
	}
}

func TestApplyMovesInsertContents(t *testing.T) {
	doc := docWithBlocks(&entity.Block{Name: "L", Entities: []entity.Entity{unitLine()}})
	g := Render(entity.Insert{BlockName: "L"}, WithDocument(doc))
	moved := g.Apply(mgl64.Translate3D(0, 0, 5))
	if p := firstVertex(Leaves(moved)[0]); p != (geom.Vec3{0, 0, 5}) {
		t.Errorf("moved child = %v", p)
	}
	if p := firstVertex(Leaves(g)[0]); p != (geom.Vec3{}) {
		t.Errorf("original child changed: %v", p)
	}
	if moved.Bounds.Min[2] != 5 {
		t.Errorf("moved bounds = %+v", *moved.Bounds)
	}
}

func TestContextConcurrentUse(t *testing.T) {
	doc := docWithBlocks(&entity.Block{Name: "L", Entities: []entity.Entity{unitLine()}})
	c := NewContext(NewOptions(WithDocument(doc)))
	done := make(chan int, 8)
	for i := 0; i < 8; i++ {
		go func() {
			g := c.Render(entity.Insert{BlockName: "L", RowCount: 2, RowSpacing: 1})
			done <- len(Leaves(g))
		}()
	}
	for i := 0; i < 8; i++ {
		if n := <-done; n != 2 {
			t.Errorf("got %d leaves, want 2", n)
		}
	}
}
