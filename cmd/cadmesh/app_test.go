package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/cadmesh/pkg/config"
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
)

// sampleDocument holds a door block placed twice plus a wall line.
func sampleDocument() *entity.Document {
	d := entity.NewDocument()
	d.AddLayer(&entity.Layer{Name: "walls", Color: 1})
	d.AddBlock(&entity.Block{Name: "DOOR", Entities: []entity.Entity{
		entity.Line{Common: entity.Common{Handle: "D1"}, End: geom.Vec3{1, 0, 0}},
		entity.Arc{Common: entity.Common{Handle: "D2"}, Radius: 1, StartAngle: 0, EndAngle: math.Pi / 2},
	}})
	d.Add(
		entity.Line{Common: entity.Common{Handle: "W1", Layer: "walls"}, End: geom.Vec3{10, 0, 0}},
		entity.Insert{Common: entity.Common{Handle: "I1"}, BlockName: "DOOR", InsertPoint: geom.Vec3{2, 0, 0}, XScale: 1, YScale: 1, ZScale: 1},
		entity.Insert{Common: entity.Common{Handle: "I2"}, BlockName: "DOOR", InsertPoint: geom.Vec3{6, 0, 0}, XScale: 1, YScale: 1, ZScale: 1},
	)
	return d
}

func TestProcessSampleDocument(t *testing.T) {
	app := NewApp(nil)
	rep, err := app.Process(context.Background(), sampleDocument(), nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if rep.Entities != 3 || rep.Geometries != 3 {
		t.Errorf("entities=%d geometries=%d", rep.Entities, rep.Geometries)
	}
	if rep.Leaves != 5 {
		t.Errorf("leaves = %d, want 5", rep.Leaves)
	}
	if rep.Counts["Insert"] != 2 || rep.Counts["Line"] != 1 {
		t.Errorf("counts = %v", rep.Counts)
	}
	if rep.Bounds == nil || rep.Bounds.Max[0] < 10 {
		t.Errorf("bounds = %+v", rep.Bounds)
	}
	if len(rep.Validation) != 0 || len(rep.Warnings) != 0 {
		t.Errorf("unexpected findings: %v %v", rep.Validation, rep.Warnings)
	}
	if len(rep.Written) != 0 {
		t.Errorf("default config should write nothing, wrote %v", rep.Written)
	}
}

func TestProcessPicksHandles(t *testing.T) {
	rep, err := NewApp(nil).Process(context.Background(), sampleDocument(), &geom.Vec3{6.5, 0, 0})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	found := strings.Join(rep.Picked, " ")
	if !strings.Contains(found, "W1") || !strings.Contains(found, "D1") {
		t.Errorf("picked %v, want the wall and a door leaf", rep.Picked)
	}
}

func TestProcessMissingBlock(t *testing.T) {
	d := entity.NewDocument()
	d.Add(entity.Insert{Common: entity.Common{Handle: "X"}, BlockName: "GONE", XScale: 1, YScale: 1, ZScale: 1})
	rep, err := NewApp(nil).Process(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("missing blocks should not fail the run: %v", err)
	}
	if len(rep.Validation) != 1 {
		t.Errorf("validation = %v", rep.Validation)
	}
}

func TestProcessWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.JSON = filepath.Join(dir, "out.json")
	cfg.Output.SVG = filepath.Join(dir, "plan.svg")
	cfg.Output.DXF = filepath.Join(dir, "plan.dxf")

	rep, err := NewApp(cfg).Process(context.Background(), sampleDocument(), nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(rep.Written) != 3 {
		t.Fatalf("written = %v", rep.Written)
	}
	for _, p := range rep.Written {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s: %v", p, err)
		}
	}
}

func TestProcessFailsOnLineOnlySTL(t *testing.T) {
	cfg := config.Default()
	cfg.Output.STL = filepath.Join(t.TempDir(), "out.stl")
	rep, err := NewApp(cfg).Process(context.Background(), sampleDocument(), nil)
	if err == nil {
		t.Fatal("line-only drawing has no triangles to write")
	}
	if rep == nil || rep.Geometries != 3 {
		t.Error("the report should survive an export failure")
	}
}

func TestRunMissingFile(t *testing.T) {
	_, err := NewApp(nil).Run(context.Background(), filepath.Join(t.TempDir(), "none.dxf"), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		segments int
		outputs  []string
		wantErr  bool
		check    func(*config.Config) bool
	}{
		{"keep file values", -1, 0, nil, false, func(c *config.Config) bool { return c.Engine.Workers == 0 }},
		{"workers", 3, 0, nil, false, func(c *config.Config) bool { return c.Engine.Workers == 3 }},
		{"segments", -1, 24, nil, false, func(c *config.Config) bool { return c.Render.ArcSegments == 24 }},
		{"outputs", -1, 0, []string{"a.JSON", "b.svg"}, false, func(c *config.Config) bool {
			return c.Output.JSON == "a.JSON" && c.Output.SVG == "b.svg"
		}},
		{"bad output", -1, 0, []string{"a.obj"}, true, nil},
		{"no extension", -1, 0, []string{"out"}, true, nil},
		{"too few segments", -1, 2, nil, true, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			err := applyFlags(cfg, tc.workers, tc.segments, tc.outputs)
			if tc.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.check(cfg) {
				t.Errorf("config not applied: %+v", cfg)
			}
		})
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    geom.Vec3
		wantErr bool
	}{
		{"1,2", geom.Vec3{1, 2, 0}, false},
		{" 1.5 , -2 , 3 ", geom.Vec3{1.5, -2, 3}, false},
		{"1", geom.Vec3{}, true},
		{"1,2,3,4", geom.Vec3{}, true},
		{"a,b", geom.Vec3{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parsePoint(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	rep, err := NewApp(nil).Process(context.Background(), sampleDocument(), &geom.Vec3{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printReport(&buf, rep)
	out := buf.String()
	for _, want := range []string{"entities:   3", "Insert", "bounds:", "at point:"} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
}
