// Command cadmesh converts DXF drawings into renderer-ready geometry.
//
// Usage:
//
//	cadmesh [flags] drawing.dxf
//
// Outputs come from the config file and from -o, which may be repeated;
// the file extension picks the format (json, stl, svg, dxf).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/cadmesh/pkg/config"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

type outputList []string

func (o *outputList) String() string { return strings.Join(*o, ",") }

func (o *outputList) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("cadmesh: ")

	var (
		cfgPath  = flag.String("config", "", "YAML config file")
		workers  = flag.Int("workers", -1, "render workers, 0 for one per CPU")
		segments = flag.Int("segments", 0, "segments per full circle")
		pick     = flag.String("at", "", "list handles near x,y")
		verbose  = flag.Bool("v", false, "log renderer diagnostics")
		outputs  outputList
	)
	flag.Var(&outputs, "o", "output file, repeatable")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cadmesh [flags] drawing.dxf")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	if err := applyFlags(cfg, *workers, *segments, outputs); err != nil {
		log.Fatal(err)
	}

	var at *geom.Vec3
	if *pick != "" {
		p, err := parsePoint(*pick)
		if err != nil {
			log.Fatal(err)
		}
		at = &p
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := NewApp(cfg).Run(ctx, flag.Arg(0), at)
	if rep != nil {
		printReport(os.Stdout, rep)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// applyFlags lets command-line values override the config file.
func applyFlags(cfg *config.Config, workers, segments int, outputs []string) error {
	if workers >= 0 {
		cfg.Engine.Workers = workers
	}
	if segments > 0 {
		cfg.Render.ArcSegments = segments
	}
	for _, o := range outputs {
		x, err := extOf(o)
		if err != nil {
			return err
		}
		switch x {
		case "json":
			cfg.Output.JSON = o
		case "stl":
			cfg.Output.STL = o
		case "svg":
			cfg.Output.SVG = o
		case "dxf":
			cfg.Output.DXF = o
		}
	}
	return cfg.Validate()
}

func extOf(path string) (string, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", fmt.Errorf("output %q has no extension", path)
	}
	ext := strings.ToLower(path[i+1:])
	switch ext {
	case "json", "stl", "svg", "dxf":
		return ext, nil
	}
	return "", fmt.Errorf("output %q: unsupported format %q", path, ext)
}

func parsePoint(s string) (geom.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return geom.Vec3{}, fmt.Errorf("point %q: want x,y or x,y,z", s)
	}
	var p geom.Vec3
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("point %q: %w", s, err)
		}
		p[i] = v
	}
	return p, nil
}

func printReport(w io.Writer, rep *Report) {
	fmt.Fprintf(w, "entities:   %d\n", rep.Entities)
	fmt.Fprintf(w, "geometries: %d (%d leaves)\n", rep.Geometries, rep.Leaves)
	types := make([]string, 0, len(rep.Counts))
	for t := range rep.Counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-16s %d\n", t, rep.Counts[t])
	}
	if rep.Bounds != nil {
		fmt.Fprintf(w, "bounds:     %v .. %v\n", rep.Bounds.Min, rep.Bounds.Max)
	}
	for _, v := range rep.Validation {
		fmt.Fprintf(w, "validation: %s\n", v)
	}
	for _, v := range rep.Warnings {
		fmt.Fprintf(w, "warning:    %s\n", v)
	}
	if rep.Picked != nil {
		fmt.Fprintf(w, "at point:   %s\n", strings.Join(rep.Picked, " "))
	}
}
