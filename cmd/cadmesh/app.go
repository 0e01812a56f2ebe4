package main

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/chazu/cadmesh/pkg/config"
	"github.com/chazu/cadmesh/pkg/dxfload"
	"github.com/chazu/cadmesh/pkg/engine"
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/export"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/index"
	"github.com/chazu/cadmesh/pkg/render"
)

// App runs the load, render and export pipeline.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
}

// Report summarises one run.
type Report struct {
	Entities   int
	Geometries int
	Leaves     int
	Counts     map[string]int // geometries per type
	Bounds     *geom.Bounds
	Validation []string
	Warnings   []string
	Written    []string
	Picked     []string // handles found by a point query
}

// NewApp creates an App from cfg. A nil cfg means config.Default.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(cfg.Engine.Workers, cfg.RenderOptions()...),
	}
}

// Run loads the drawing at path and processes it.
func (a *App) Run(ctx context.Context, path string, at *geom.Vec3) (*Report, error) {
	doc, err := dxfload.Load(path)
	if err != nil {
		return nil, err
	}
	return a.Process(ctx, doc, at)
}

// Process renders doc, writes the configured outputs and, when at is set,
// lists the handles of geometry within a unit of that point.
func (a *App) Process(ctx context.Context, doc *entity.Document, at *geom.Vec3) (*Report, error) {
	if doc == nil {
		doc = entity.NewDocument()
	}
	res, err := a.engine.RenderDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	rep := &Report{
		Entities:   doc.EntityCount(),
		Geometries: len(res.Geometries),
		Counts:     make(map[string]int),
	}
	for _, g := range res.Geometries {
		rep.Counts[g.Type]++
		rep.Leaves += len(render.Leaves(g))
	}
	for _, v := range res.Validation.Errors {
		rep.Validation = append(rep.Validation, v.Error())
	}
	for _, v := range res.Validation.Warnings {
		rep.Validation = append(rep.Validation, v.Error())
	}
	for _, w := range res.Warnings {
		rep.Warnings = append(rep.Warnings, w.Error())
	}

	idx := index.New(res.Geometries, index.WithLeaves())
	if b, ok := idx.Bounds(); ok {
		rep.Bounds = &b
	}
	if at != nil {
		seen := make(map[string]bool)
		for _, e := range idx.At(*at, 1) {
			h := e.Geometry.Handle
			if h == "" {
				h = fmt.Sprintf("#%d", e.Index)
			}
			if !seen[h] {
				seen[h] = true
				rep.Picked = append(rep.Picked, h)
			}
		}
		sort.Strings(rep.Picked)
	}

	for _, path := range a.cfg.Outputs() {
		x, err := a.exporterFor(path)
		if err != nil {
			return rep, err
		}
		if err := x.Export(path, res.Geometries); err != nil {
			return rep, err
		}
		log.Printf("wrote %s", path)
		rep.Written = append(rep.Written, path)
	}
	return rep, nil
}

// exporterFor applies the output settings the extension default lacks.
func (a *App) exporterFor(path string) (export.Exporter, error) {
	x, err := export.ForPath(path)
	if err != nil {
		return nil, err
	}
	if j, ok := x.(*export.JSON); ok {
		j.Indent = a.cfg.Output.Indent
	}
	return x, nil
}
