// Package engine renders whole documents. It fans entities out over a
// bounded worker pool, keeps output in input order and isolates renderer
// panics so a single bad entity never aborts the batch.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/render"
)

// Warning is a non-fatal problem found while rendering one entity.
type Warning struct {
	Index   int    // position in the input slice, -1 for document-level findings
	Handle  string // entity handle, when the entity has one
	Kind    string
	Message string
}

func (w Warning) Error() string {
	if w.Handle != "" {
		return fmt.Sprintf("%s %s: %s", w.Kind, w.Handle, w.Message)
	}
	if w.Index >= 0 {
		return fmt.Sprintf("%s #%d: %s", w.Kind, w.Index, w.Message)
	}
	return w.Message
}

// Result bundles the output of rendering a document. Geometries[i]
// belongs to input entity i, matching Warning.Index. After cancellation
// the slots of entities that never ran are nil.
type Result struct {
	Geometries []*render.Geometry
	Warnings   []Warning
	Validation entity.ValidationResult
}

// Rendered returns the geometries that were produced, skipping the nil
// slots a cancelled run leaves behind.
func (r *Result) Rendered() []*render.Geometry {
	return lo.Compact(r.Geometries)
}

// Engine renders documents. It is safe for concurrent use; each call gets
// its own render context.
type Engine struct {
	workers int
	opts    []render.Option

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an engine that runs at most workers renderers at once.
// workers <= 0 means GOMAXPROCS.
func NewEngine(workers int, opts ...render.Option) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{workers: workers, opts: opts}
}

// Workers returns the worker limit.
func (e *Engine) Workers() int {
	return e.workers
}

// RenderDocument validates d and renders its model-space entities with the
// document wired in as layer and block resolver.
//
// Return semantics:
//   - On success: result with one geometry per entity, in input order
//   - On cancellation or timeout: partial result + the context error;
//     entities that never ran leave nil slots
//   - When a newer RenderDocument call started meanwhile: nil + ErrSuperseded
//
// Concurrent calls are safe; only the newest one returns its result.
func (e *Engine) RenderDocument(ctx context.Context, d *entity.Document) (*Result, error) {
	if d == nil {
		d = entity.NewDocument()
	}
	gen := e.begin()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	validation := entity.ValidateAll(d)
	for _, v := range validation.Errors {
		render.Logger().Debug("engine: validation error", "error", v.Error())
	}

	opts := append([]render.Option{render.WithDocument(d)}, e.opts...)
	res, err := e.render(ctx, d.Entities, render.NewOptions(opts...))
	if res != nil {
		res.Validation = validation
	}
	if err != nil {
		return res, err
	}
	if !e.current(gen) {
		return nil, ErrSuperseded
	}
	return res, nil
}

// RenderEntities renders a plain entity slice with the engine's options.
func (e *Engine) RenderEntities(ctx context.Context, entities []entity.Entity) (*Result, error) {
	return e.render(ctx, entities, render.NewOptions(e.opts...))
}

func (e *Engine) render(ctx context.Context, entities []entity.Entity, o render.Options) (*Result, error) {
	res := &Result{
		Geometries: make([]*render.Geometry, len(entities)),
	}
	warnings := make([]*Warning, len(entities))
	rc := render.NewContext(o)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, ent := range entities {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			geo, w := renderOne(rc, i, ent)
			res.Geometries[i] = geo
			warnings[i] = w
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	res.Warnings = lo.FilterMap(warnings, func(w *Warning, _ int) (Warning, bool) {
		if w == nil {
			return Warning{}, false
		}
		return *w, true
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// renderOne renders a single entity, turning a panic into a warning and an
// empty geometry.
func renderOne(rc *render.Context, i int, ent entity.Entity) (geo *render.Geometry, w *Warning) {
	defer func() {
		if r := recover(); r != nil {
			kind, handle := describe(ent)
			render.Logger().Debug("engine: renderer panic recovered",
				"index", i, "kind", kind, "handle", handle, "panic", r)
			w = &Warning{Index: i, Handle: handle, Kind: kind, Message: fmt.Sprintf("renderer panic: %v", r)}
			geo = rc.Render(nil)
			geo.Type = kind
			geo.Handle = handle
		}
	}()
	geo = rc.Render(ent)
	if geo.Type == "Unknown" {
		kind, handle := describe(ent)
		w = &Warning{Index: i, Handle: handle, Kind: kind, Message: "nil entity or no renderer for its kind"}
	}
	return geo, w
}

// describe names an entity for warnings. Nil pointers name nothing.
func describe(ent entity.Entity) (kind, handle string) {
	kind = "Unknown"
	defer func() { _ = recover() }()
	if ent == nil {
		return kind, ""
	}
	kind = ent.Kind().String()
	handle = ent.Props().Handle
	return kind, handle
}
