// Package dxfload reads DXF drawings into entity documents.
//
// Every entity type the DXF parser understands is imported: LINE, POINT,
// CIRCLE, ARC, ELLIPSE, SPLINE, TEXT, INSERT, LWPOLYLINE and POLYLINE
// (2D, 3D and polygon-mesh flavours). Block definitions and the layer table
// are carried over. Names and text written by legacy code-page drawings are
// decoded to UTF-8.
package dxfload

import (
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
	"github.com/rpaloschi/dxf-go/sections"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/render"
)

var parserLog sync.Once

// debugWriter forwards the parser's own log lines to the debug logger.
type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	render.Logger().Debug("dxfload: parser", "msg", strings.TrimSpace(string(p)))
	return len(p), nil
}

// Load opens the file at path and reads it.
func Load(path string) (*entity.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dxfload: open")
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "dxfload: %s", path)
	}
	return d, nil
}

// Read parses a DXF stream.
func Read(r io.Reader) (*entity.Document, error) {
	parserLog.Do(func() { core.Log = log.New(debugWriter{}, "", 0) })

	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, errors.Wrap(err, "dxfload: parse")
	}

	var model entities.EntitySlice
	if doc.Entities != nil {
		model = doc.Entities.Entities
	}
	blockKeys := make([]string, 0, len(doc.Blocks))
	for key := range doc.Blocks {
		if !layoutBlock(key) {
			blockKeys = append(blockKeys, key)
		}
	}
	sort.Strings(blockKeys)

	c := &converter{
		dec:     newDecoder(rawStrings(doc, model, blockKeys)),
		out:     entity.NewDocument(),
		skipped: make(map[string]int),
	}
	c.importLayers(doc.Tables)
	for _, e := range model {
		if ent, ok := c.convert(e); ok {
			c.out.Add(ent)
		}
	}
	for _, key := range blockKeys {
		c.importBlock(key, doc.Blocks[key])
	}

	logger := render.Logger()
	for kind, n := range c.skipped {
		logger.Debug("dxfload: skipped entities", "type", kind, "count", n)
	}
	logger.Debug("dxfload: read drawing",
		"entities", len(c.out.Entities), "blocks", len(c.out.Blocks), "layers", len(c.out.Layers))
	return c.out, nil
}

// layoutBlock reports the model and paper space containers. Their content
// is either empty or already listed in the ENTITIES section.
func layoutBlock(name string) bool {
	n := strings.ToLower(name)
	return strings.HasPrefix(n, "*model_space") || strings.HasPrefix(n, "*paper_space")
}

func (c *converter) importLayers(t *sections.TablesSection) {
	if t == nil {
		return
	}
	names := make([]string, 0, len(t.Layers))
	for name := range t.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l, ok := t.Layers[name].(*sections.Layer)
		if !ok || l == nil {
			continue
		}
		layer := &entity.Layer{
			Name:       c.dec.decode(l.Name),
			Color:      l.Color,
			LineType:   l.LineType,
			LineWeight: entity.LineWeightDefault,
			Off:        !l.On,
			Frozen:     l.Frozen,
		}
		if layer.Name == "" {
			continue
		}
		if layer.Color <= 0 || layer.Color > 255 {
			layer.Color = 7
		}
		if layer.LineType == "" {
			layer.LineType = entity.LineTypeContinuous
		}
		c.out.AddLayer(layer)
	}
}

func (c *converter) importBlock(key string, b *sections.Block) {
	if b == nil {
		return
	}
	name := b.Name
	if name == "" {
		name = key
	}
	blk := &entity.Block{Name: c.dec.decode(name), BasePoint: vec(b.BasePoint)}
	for _, e := range b.Entities {
		if ent, ok := c.convert(e); ok {
			blk.Entities = append(blk.Entities, ent)
		}
	}
	c.out.AddBlock(blk)
}

// rawStrings gathers every name and text value the decoder may have to
// translate, so code-page detection sees the whole drawing at once.
func rawStrings(doc *document.DxfDocument, model entities.EntitySlice, blockKeys []string) []string {
	var out []string
	add := func(es entities.EntitySlice) {
		for _, e := range es {
			if b, ok := baseOf(e); ok {
				out = append(out, b.LayerName)
			}
			switch v := e.(type) {
			case *entities.Insert:
				out = append(out, v.BlockName)
			case *entities.Text:
				out = append(out, v.Value)
			}
		}
	}
	add(model)
	for _, key := range blockKeys {
		out = append(out, key)
		if b := doc.Blocks[key]; b != nil {
			add(b.Entities)
		}
	}
	if doc.Tables != nil {
		for name := range doc.Tables.Layers {
			out = append(out, name)
		}
	}
	return out
}
