package entity

import (
	"fmt"
	"strings"

	"github.com/chazu/cadmesh/pkg/geom"
)

// DefaultLayer is the layer every drawing has. Entities on it inside a
// block take the layer of the insert that places them.
const DefaultLayer = "0"

// Layer is a layer table entry.
type Layer struct {
	Name       string  `json:"name"`
	Color      int     `json:"color"`
	TrueColor  *uint32 `json:"true_color,omitempty"`
	LineType   string  `json:"line_type,omitempty"`
	LineWeight int     `json:"line_weight"`
	Off        bool    `json:"off,omitempty"`
	Frozen     bool    `json:"frozen,omitempty"`
}

// Block is a named, reusable group of entities. Blocks are shared by every
// insert that references them and are never modified by rendering.
type Block struct {
	Name      string    `json:"name"`
	BasePoint geom.Vec3 `json:"base_point"`
	Entities  []Entity  `json:"-"`
}

// Document is a parsed drawing: model-space entities plus the block and
// layer tables. It is built once and then only read.
type Document struct {
	Entities []Entity          `json:"-"`
	Blocks   map[string]*Block `json:"blocks"`
	Layers   map[string]*Layer `json:"layers"`
	Units    string            `json:"units,omitempty"`
}

// NewDocument creates an empty document holding the default layer.
func NewDocument() *Document {
	return &Document{
		Blocks: make(map[string]*Block),
		Layers: map[string]*Layer{
			DefaultLayer: {Name: DefaultLayer, Color: 7, LineType: LineTypeContinuous, LineWeight: LineWeightDefault},
		},
	}
}

// Add appends model-space entities.
func (d *Document) Add(entities ...Entity) {
	d.Entities = append(d.Entities, entities...)
}

// AddBlock registers a block definition. A block with the same name is
// replaced.
func (d *Document) AddBlock(b *Block) {
	if d.Blocks == nil {
		d.Blocks = make(map[string]*Block)
	}
	d.Blocks[b.Name] = b
}

// AddLayer registers a layer.
func (d *Document) AddLayer(l *Layer) {
	if d.Layers == nil {
		d.Layers = make(map[string]*Layer)
	}
	d.Layers[l.Name] = l
}

// Block returns the block with the given name. Names match exactly first,
// then ignoring case, the way drawing files treat them.
func (d *Document) Block(name string) (*Block, bool) {
	if d == nil {
		return nil, false
	}
	if b, ok := d.Blocks[name]; ok {
		return b, true
	}
	for key, b := range d.Blocks {
		if strings.EqualFold(key, name) {
			return b, true
		}
	}
	return nil, false
}

// Layer returns a copy of the named layer.
func (d *Document) Layer(name string) (Layer, bool) {
	if d == nil {
		return Layer{}, false
	}
	if l, ok := d.Layers[name]; ok {
		return *l, true
	}
	for key, l := range d.Layers {
		if strings.EqualFold(key, name) {
			return *l, true
		}
	}
	return Layer{}, false
}

// MustBlock returns the named block, or panics.
func (d *Document) MustBlock(name string) *Block {
	b, ok := d.Block(name)
	if !ok {
		panic(fmt.Sprintf("entity: no block named %q", name))
	}
	return b
}

// EntityCount returns the number of model-space entities.
func (d *Document) EntityCount() int {
	return len(d.Entities)
}

// CountByKind tallies model-space entities per kind.
func (d *Document) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range d.Entities {
		counts[e.Kind()]++
	}
	return counts
}

// Inserts returns the block references found directly in entities.
func Inserts(entities []Entity) []Insert {
	var out []Insert
	for _, e := range entities {
		switch ins := e.(type) {
		case Insert:
			out = append(out, ins)
		case *Insert:
			out = append(out, *ins)
		}
	}
	return out
}
