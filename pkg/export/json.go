package export

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/chazu/cadmesh/pkg/render"
)

// JSON writes the geometry list as a JSON array. Inserts keep their
// replica and attribute tree.
type JSON struct {
	Indent bool
}

func (*JSON) Format() string { return "json" }

func (x *JSON) Export(path string, geoms []*render.Geometry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	enc := json.NewEncoder(f)
	if x.Indent {
		enc.SetIndent("", "  ")
	}
	if geoms == nil {
		geoms = []*render.Geometry{}
	}
	if err := enc.Encode(geoms); err != nil {
		f.Close()
		return fmt.Errorf("export: json: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}
