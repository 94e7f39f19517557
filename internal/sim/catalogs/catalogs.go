package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry is the block palette: the per-id capability table every consumer
// of generated chunks shares. It is immutable after construction.
type Registry struct {
	defs   map[byte]BlockDef
	digest string
}

// Default returns the built-in palette.
func Default() *Registry {
	return build(defaultDefs())
}

// Load reads a YAML palette overlay and merges it over the built-in
// definitions. Entries with an unknown id extend the palette; entries with a
// known id replace it.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Blocks []BlockDef `yaml:"blocks"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("blocks.yaml: %w", err)
	}
	defs := defaultDefs()
	byID := map[byte]int{}
	for i, d := range defs {
		byID[d.ID] = i
	}
	for _, d := range file.Blocks {
		if d.Name == "" {
			return nil, fmt.Errorf("blocks.yaml: block %d has no name", d.ID)
		}
		if i, ok := byID[d.ID]; ok {
			defs[i] = d
		} else {
			defs = append(defs, d)
		}
	}
	return build(defs), nil
}

func build(defs []BlockDef) *Registry {
	r := &Registry{defs: make(map[byte]BlockDef, len(defs))}
	for _, d := range defs {
		r.defs[d.ID] = d
	}
	r.digest = digestOf(defs)
	return r
}

func digestOf(defs []BlockDef) string {
	sorted := make([]BlockDef, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	b, _ := json.Marshal(sorted)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Lookup resolves a block id.
func (r *Registry) Lookup(id byte) (BlockDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Solid reports whether the id resolves to a solid block. Unknown ids are
// treated as air.
func (r *Registry) Solid(id byte) bool {
	d, ok := r.defs[id]
	return ok && d.Solid
}

// Count returns the palette size.
func (r *Registry) Count() int { return len(r.defs) }

// Digest is a stable sha256 over the palette, sent in WELCOME so clients can
// detect a mismatched copy.
func (r *Registry) Digest() string { return r.digest }
