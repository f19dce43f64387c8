// Package artifact loads the catalog snapshot produced by the offline
// index builder: an ordered item mapping and the matching embedding
// matrix. The snapshot is immutable for the process lifetime; row index
// addresses both the mapping and the vector matrix.
package artifact

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/viant/vec/search"

	"github.com/roomcraft/reco/internal/domain"
)

const (
	manifestFile = "manifest.json"
	mappingFile  = "mapping.json"
	vectorsFile  = "vectors.f32"
)

type manifest struct {
	Dimensions int `json:"dimensions"`
	Count      int `json:"count"`
}

// Catalog is the load-time-immutable catalog snapshot plus its flat
// inner-product index.
type Catalog struct {
	items      []domain.Item
	byID       map[string]int
	vectors    [][]float32
	magnitudes []float32
	dim        int
}

// Load reads manifest.json, mapping.json, and vectors.f32 from dir and
// validates that they agree on dimensions and row count.
func Load(dir string) (*Catalog, error) {
	var m manifest
	if err := readJSON(filepath.Join(dir, manifestFile), &m); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if m.Dimensions <= 0 || m.Count <= 0 {
		return nil, fmt.Errorf("manifest dimensions/count must be positive, got %d/%d", m.Dimensions, m.Count)
	}

	var items []domain.Item
	if err := readJSON(filepath.Join(dir, mappingFile), &items); err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	if len(items) != m.Count {
		return nil, fmt.Errorf("mapping has %d rows, manifest says %d", len(items), m.Count)
	}

	raw, err := os.ReadFile(filepath.Clean(filepath.Join(dir, vectorsFile)))
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	vectors, err := decodeVectors(raw, m.Count, m.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("decode vectors: %w", err)
	}

	byID := make(map[string]int, len(items))
	magnitudes := make([]float32, len(vectors))
	for i := range items {
		if id := items[i].ID; id != "" {
			byID[id] = i
		}
		magnitudes[i] = search.Float32s(vectors[i]).Magnitude()
	}

	return &Catalog{
		items:      items,
		byID:       byID,
		vectors:    vectors,
		magnitudes: magnitudes,
		dim:        m.Dimensions,
	}, nil
}

// Size returns the number of indexed rows.
func (c *Catalog) Size() int { return len(c.items) }

// Dimensions returns the embedding dimensionality.
func (c *Catalog) Dimensions() int { return c.dim }

// ItemByRow returns the mapping entry for an ANN row index.
func (c *Catalog) ItemByRow(row int) (domain.Item, bool) {
	if row < 0 || row >= len(c.items) {
		return domain.Item{}, false
	}
	return c.items[row], true
}

// ItemByID looks an item up by catalog id.
func (c *Catalog) ItemByID(id string) (domain.Item, bool) {
	row, ok := c.byID[id]
	if !ok {
		return domain.Item{}, false
	}
	return c.items[row], true
}

// Items returns the full mapping in row order. Callers must not mutate it.
func (c *Catalog) Items() []domain.Item { return c.items }

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func decodeVectors(data []byte, count, dim int) ([][]float32, error) {
	want := count * dim * 4
	if len(data) != want {
		return nil, fmt.Errorf("vectors file is %d bytes, want %d (%d rows x %d dims)", len(data), want, count, dim)
	}
	vectors := make([][]float32, count)
	off := 0
	for i := range vectors {
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = row
	}
	return vectors, nil
}
