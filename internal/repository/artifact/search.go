package artifact

import (
	"fmt"
	"sort"

	"github.com/viant/vec/search"

	"github.com/roomcraft/reco/internal/domain"
)

// Search runs an exhaustive inner-product scan and returns the k most
// similar rows in rank order. Scores are cosine similarity; vectors are
// expected to be unit length so this matches inner-product ranking.
func (c *Catalog) Search(vec []float32, k int) ([]domain.SearchHit, error) {
	if len(c.vectors) == 0 {
		return nil, domain.ErrIndexUnavailable
	}
	if len(vec) != c.dim {
		return nil, fmt.Errorf("query vector has %d dims, index has %d", len(vec), c.dim)
	}

	q := search.Float32s(vec)
	qMag := q.Magnitude()
	if qMag == 0 {
		return nil, fmt.Errorf("query vector has zero magnitude")
	}

	hits := make([]domain.SearchHit, 0, len(c.vectors))
	for row, v := range c.vectors {
		if c.magnitudes[row] == 0 {
			continue
		}
		dist := q.CosineDistanceWithMagnitudesNeon(v, qMag, c.magnitudes[row])
		hits = append(hits, domain.SearchHit{Row: row, Score: 1 - float64(dist)})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
