package retrieve

import "github.com/roomcraft/reco/internal/domain"

// Searcher scans the vector snapshot for the rows nearest to a query
// vector, best first.
type Searcher interface {
	Search(vec []float32, k int) ([]domain.SearchHit, error)
}

// ItemSource maps snapshot rows back to catalog items.
type ItemSource interface {
	ItemByRow(row int) (domain.Item, bool)
}
