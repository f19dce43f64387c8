package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/metrics"
)

// Service turns a query vector into an ordered list of candidate items.
// It over-fetches from the index so the downstream attribute and type
// filters still have enough material to fill the caller's page.
type Service struct {
	searcher     Searcher
	items        ItemSource
	overfetchMin int
}

// Result is the raw retrieval outcome. RawRows and RawScores hold the
// unfiltered top-k index hits for debug payloads; Candidates is the
// type-filtered list in index order.
type Result struct {
	Candidates []domain.Candidate
	RawRows    []int
	RawScores  []float64
}

// New creates a retrieval service. overfetchMin is the floor on the
// number of rows requested from the index regardless of the page size.
func New(searcher Searcher, items ItemSource, overfetchMin int) *Service {
	return &Service{searcher: searcher, items: items, overfetchMin: overfetchMin}
}

// Retrieve searches the index for max(k, overfetchMin) rows, resolves
// them to catalog items and drops the ones that fail the type filter.
func (s *Service) Retrieve(_ context.Context, vec []float32, k int, typeFilter string) (Result, error) {
	start := time.Now()
	hits, err := s.searcher.Search(vec, max(k, s.overfetchMin))
	metrics.ANNSearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("index search: %w", err)
	}

	res := Result{
		Candidates: make([]domain.Candidate, 0, len(hits)),
		RawRows:    make([]int, 0, k),
		RawScores:  make([]float64, 0, k),
	}
	for _, h := range hits {
		if len(res.RawRows) < k {
			res.RawRows = append(res.RawRows, h.Row)
			res.RawScores = append(res.RawScores, h.Score)
		}
		it, ok := s.items.ItemByRow(h.Row)
		if !ok || it.ID == "" {
			continue
		}
		if !matchesType(&it, typeFilter) {
			continue
		}
		res.Candidates = append(res.Candidates, domain.Candidate{Item: it, Score: h.Score})
	}
	return res, nil
}
