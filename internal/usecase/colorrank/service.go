// Package colorrank adjusts candidate scores by perceptual color
// distance between each item and the caller's room photo.
package colorrank

import (
	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/color"
)

// Service scores candidates against a room color descriptor. It is pure:
// descriptor extraction and caching happen upstream.
type Service struct {
	matchScale    float64
	contrastScale float64
}

// New creates a color reranker with the given decay scales. Zero scales
// fall back to the defaults.
func New(matchScale, contrastScale float64) *Service {
	if matchScale <= 0 {
		matchScale = color.DefaultMatchScale
	}
	if contrastScale <= 0 {
		contrastScale = color.DefaultContrastScale
	}
	return &Service{matchScale: matchScale, contrastScale: contrastScale}
}

// Rerank adds weight*similarity to the score of every candidate that
// carries a color descriptor and records the distance and boost on it.
// Candidates without a descriptor keep their score, a nil distance and a
// zero boost. A nil room descriptor leaves the slice untouched.
func (s *Service) Rerank(cands []domain.Candidate, roomLab *color.Lab, weight float64, mode color.Mode) []domain.Candidate {
	if roomLab == nil || len(cands) == 0 {
		return cands
	}
	out := make([]domain.Candidate, len(cands))
	for i, c := range cands {
		if c.AvgLab != nil {
			dE := color.DeltaE(*roomLab, *c.AvgLab)
			boost := weight * color.Similarity(mode, dE, s.matchScale, s.contrastScale)
			c.ColorDeltaE = &dE
			c.ColorBoost = boost
			c.Score += boost
		} else {
			c.ColorDeltaE = nil
			c.ColorBoost = 0
		}
		out[i] = c
	}
	return out
}
