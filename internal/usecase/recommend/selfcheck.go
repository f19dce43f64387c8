package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/roomcraft/reco/internal/logger"
)

// SelfCheck measures retrieval recall by round-tripping catalog images
// through the pipeline: each sampled item's own photo is embedded and
// searched, counting how often the item comes back first.
type SelfCheck struct {
	Tested    int                `json:"tested"`
	RecallAt1 float64            `json:"r_at_1"`
	Examples  []SelfCheckExample `json:"examples"`
}

// SelfCheckExample is one probe of the recall check.
type SelfCheckExample struct {
	QueryID string   `json:"query_id"`
	TopID   string   `json:"top_id,omitempty"`
	Hit     bool     `json:"hit"`
	Score   *float64 `json:"score"`
}

const maxSelfCheckExamples = 10

// RunSelfCheck probes up to sample catalog items and reports recall@1.
// Items without a fetchable image are skipped, not counted as misses.
func (s *Service) RunSelfCheck(ctx context.Context, k, sample int) (*SelfCheck, error) {
	log := logger.FromContext(ctx)
	images := s.newImageResolver()

	check := &SelfCheck{Examples: []SelfCheckExample{}}
	hits := 0

	items := s.catalog.Items()
	if sample < len(items) {
		items = items[:sample]
	}
	for i := range items {
		it := items[i]
		urls := images.resolve(ctx, &it)
		if len(urls) == 0 {
			continue
		}
		data, err := s.fetcher.Fetch(ctx, urls[0])
		if err != nil {
			log.Debug("selfcheck image fetch failed",
				zap.String("item_id", it.ID), zap.Error(err))
			continue
		}
		vec, err := s.fuser.Fuse(ctx, "", data, 1, 0)
		if err != nil {
			log.Debug("selfcheck embed failed",
				zap.String("item_id", it.ID), zap.Error(err))
			continue
		}
		ret, err := s.retriever.Retrieve(ctx, vec, k, "")
		if err != nil {
			return nil, err
		}
		check.Tested++

		var topID string
		var topScore *float64
		if len(ret.RawRows) > 0 {
			if top, ok := s.catalog.ItemByRow(ret.RawRows[0]); ok {
				topID = top.ID
			}
			score := ret.RawScores[0]
			topScore = &score
		}
		hit := topID != "" && topID == it.ID
		if hit {
			hits++
		}
		if len(check.Examples) < maxSelfCheckExamples {
			check.Examples = append(check.Examples, SelfCheckExample{
				QueryID: it.ID,
				TopID:   topID,
				Hit:     hit,
				Score:   topScore,
			})
		}
	}

	if check.Tested > 0 {
		check.RecallAt1 = float64(hits) / float64(check.Tested)
	}
	return check, nil
}
