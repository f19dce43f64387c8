// Package recommend orchestrates the retrieve-then-rerank pipeline:
// modality fusion, vector retrieval, attribute filtering, lazy color
// descriptors, color reranking, and the final cut.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/color"
	"github.com/roomcraft/reco/internal/domain/query"
	"github.com/roomcraft/reco/internal/logger"
	"github.com/roomcraft/reco/internal/metrics"
	"github.com/roomcraft/reco/internal/usecase/attrs"
	"github.com/roomcraft/reco/internal/usecase/colorrank"
)

// Service wires the pipeline stages together.
type Service struct {
	fuser     Fuser
	retriever Retriever
	attrs     *attrs.Service
	colors    *colorrank.Service
	flags     FlagSource
	imagesrc  ImageSource
	signer    Resolver
	swatches  SwatchSource
	catalog   CatalogSource
	fetcher   Fetcher
	extract   ExtractFunc
}

// New creates the recommendation orchestrator.
func New(
	fuser Fuser,
	retriever Retriever,
	attrSvc *attrs.Service,
	colorSvc *colorrank.Service,
	flags FlagSource,
	imagesrc ImageSource,
	signer Resolver,
	swatches SwatchSource,
	catalog CatalogSource,
	fetcher Fetcher,
	extract ExtractFunc,
) *Service {
	return &Service{
		fuser:     fuser,
		retriever: retriever,
		attrs:     attrSvc,
		colors:    colorSvc,
		flags:     flags,
		imagesrc:  imagesrc,
		signer:    signer,
		swatches:  swatches,
		catalog:   catalog,
		fetcher:   fetcher,
		extract:   extract,
	}
}

// Telemetry is the per-request debug payload.
type Telemetry struct {
	ReceivedLabels []string
	WantedFlags    []string
	Strict         bool
	AfterCount     int
	RawRows        []int
	RawScores      []float64
	WImage         float64
	WText          float64
	ColorMode      color.Mode
	ColorWeight    float64
	RoomLab        *color.Lab
	ItemsWithLab   int
	TopDeltaE      *float64
	TopBoost       *float64
}

// Result is a finished recommendation. When Fallback is set, Items is
// empty and Related carries the soft-boosted alternatives.
type Result struct {
	Items     []View
	Related   []View
	Fallback  string
	Telemetry Telemetry
}

// Recommend runs the full pipeline for one validated query.
func (s *Service) Recommend(ctx context.Context, q *query.Query) (*Result, error) {
	log := logger.FromContext(ctx)

	explicit := strictPtr(q)
	resolution := s.attrs.Resolve(q.Labels(), q.Text(), explicit)

	vec, err := s.fuser.Fuse(ctx, q.Text(), q.Image(), q.WeightImage(), q.WeightText())
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fuse query: %w", err)
	}

	ret, err := s.retriever.Retrieve(ctx, vec, q.K(), q.TypeFilter())
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	flagsByItem := map[string]map[string]bool{}
	if len(resolution.Flags) > 0 {
		flagsByItem, err = s.flags.Flags(ctx)
		if err != nil {
			log.Warn("attribute flags unavailable, filtering without them", zap.Error(err))
			flagsByItem = map[string]map[string]bool{}
		}
	}

	cands, fallback := s.attrs.Apply(ret.Candidates, resolution.Flags, flagsByItem, resolution.Strict)

	tel := Telemetry{
		ReceivedLabels: resolution.Received,
		WantedFlags:    resolution.Flags,
		Strict:         resolution.Strict && len(resolution.Flags) > 0,
		RawRows:        ret.RawRows,
		RawScores:      ret.RawScores,
		WImage:         q.WeightImage(),
		WText:          q.WeightText(),
		ColorMode:      q.ColorMode(),
		ColorWeight:    q.ColorWeight(),
	}

	images := s.newImageResolver()

	if fallback != "" {
		sortByScore(cands)
		cands = truncate(cands, q.K())
		metrics.RecommendationsTotal.WithLabelValues("fallback").Inc()
		log.Info("strict attribute filter emptied the page, serving related",
			zap.Strings("wanted_flags", resolution.Flags),
			zap.Int("related", len(cands)))
		return &Result{
			Related:   s.views(ctx, images, cands),
			Fallback:  fallback,
			Telemetry: tel,
		}, nil
	}

	for i := range cands {
		if cands[i].AvgLab == nil {
			if lab, ok := s.swatches.Lookup(ctx, cands[i].ID, images.resolve(ctx, &cands[i].Item)); ok {
				l := lab
				cands[i].AvgLab = &l
			}
		}
	}

	var roomLab *color.Lab
	if len(q.Image()) > 0 {
		if lab, err := s.extract(q.Image()); err != nil {
			log.Warn("room photo color extraction failed, skipping rerank", zap.Error(err))
		} else {
			roomLab = &lab
			cands = s.colors.Rerank(cands, roomLab, q.ColorWeight(), q.ColorMode())
		}
	}

	sortByScore(cands)
	cands = truncate(cands, q.K())

	tel.RoomLab = roomLab
	tel.AfterCount = len(cands)
	for i := range cands {
		if cands[i].AvgLab != nil {
			tel.ItemsWithLab++
		}
	}
	if len(cands) > 0 {
		tel.TopDeltaE = cands[0].ColorDeltaE
		if cands[0].ColorDeltaE != nil {
			boost := cands[0].ColorBoost
			tel.TopBoost = &boost
		}
	}

	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	return &Result{
		Items:     s.views(ctx, images, cands),
		Telemetry: tel,
	}, nil
}

// sortByScore orders candidates best first, keeping retrieval order for
// equal scores.
func sortByScore(cands []domain.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
}

func truncate(cands []domain.Candidate, k int) []domain.Candidate {
	if len(cands) > k {
		return cands[:k]
	}
	return cands
}

func strictPtr(q *query.Query) *bool {
	if v, set := q.Strict(); set {
		return &v
	}
	return nil
}

// imageResolver memoizes per-item signed image URLs for one request, so
// the swatch stage and the view builder never resolve an item twice.
type imageResolver struct {
	svc  *Service
	memo map[string][]string
}

func (s *Service) newImageResolver() *imageResolver {
	return &imageResolver{svc: s, memo: make(map[string][]string)}
}

func (r *imageResolver) resolve(ctx context.Context, it *domain.Item) []string {
	if urls, ok := r.memo[it.ID]; ok {
		return urls
	}
	urls := r.svc.signRefs(it.ImageCandidates())
	if len(urls) == 0 && it.ID != "" {
		refs, err := r.svc.imagesrc.ItemImages(ctx, it.ID)
		if err != nil {
			logger.FromContext(ctx).Debug("image hydration failed",
				zap.String("item_id", it.ID), zap.Error(err))
		} else {
			urls = r.svc.signRefs(refs)
		}
	}
	r.memo[it.ID] = urls
	return urls
}

func (s *Service) signRefs(refs []string) []string {
	out := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		u, ok := s.signer.Resolve(ref)
		if !ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
