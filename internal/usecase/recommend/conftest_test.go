package recommend

import (
	"context"
	"strings"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/color"
	"github.com/roomcraft/reco/internal/usecase/attrs"
	"github.com/roomcraft/reco/internal/usecase/colorrank"
	"github.com/roomcraft/reco/internal/usecase/retrieve"
)

// Shared pipeline mocks.

type stubFuser struct {
	vec   []float32
	err   error
	calls int
}

func (m *stubFuser) Fuse(_ context.Context, _ string, _ []byte, _, _ float64) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

type stubRetriever struct {
	res      retrieve.Result
	err      error
	lastK    int
	lastType string
}

func (m *stubRetriever) Retrieve(_ context.Context, _ []float32, k int, typeFilter string) (retrieve.Result, error) {
	m.lastK = k
	m.lastType = typeFilter
	if m.err != nil {
		return retrieve.Result{}, m.err
	}
	return m.res, nil
}

type stubFlags struct {
	flags map[string]map[string]bool
	err   error
	calls int
}

func (m *stubFlags) Flags(_ context.Context) (map[string]map[string]bool, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.flags, nil
}

type stubImageSource struct {
	refs  map[string][]string
	calls int
}

func (m *stubImageSource) ItemImages(_ context.Context, id string) ([]string, error) {
	m.calls++
	return m.refs[id], nil
}

// passResolver accepts every non-empty http reference unchanged.
type passResolver struct{}

func (passResolver) Resolve(ref string) (string, bool) {
	if ref == "" || !strings.HasPrefix(ref, "http") {
		return "", false
	}
	return ref, true
}

type stubSwatches struct {
	labs    map[string]color.Lab
	lookups int
}

func (m *stubSwatches) Lookup(_ context.Context, id string, _ []string) (color.Lab, bool) {
	m.lookups++
	lab, ok := m.labs[id]
	return lab, ok
}

type stubCatalog struct {
	items []domain.Item
}

func (m *stubCatalog) Items() []domain.Item { return m.items }

func (m *stubCatalog) ItemByRow(row int) (domain.Item, bool) {
	if row < 0 || row >= len(m.items) {
		return domain.Item{}, false
	}
	return m.items[row], true
}

type stubFetcher struct {
	data map[string][]byte
	err  error
}

func (m *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data[url], nil
}

// fixture bundles every dependency so individual tests only override
// what they exercise.
type fixture struct {
	fuser      *stubFuser
	retriever  *stubRetriever
	flags      *stubFlags
	imagesrc   *stubImageSource
	swatches   *stubSwatches
	catalog    *stubCatalog
	fetcher    *stubFetcher
	roomLab    color.Lab
	extractErr error
}

func newFixture() *fixture {
	return &fixture{
		fuser: &stubFuser{vec: []float32{1, 0}},
		retriever: &stubRetriever{res: retrieve.Result{
			Candidates: []domain.Candidate{
				{Item: domain.Item{ID: "sofa-1", Name: "Oslo Sofa", BasePrice: 499, Images: []string{"https://cdn/sofa-1.jpg"}}, Score: 0.9},
				{Item: domain.Item{ID: "sofa-2", Name: "Lund Sofa", BasePrice: 399, Images: []string{"https://cdn/sofa-2.jpg"}}, Score: 0.8},
				{Item: domain.Item{ID: "sofa-3", Name: "Bare Sofa"}, Score: 0.7},
			},
			RawRows:   []int{0, 1, 2},
			RawScores: []float64{0.9, 0.8, 0.7},
		}},
		flags:    &stubFlags{flags: map[string]map[string]bool{}},
		imagesrc: &stubImageSource{refs: map[string][]string{}},
		swatches: &stubSwatches{labs: map[string]color.Lab{}},
		catalog:  &stubCatalog{},
		fetcher:  &stubFetcher{data: map[string][]byte{}},
		roomLab:  color.Lab{50, 0, 0},
	}
}

func (f *fixture) service() *Service {
	extract := func(_ []byte) (color.Lab, error) {
		if f.extractErr != nil {
			return color.Lab{}, f.extractErr
		}
		return f.roomLab, nil
	}
	return New(
		f.fuser,
		f.retriever,
		attrs.New(0.18),
		colorrank.New(0, 0),
		f.flags,
		f.imagesrc,
		passResolver{},
		f.swatches,
		f.catalog,
		f.fetcher,
		extract,
	)
}
