package colorrank

import (
	"math"
	"testing"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/color"
)

func labPtr(l color.Lab) *color.Lab { return &l }

func TestRerank_MatchFavorsCloseColors(t *testing.T) {
	svc := New(0, 0)
	room := color.Lab{50, 0, 0}
	cands := []domain.Candidate{
		{Item: domain.Item{ID: "far", AvgLab: labPtr(color.Lab{90, 40, 40})}, Score: 0.5},
		{Item: domain.Item{ID: "near", AvgLab: labPtr(color.Lab{52, 1, 0})}, Score: 0.5},
	}

	out := svc.Rerank(cands, &room, 0.35, color.ModeMatch)
	if out[1].ColorBoost <= out[0].ColorBoost {
		t.Errorf("match mode must boost the closer color more: near=%g far=%g",
			out[1].ColorBoost, out[0].ColorBoost)
	}
	if out[1].Score <= out[0].Score {
		t.Error("near candidate should outscore the far one after rerank")
	}
}

func TestRerank_ContrastFavorsFarColors(t *testing.T) {
	svc := New(0, 0)
	room := color.Lab{50, 0, 0}
	cands := []domain.Candidate{
		{Item: domain.Item{ID: "near", AvgLab: labPtr(color.Lab{52, 1, 0})}, Score: 0.5},
		{Item: domain.Item{ID: "far", AvgLab: labPtr(color.Lab{90, 40, 40})}, Score: 0.5},
	}

	out := svc.Rerank(cands, &room, 0.35, color.ModeContrast)
	if out[1].ColorBoost <= out[0].ColorBoost {
		t.Errorf("contrast mode must boost the farther color more: far=%g near=%g",
			out[1].ColorBoost, out[0].ColorBoost)
	}
}

func TestRerank_RecordsDistanceAndBoost(t *testing.T) {
	svc := New(20, 60)
	room := color.Lab{50, 0, 0}
	cands := []domain.Candidate{
		{Item: domain.Item{ID: "a", AvgLab: labPtr(color.Lab{50, 3, 4})}, Score: 0.5},
	}

	out := svc.Rerank(cands, &room, 0.35, color.ModeMatch)
	if out[0].ColorDeltaE == nil {
		t.Fatal("expected a recorded distance")
	}
	if math.Abs(*out[0].ColorDeltaE-5) > 1e-9 {
		t.Errorf("expected deltaE 5, got %g", *out[0].ColorDeltaE)
	}
	wantBoost := 0.35 * math.Exp(-5.0/20.0)
	if math.Abs(out[0].ColorBoost-wantBoost) > 1e-12 {
		t.Errorf("expected boost %g, got %g", wantBoost, out[0].ColorBoost)
	}
	if math.Abs(out[0].Score-(0.5+wantBoost)) > 1e-12 {
		t.Errorf("boost not added to score: %g", out[0].Score)
	}
}

func TestRerank_MissingDescriptorKeepsScore(t *testing.T) {
	svc := New(0, 0)
	room := color.Lab{50, 0, 0}
	cands := []domain.Candidate{
		{Item: domain.Item{ID: "no-swatch"}, Score: 0.5},
	}

	out := svc.Rerank(cands, &room, 0.35, color.ModeMatch)
	if out[0].ColorDeltaE != nil {
		t.Error("expected nil distance without a descriptor")
	}
	if out[0].ColorBoost != 0 || out[0].Score != 0.5 {
		t.Errorf("descriptor-less candidate must keep its score, got %+v", out[0])
	}
}

func TestRerank_NilRoomIsPassthrough(t *testing.T) {
	svc := New(0, 0)
	cands := []domain.Candidate{
		{Item: domain.Item{ID: "a", AvgLab: labPtr(color.Lab{1, 2, 3})}, Score: 0.5},
	}

	out := svc.Rerank(cands, nil, 0.35, color.ModeMatch)
	if out[0].Score != 0.5 || out[0].ColorBoost != 0 {
		t.Error("nil room descriptor must leave candidates untouched")
	}
}
