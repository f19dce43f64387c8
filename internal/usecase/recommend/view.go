package recommend

import (
	"context"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/color"
)

// View is the UI projection of a ranked candidate. Several fields are
// deliberately duplicated (id/slug, name/title, the four image aliases)
// because different storefront components read different keys.
type View struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	CategorySlug   string     `json:"categorySlug,omitempty"`
	DepartmentSlug string     `json:"departmentSlug,omitempty"`
	ImageURL       string     `json:"imageUrl"`
	Image          string     `json:"image"`
	Thumbnail      string     `json:"thumbnail"`
	PrimaryImage   string     `json:"primaryImage"`
	Images         []string   `json:"images"`
	BasePrice      float64    `json:"basePrice"`
	Price          float64    `json:"price"`
	Score          float64    `json:"score"`
	AvgLab         *color.Lab `json:"avg_lab,omitempty"`
	ColorDeltaE    *float64   `json:"color_deltaE"`
	ColorBoost     float64    `json:"color_boost"`
}

func (s *Service) views(ctx context.Context, images *imageResolver, cands []domain.Candidate) []View {
	out := make([]View, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		urls := images.resolve(ctx, &c.Item)
		primary := ""
		if len(urls) > 0 {
			primary = urls[0]
		}
		title := c.DisplayTitle()
		if title == "" {
			title = c.ID
		}
		out = append(out, View{
			ID:             c.ID,
			Slug:           c.ID,
			Name:           title,
			Title:          title,
			CategorySlug:   c.CategorySlug,
			DepartmentSlug: c.DepartmentSlug,
			ImageURL:       primary,
			Image:          primary,
			Thumbnail:      primary,
			PrimaryImage:   primary,
			Images:         urls,
			BasePrice:      c.BasePrice,
			Price:          c.BasePrice,
			Score:          c.Score,
			AvgLab:         c.AvgLab,
			ColorDeltaE:    c.ColorDeltaE,
			ColorBoost:     c.ColorBoost,
		})
	}
	return out
}
