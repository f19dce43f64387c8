package domain

import "github.com/roomcraft/reco/internal/domain/color"

// Item is one immutable catalog snapshot row loaded from the artifact
// mapping. Row order matches the ANN index; pipeline stages never mutate
// an Item, they derive Candidates from it.
type Item struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Title          string   `json:"title,omitempty"`
	CategorySlug   string   `json:"categorySlug,omitempty"`
	DepartmentSlug string   `json:"departmentSlug,omitempty"`
	BasePrice      float64  `json:"basePrice,omitempty"`
	Images         []string `json:"images,omitempty"`
	Thumbnail      string   `json:"thumbnail,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	HeroImage      string   `json:"heroImage,omitempty"`

	// AvgLab is the precomputed perceptual color descriptor, when the
	// index builder stored one. Nil means "compute lazily".
	AvgLab *color.Lab `json:"avg_lab,omitempty"`
}

// DisplayTitle picks the best available display name.
func (it *Item) DisplayTitle() string {
	switch {
	case it.Name != "":
		return it.Name
	case it.Title != "":
		return it.Title
	default:
		return it.ID
	}
}

// ImageCandidates returns the item's raw image references in priority
// order, deduplicated. The refs may be https URLs or obj:// storage
// paths; resolution to servable URLs happens downstream.
func (it *Item) ImageCandidates() []string {
	raw := make([]string, 0, len(it.Images)+3)
	raw = append(raw, it.Images...)
	for _, u := range []string{it.Thumbnail, it.ImageURL, it.HeroImage} {
		if u != "" {
			raw = append(raw, u)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
