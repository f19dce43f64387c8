package retrieve

import (
	"strings"

	"github.com/roomcraft/reco/internal/domain"
)

// typeAliases widens a requested furniture type to the substrings that
// commonly mark it in catalog slugs, ids and names. The dash and space
// variants catch compound slugs like "day-bed" and names like
// "Panel Bed".
var typeAliases = map[string][]string{
	"bed":       {"bedroom", "-bed", " bed"},
	"sofa":      {"sofa", " couch", "-sofa"},
	"chair":     {"chair", "-chair"},
	"table":     {"table", "-table", "dining"},
	"bench":     {"bench", "-bench"},
	"sectional": {"sectional", "-sectional"},
	"ottoman":   {"ottoman", "-ottoman"},
}

// matchesType reports whether the item belongs to the requested furniture
// type. An empty filter matches everything. Matching is case-insensitive
// substring search over department, category, id and display name, first
// with the raw filter, then with its aliases.
func matchesType(it *domain.Item, filter string) bool {
	t := strings.ToLower(strings.TrimSpace(filter))
	if t == "" {
		return true
	}
	fields := [4]string{
		strings.ToLower(it.DepartmentSlug),
		strings.ToLower(it.CategorySlug),
		strings.ToLower(it.ID),
		strings.ToLower(it.DisplayTitle()),
	}
	for _, f := range fields {
		if strings.Contains(f, t) {
			return true
		}
	}
	for _, token := range typeAliases[t] {
		for _, f := range fields {
			if strings.Contains(f, token) {
				return true
			}
		}
	}
	return false
}
