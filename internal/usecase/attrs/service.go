package attrs

import (
	"strings"

	"github.com/roomcraft/reco/internal/domain"
)

// ReasonNoStrictMatch is reported when a strict attribute filter left no
// candidates and the soft-boosted list is served as related items instead.
const ReasonNoStrictMatch = "no_strict_additional_match"

// Resolution is the outcome of mapping a request's attribute labels onto
// catalog flag fields.
type Resolution struct {
	// Received holds the deduplicated labels, request-provided plus
	// text-derived. Empty when the request opted out of attributes.
	Received []string
	// Flags holds the catalog flag fields the labels resolved to.
	Flags []string
	// NoPreference is set when the request explicitly asked for no
	// attribute filtering ("None"), which also disables strict mode.
	NoPreference bool
	// Strict is the effective filter mode after defaults are applied.
	Strict bool
}

// Service filters and boosts candidates by their attribute flags.
type Service struct {
	boostPerMatch float64
}

// New creates an attribute service. boostPerMatch is added to a
// candidate's score once per satisfied flag during soft boosting.
func New(boostPerMatch float64) *Service {
	return &Service{boostPerMatch: boostPerMatch}
}

// Resolve merges the request's attribute labels with labels derived from
// free text, then maps them to flag fields and settles the strict mode.
// An explicit strict flag from the request wins over the default (strict
// when any label was received), but resolved flags always force strict
// and a "None" label always clears it.
func (s *Service) Resolve(requested []string, text string, explicitStrict *bool) Resolution {
	labels := append([]string(nil), requested...)
	labels = append(labels, labelsFromText(text)...)

	seen := make(map[string]struct{}, len(labels))
	received := make([]string, 0, len(labels))
	noPreference := false
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if strings.EqualFold(l, "none") {
			noPreference = true
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		received = append(received, l)
	}

	if noPreference {
		return Resolution{NoPreference: true}
	}

	res := Resolution{Received: received}
	for _, l := range received {
		if field, ok := flagFor(l); ok {
			res.Flags = append(res.Flags, field)
		}
	}

	switch {
	case explicitStrict != nil:
		res.Strict = *explicitStrict
	default:
		res.Strict = len(received) > 0
	}
	if len(res.Flags) > 0 {
		res.Strict = true
	}
	return res
}

// labelsFromText derives attribute labels from the preference text, so
// "a sofa with armrests" filters like an explicit armrest selection.
func labelsFromText(text string) []string {
	t := strings.ToLower(text)
	var out []string
	if strings.Contains(t, "armrest") {
		out = append(out, "With armrest")
	}
	if strings.Contains(t, "cushion") || strings.Contains(t, "pillow") {
		out = append(out, "Cushion")
	}
	if strings.Contains(t, "no additional") || strings.Contains(t, "none") {
		out = append(out, "None")
	}
	return out
}

// Apply filters or boosts candidates by the wanted flags. In strict mode
// candidates must satisfy every flag; when none do, the whole list is
// soft-boosted instead and ReasonNoStrictMatch is returned so the caller
// can serve it as related items. In soft mode every candidate gets a
// score boost per satisfied flag. Candidate order is preserved.
func (s *Service) Apply(cands []domain.Candidate, wanted []string, flagsByItem map[string]map[string]bool, strict bool) ([]domain.Candidate, string) {
	if len(wanted) == 0 {
		return cands, ""
	}

	if strict {
		strictPass := make([]domain.Candidate, 0, len(cands))
		for _, c := range cands {
			if hasAllFlags(flagsByItem[c.ID], wanted) {
				strictPass = append(strictPass, c)
			}
		}
		if len(strictPass) > 0 {
			return strictPass, ""
		}
		return s.softBoost(cands, wanted, flagsByItem), ReasonNoStrictMatch
	}

	return s.softBoost(cands, wanted, flagsByItem), ""
}

func (s *Service) softBoost(cands []domain.Candidate, wanted []string, flagsByItem map[string]map[string]bool) []domain.Candidate {
	out := make([]domain.Candidate, len(cands))
	for i, c := range cands {
		flags := flagsByItem[c.ID]
		for _, f := range wanted {
			if flags[f] {
				c.Score += s.boostPerMatch
			}
		}
		out[i] = c
	}
	return out
}

func hasAllFlags(flags map[string]bool, wanted []string) bool {
	for _, f := range wanted {
		if !flags[f] {
			return false
		}
	}
	return true
}
