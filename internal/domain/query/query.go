// Package query defines the validated recommendation request descriptor.
package query

import (
	"fmt"
	"strings"

	"github.com/roomcraft/reco/internal/domain/color"
)

// Request parameter limits and defaults.
const (
	MaxTextLength      = 4096
	DefaultK           = 24
	MaxK               = 100
	DefaultWeightImage = 0.7
	DefaultWeightText  = 0.3
	DefaultColorWeight = 0.35
)

// Params carries raw request parameters into New. Pointer fields
// distinguish "absent" from an explicit zero.
type Params struct {
	Text        string
	Image       []byte
	K           int
	TypeFilter  string
	Labels      []string
	Strict      *bool
	WeightImage *float64
	WeightText  *float64
	ColorWeight *float64
	ColorMode   string
}

// Query is a validated, per-request recommendation descriptor.
type Query struct {
	text        string
	image       []byte
	k           int
	typeFilter  string
	labels      []string
	strict      bool
	strictSet   bool
	wImage      float64
	wText       float64
	colorWeight float64
	colorMode   color.Mode
}

// New validates and normalizes request parameters.
// Defaults: k=24 (clamped to MaxK), w_image=0.7, w_text=0.3,
// color_weight=0.35, color_mode=match.
func New(p Params) (Query, error) {
	text := strings.TrimSpace(p.Text)
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("text too long (max %d chars)", MaxTextLength)
	}

	k := p.K
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}

	wImage := DefaultWeightImage
	if p.WeightImage != nil {
		wImage = *p.WeightImage
	}
	wText := DefaultWeightText
	if p.WeightText != nil {
		wText = *p.WeightText
	}
	if wImage < 0 || wText < 0 {
		return Query{}, fmt.Errorf("fusion weights must be non-negative")
	}

	colorWeight := DefaultColorWeight
	if p.ColorWeight != nil {
		colorWeight = *p.ColorWeight
	}
	if colorWeight < 0 {
		return Query{}, fmt.Errorf("color_weight must be non-negative")
	}

	mode := color.ModeMatch
	if cm := strings.ToLower(strings.TrimSpace(p.ColorMode)); cm != "" {
		mode = color.Mode(cm)
		if !mode.IsValid() {
			return Query{}, fmt.Errorf("invalid color_mode: %q", p.ColorMode)
		}
	}

	q := Query{
		text:        text,
		image:       p.Image,
		k:           k,
		typeFilter:  strings.TrimSpace(p.TypeFilter),
		labels:      p.Labels,
		wImage:      wImage,
		wText:       wText,
		colorWeight: colorWeight,
		colorMode:   mode,
	}
	if p.Strict != nil {
		q.strict = *p.Strict
		q.strictSet = true
	}
	return q, nil
}

// Text returns the trimmed preference text.
func (q *Query) Text() string { return q.text }

// Image returns the raw room photo bytes (nil when absent).
func (q *Query) Image() []byte { return q.image }

// K returns the requested result count.
func (q *Query) K() int { return q.k }

// TypeFilter returns the furniture type filter token ("" when absent).
func (q *Query) TypeFilter() string { return q.typeFilter }

// Labels returns the requested additional-attribute labels.
func (q *Query) Labels() []string { return q.labels }

// Strict returns the explicit strict flag and whether it was set at all.
func (q *Query) Strict() (value, set bool) { return q.strict, q.strictSet }

// WeightImage returns the image fusion weight.
func (q *Query) WeightImage() float64 { return q.wImage }

// WeightText returns the text fusion weight.
func (q *Query) WeightText() float64 { return q.wText }

// ColorWeight returns the color rerank weight.
func (q *Query) ColorWeight() float64 { return q.colorWeight }

// ColorMode returns the color similarity mode.
func (q *Query) ColorMode() color.Mode { return q.colorMode }
