// Package color defines the perceptual color descriptor and the scoring
// math used by the color reranker.
package color

import "math"

// Lab is a 3-component average color descriptor in CIE L*a*b*.
// Channels are on the CIE scale (L* in 0..100, a*/b* roughly -128..127)
// so the match/contrast decay scales stay meaningful.
type Lab [3]float64

// Default decay scales for the two similarity modes.
const (
	DefaultMatchScale    = 20.0
	DefaultContrastScale = 60.0
)

// Mode selects how color distance maps to a similarity boost.
type Mode string

const (
	// ModeMatch favors items whose average color is close to the room's.
	ModeMatch Mode = "match"
	// ModeContrast favors items whose average color is far from the room's.
	ModeContrast Mode = "contrast"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeMatch || m == ModeContrast
}

// DeltaE returns the Euclidean distance between two descriptors.
func DeltaE(a, b Lab) float64 {
	dl := a[0] - b[0]
	da := a[1] - b[1]
	db := a[2] - b[2]
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Similarity maps a perceptual distance to a (0,1]-bounded score.
// match: exp(-dE/matchScale), 1 at dE=0, decaying with distance.
// contrast: tanh(dE/contrastScale), 0 at dE=0, saturating with distance.
func Similarity(m Mode, dE, matchScale, contrastScale float64) float64 {
	if m == ModeContrast {
		return math.Tanh(dE / contrastScale)
	}
	return math.Exp(-dE / matchScale)
}
