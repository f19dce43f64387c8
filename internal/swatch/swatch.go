// Package swatch extracts a perceptual average-color descriptor from an
// image. The image is downsampled to a small fixed resolution first so
// the mean is stable across source resolutions and sensor noise.
package swatch

import (
	"bytes"
	"fmt"
	"image"

	// Registered decoders for the catalog's image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/roomcraft/reco/internal/domain/color"
)

// sampleSize is the downsample resolution used before averaging.
const sampleSize = 96

// Extractor computes average Lab descriptors. It is stateless; the type
// exists so callers can depend on a narrow interface.
type Extractor struct{}

// AverageLab implements the extractor contract on raw image bytes.
func (Extractor) AverageLab(data []byte) (color.Lab, error) {
	return AverageLab(data)
}

// AverageLab decodes an image, downsamples it to 96x96, and returns the
// per-channel CIE L*a*b* mean. Undecodable input returns an error; the
// caller treats that as "no descriptor", never as a request failure.
func AverageLab(data []byte) (color.Lab, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return color.Lab{}, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sumL, sumA, sumB float64
	var count int
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			c, ok := colorful.MakeColor(dst.At(x, y))
			if !ok {
				continue
			}
			l, a, b := c.Lab()
			sumL += l
			sumA += a
			sumB += b
			count++
		}
	}
	if count == 0 {
		return color.Lab{}, fmt.Errorf("image has no opaque pixels")
	}

	// go-colorful keeps L in 0..1 and a/b near -1..1; rescale to the CIE
	// range the delta-E decay constants are calibrated against.
	n := float64(count)
	return color.Lab{
		sumL / n * 100,
		sumA / n * 100,
		sumB / n * 100,
	}, nil
}
