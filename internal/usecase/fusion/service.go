package fusion

import (
	"context"
	"fmt"

	"github.com/viant/vec/search"
	"go.uber.org/zap"

	"github.com/roomcraft/reco/internal/logger"
)

// neutralQuery is embedded when a request carries no usable modality, so
// the retriever always receives a valid unit vector.
const neutralQuery = "furniture"

// Service combines optional text and image embeddings into one
// unit-length query vector.
type Service struct {
	texts  TextEmbedder
	images ImageEmbedder
}

// New creates a fusion service.
func New(texts TextEmbedder, images ImageEmbedder) *Service {
	return &Service{texts: texts, images: images}
}

// Fuse builds the query vector. A malformed or unembeddable image
// degrades silently to text-only (or neutral) fusion; it never fails the
// request. A text embedding failure falls back to the image vector when
// one exists, and only errors when nothing else can be produced.
func (s *Service) Fuse(ctx context.Context, text string, image []byte, wImage, wText float64) ([]float32, error) {
	var imgVec, txtVec []float32

	if len(image) > 0 {
		res, err := s.images.EmbedImage(ctx, image)
		if err != nil {
			logger.FromContext(ctx).Warn("image embedding failed, degrading to text", zap.Error(err))
		} else {
			imgVec = res.Embedding
		}
	}

	if text != "" {
		res, err := s.texts.EmbedText(ctx, text)
		if err != nil {
			if imgVec == nil {
				return nil, fmt.Errorf("embed text: %w", err)
			}
			logger.FromContext(ctx).Warn("text embedding failed, using image only", zap.Error(err))
		} else {
			txtVec = res.Embedding
		}
	}

	switch {
	case imgVec == nil && txtVec == nil:
		res, err := s.texts.EmbedText(ctx, neutralQuery)
		if err != nil {
			return nil, fmt.Errorf("embed neutral fallback: %w", err)
		}
		return res.Embedding, nil
	case imgVec == nil:
		return txtVec, nil
	case txtVec == nil:
		return imgVec, nil
	}

	if len(imgVec) != len(txtVec) {
		return nil, fmt.Errorf("modality dimensions differ: image=%d text=%d", len(imgVec), len(txtVec))
	}

	fused := make([]float32, len(imgVec))
	for i := range fused {
		fused[i] = float32(wImage)*imgVec[i] + float32(wText)*txtVec[i]
	}
	if err := normalize(fused); err != nil {
		return nil, fmt.Errorf("normalize fused vector: %w", err)
	}
	return fused, nil
}

// normalize scales v to unit length in place.
func normalize(v []float32) error {
	mag := search.Float32s(v).Magnitude()
	if mag == 0 {
		return fmt.Errorf("zero-magnitude vector")
	}
	for i := range v {
		v[i] /= mag
	}
	return nil
}
