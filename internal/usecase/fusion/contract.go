package fusion

import (
	"context"

	"github.com/roomcraft/reco/internal/domain"
)

// TextEmbedder vectorizes preference text.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEmbedder vectorizes a room photo.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error)
}
