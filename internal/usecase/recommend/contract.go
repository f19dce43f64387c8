package recommend

import (
	"context"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/domain/color"
	"github.com/roomcraft/reco/internal/usecase/retrieve"
)

// Fuser builds the query vector from the request modalities.
type Fuser interface {
	Fuse(ctx context.Context, text string, image []byte, wImage, wText float64) ([]float32, error)
}

// Retriever returns type-filtered candidates for a query vector.
type Retriever interface {
	Retrieve(ctx context.Context, vec []float32, k int, typeFilter string) (retrieve.Result, error)
}

// FlagSource loads the attribute flags of the whole catalog.
type FlagSource interface {
	Flags(ctx context.Context) (map[string]map[string]bool, error)
}

// ImageSource hydrates image references for items whose snapshot row
// carries none.
type ImageSource interface {
	ItemImages(ctx context.Context, id string) ([]string, error)
}

// Resolver turns a stored image reference into a fetchable URL.
type Resolver interface {
	Resolve(ref string) (string, bool)
}

// SwatchSource computes and memoizes per-item color descriptors.
type SwatchSource interface {
	Lookup(ctx context.Context, id string, urls []string) (color.Lab, bool)
}

// CatalogSource exposes the loaded snapshot for self-checks.
type CatalogSource interface {
	Items() []domain.Item
	ItemByRow(row int) (domain.Item, bool)
}

// Fetcher downloads an image by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ExtractFunc turns raw image bytes into a color descriptor.
type ExtractFunc func(data []byte) (color.Lab, error)
