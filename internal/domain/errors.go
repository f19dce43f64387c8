package domain

import "errors"

var (
	// ErrIndexUnavailable signals that the search index is missing or empty.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrCatalogEmpty signals that the catalog mapping holds no items.
	ErrCatalogEmpty = errors.New("catalog is empty")
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
