package health

import "context"

// IndexReader reports the size of the loaded vector snapshot.
type IndexReader interface {
	Size() int
}

// StorePinger checks catalog store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
