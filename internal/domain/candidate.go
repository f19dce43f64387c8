package domain

// Candidate is a pipeline-scoped derived record: a catalog item plus the
// scoring state accumulated across retrieval, attribute boosting, and
// color reranking. Candidates are passed by value so each stage works on
// its own shallow copy.
type Candidate struct {
	Item

	// Score starts as the raw ANN similarity and accumulates boosts.
	Score float64

	// ColorDeltaE is the perceptual distance to the room descriptor.
	// Nil when the item has no color descriptor or no room photo was given.
	ColorDeltaE *float64

	// ColorBoost is the score increment contributed by color reranking.
	ColorBoost float64
}

// SearchHit is one raw ANN result row: a mapping row index and its
// similarity score.
type SearchHit struct {
	Row   int
	Score float64
}
