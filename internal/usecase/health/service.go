package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot recommend at all.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. IndexSize is always included
// so operators can tell an empty snapshot from a missing one.
type Report struct {
	Status    Status
	IndexSize int
	Checks    map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index     IndexReader
	store     StorePinger
	embedding EmbeddingChecker
}

// New creates a Service. store and embedding can be nil.
func New(index IndexReader, store StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{index: index, store: store, embedding: embedding}
}

// Check runs health checks against all components. An empty index makes
// the whole service unhealthy; a failing store or provider only degrades
// it, because cached flags and text-only queries still work.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	size := s.index.Size()
	if size > 0 {
		checks["index"] = CheckOK
	} else {
		checks["index"] = CheckError
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = CheckError
		} else {
			checks["store"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["index"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, IndexSize: size, Checks: checks}
}
