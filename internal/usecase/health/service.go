package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the index serves but the source cannot be reloaded.
	Degraded Status = "degraded"
	// Unhealthy indicates no index snapshot has been published.
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

// Report aggregates health check results.
type Report struct {
	Status          Status
	Checks          map[string]CheckResult
	SnapshotVersion uint64
	Policies        int
}

// Service coordinates health checks.
type Service struct {
	index  IndexReader
	source SourceChecker
}

// New creates a Service. source can be nil.
func New(index IndexReader, source SourceChecker) *Service {
	return &Service{index: index, source: source}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	report := Report{Checks: checks}

	if snap := s.index.Current(); snap != nil {
		checks["index"] = CheckOK
		report.SnapshotVersion = snap.Version()
		report.Policies = snap.Len()
	} else {
		checks["index"] = CheckError
	}

	if s.source != nil {
		if err := s.source.HealthCheck(ctx); err != nil {
			checks["corpus_source"] = CheckError
		} else {
			checks["corpus_source"] = CheckOK
		}
	}

	report.Status = Healthy
	if checks["index"] == CheckError {
		report.Status = Unhealthy
	} else if checks["corpus_source"] == CheckError {
		report.Status = Degraded
	}
	return report
}
