package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchRequestsTotal.WithLabelValues("ok").Inc()
	if got := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("ok")); got < 1 {
		t.Errorf("search_requests_total{outcome=ok} = %f, want >= 1", got)
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "policysearch_search_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("policysearch_search_requests_total not registered")
	}
}
