package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/policysearch/internal/domain/policy"
	"github.com/kailas-cloud/policysearch/internal/index/ngram"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
)

// --- Mocks ---

type mockIndex struct {
	snap *corpus.Snapshot
}

func (m *mockIndex) Current() *corpus.Snapshot { return m.snap }

type mockSource struct {
	err error
}

func (m *mockSource) HealthCheck(_ context.Context) error { return m.err }

func readyIndex() *mockIndex {
	snap, _ := corpus.Build([]corpus.Record{{
		ID:    "p",
		Texts: map[string]policy.Text{"en-US": {DisplayName: "Policy"}},
	}}, 3, ngram.DefaultOptions(), nil)
	return &mockIndex{snap: snap}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(readyIndex(), &mockSource{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["index"] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks["index"])
	}
	if r.Checks["corpus_source"] != CheckOK {
		t.Errorf("expected corpus_source %q, got %q", CheckOK, r.Checks["corpus_source"])
	}
	if r.SnapshotVersion != 3 || r.Policies != 1 {
		t.Errorf("unexpected snapshot info: version=%d policies=%d", r.SnapshotVersion, r.Policies)
	}
}

func TestCheck_IndexNotReady(t *testing.T) {
	svc := New(&mockIndex{}, &mockSource{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks["index"])
	}
}

func TestCheck_SourceError(t *testing.T) {
	svc := New(readyIndex(), &mockSource{err: errors.New("file missing")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["index"] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks["index"])
	}
	if r.Checks["corpus_source"] != CheckError {
		t.Errorf("expected corpus_source %q, got %q", CheckError, r.Checks["corpus_source"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(&mockIndex{}, &mockSource{err: errors.New("gone")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["corpus_source"] != CheckError {
		t.Error("expected corpus_source error")
	}
}

func TestCheck_NoSource(t *testing.T) {
	svc := New(readyIndex(), nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["corpus_source"]; ok {
		t.Error("corpus_source check should be absent when source is nil")
	}
}
