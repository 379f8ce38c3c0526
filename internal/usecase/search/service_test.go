package search

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policysearch/internal/domain"
	"github.com/kailas-cloud/policysearch/internal/domain/culture"
	"github.com/kailas-cloud/policysearch/internal/domain/policy"
	"github.com/kailas-cloud/policysearch/internal/domain/search/field"
	"github.com/kailas-cloud/policysearch/internal/domain/search/mode"
	"github.com/kailas-cloud/policysearch/internal/domain/search/request"
	"github.com/kailas-cloud/policysearch/internal/index/ngram"
	"github.com/kailas-cloud/policysearch/internal/repository/corpus"
)

// --- Mocks ---

type fakeCorpus struct {
	snap *corpus.Snapshot
}

func (f fakeCorpus) Current() *corpus.Snapshot { return f.snap }

const (
	dummyID   = "Contoso.Dummy:EnableDummy"
	settingID = "Contoso.Settings:HidePage"
	kioskID   = "Contoso.Kiosk:Mode"
)

func testRecords() []corpus.Record {
	return []corpus.Record{
		{
			ID:           dummyID,
			RegistryPath: `HKLM\Software\Policies\Contoso\Dummy`,
			Texts: map[string]policy.Text{
				"en-US": {DisplayName: "Enable Dummy Feature", Description: "Turns on the dummy feature."},
				"ja-JP": {DisplayName: "ダミー機能を有効にする"},
			},
		},
		{
			ID:           settingID,
			RegistryPath: `HKCU\Software\Policies\Contoso\SettingsPageVisibility`,
			Texts: map[string]policy.Text{
				"en-US": {DisplayName: "Policy settings page"},
			},
		},
		{
			ID:           kioskID,
			RegistryPath: `HKLM\Software\Policies\Contoso\Kiosk\Mode`,
			Texts: map[string]policy.Text{
				"en-US": {DisplayName: "Printer defaults"},
				"ja-JP": {DisplayName: "Kiosk Mode 設定"},
			},
		},
	}
}

func newTestService(t *testing.T, m Metrics) *Service {
	t.Helper()
	snap, _ := corpus.Build(testRecords(), 1, ngram.DefaultOptions(), zap.NewNop())
	return New(fakeCorpus{snap: snap}, Config{MinHitsBeforeFallback: 1, WildcardStripProlonged: true}, m, zap.NewNop())
}

func newTestMetrics() Metrics {
	return Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests"}, []string{"outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "duration"}, []string{"path"}),
		Fallback: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fallback"}, []string{"decision"}),
	}
}

func mustRequest(
	t *testing.T, raw string, m mode.Mode, prefs culture.Preference, flags field.Flags, limit int,
) *request.Request {
	t.Helper()
	req, err := request.New(raw, m, prefs, flags, limit)
	if err != nil {
		t.Fatalf("request.New(%q): %v", raw, err)
	}
	return &req
}

func enUS() culture.Preference {
	return culture.Build(culture.Options{Primary: "en-US"})
}

// --- Tests ---

func TestSearch_EndToEndDummy(t *testing.T) {
	svc := newTestService(t, Metrics{})
	req := mustRequest(t, "dummy", mode.Or, enUS(), field.FlagName|field.FlagRegistry, 10)

	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits) == 0 {
		t.Fatal("expected hits")
	}
	top := resp.Hits[0]
	if top.UniqueID() != dummyID {
		t.Errorf("top hit = %s, want %s", top.UniqueID(), dummyID)
	}
	if top.DisplayName() != "Enable Dummy Feature" {
		t.Errorf("display name = %q", top.DisplayName())
	}
	if top.RegistryPath() != `HKLM\Software\Policies\Contoso\Dummy` {
		t.Errorf("registry path = %q", top.RegistryPath())
	}
	if resp.Fields.UseRegistry {
		t.Error("registry must not be searched for a non-registry query")
	}
	if !resp.Fields.UseName {
		t.Error("name must be searched")
	}
	if resp.FallbackUsed || resp.Unanswerable {
		t.Errorf("unexpected fallback: %+v", resp)
	}
	if resp.SnapshotVersion != 1 {
		t.Errorf("snapshot version = %d", resp.SnapshotVersion)
	}
}

func TestSearch_NotReady(t *testing.T) {
	m := newTestMetrics()
	svc := New(fakeCorpus{}, Config{}, m, nil)
	req := mustRequest(t, "dummy", mode.Or, enUS(), field.FlagName, 10)

	_, err := svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady, got %v", err)
	}
	if v := testutil.ToFloat64(m.Requests.WithLabelValues("not_ready")); v != 1 {
		t.Errorf("requests{not_ready} = %v", v)
	}
}

func TestSearch_CanceledContext(t *testing.T) {
	svc := newTestService(t, Metrics{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, mustRequest(t, "dummy", mode.Or, enUS(), field.FlagName, 10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSearch_FallbackSuppressedForPlaceholderSecond(t *testing.T) {
	m := newTestMetrics()
	svc := newTestService(t, m)
	prefs := culture.Build(culture.Options{Primary: "en-US", SecondEnabled: true, OSUICulture: "ja-JP"})

	resp, err := svc.Search(context.Background(), mustRequest(t, "kiosk", mode.Or, prefs, field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FallbackSkipped || resp.FallbackUsed {
		t.Errorf("fallback skipped=%v used=%v, want skipped", resp.FallbackSkipped, resp.FallbackUsed)
	}
	if len(resp.Hits) != 0 {
		t.Errorf("fallback culture resurrected hits: %v", ids(resp.Hits))
	}
	if len(resp.Slots) != 3 || !resp.Slots[1].Placeholder {
		t.Errorf("slots = %+v", resp.Slots)
	}
	if v := testutil.ToFloat64(m.Fallback.WithLabelValues("skipped")); v != 1 {
		t.Errorf("fallback{skipped} = %v", v)
	}
}

func TestSearch_SkippedFallbackStillScansPreferredCultures(t *testing.T) {
	svc := newTestService(t, Metrics{})
	prefs := culture.Build(culture.Options{Primary: "en-US", SecondEnabled: true, OSUICulture: "ja-JP"})

	resp, err := svc.Search(context.Background(), mustRequest(t, "p", mode.Or, prefs, field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Unanswerable || !resp.FallbackSkipped || resp.FallbackUsed {
		t.Errorf("unanswerable=%v skipped=%v used=%v, want unanswerable and skipped",
			resp.Unanswerable, resp.FallbackSkipped, resp.FallbackUsed)
	}
	got := ids(resp.Hits)
	if len(got) != 2 || got[0] != kioskID || got[1] != settingID {
		t.Errorf("hits = %v, want primary-culture matches [%s %s]", got, kioskID, settingID)
	}
}

func TestSearch_FallbackAllowedForMultiToken(t *testing.T) {
	svc := newTestService(t, Metrics{})
	prefs := culture.Build(culture.Options{Primary: "en-US", SecondEnabled: true, OSUICulture: "ja-JP"})

	resp, err := svc.Search(context.Background(), mustRequest(t, "kiosk mode", mode.Or, prefs, field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FallbackUsed {
		t.Fatal("expected fallback for a multi-token query")
	}
	if len(resp.Hits) != 1 || resp.Hits[0].UniqueID() != kioskID {
		t.Errorf("hits = %v, want [%s]", ids(resp.Hits), kioskID)
	}
}

func TestSearch_FallbackAllowedForRealSecond(t *testing.T) {
	svc := newTestService(t, Metrics{})
	prefs := culture.Build(culture.Options{
		Primary: "en-US", Second: "de-DE", SecondEnabled: true, OSUICulture: "ja-JP",
	})

	resp, err := svc.Search(context.Background(), mustRequest(t, "kiosk", mode.Or, prefs, field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.FallbackUsed || resp.FallbackSkipped {
		t.Fatalf("fallback used=%v skipped=%v, want used", resp.FallbackUsed, resp.FallbackSkipped)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].UniqueID() != kioskID {
		t.Fatalf("hits = %v", ids(resp.Hits))
	}
	// Found in a fallback culture: field weight times fallback weight.
	want := DefaultWeights().Name * DefaultWeights().Fallback
	if got := resp.Hits[0].Score(); got != want {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestSearch_ShortQueryIsUnanswerable(t *testing.T) {
	svc := newTestService(t, Metrics{})

	resp, err := svc.Search(context.Background(), mustRequest(t, "p", mode.Or, enUS(), field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Unanswerable || !resp.FallbackUsed {
		t.Errorf("unanswerable=%v fallback=%v, want both", resp.Unanswerable, resp.FallbackUsed)
	}
	got := ids(resp.Hits)
	if len(got) != 2 || got[0] != kioskID || got[1] != settingID {
		t.Errorf("hits = %v, want [%s %s]", got, kioskID, settingID)
	}
}

func TestSearch_AndVersusPhrase(t *testing.T) {
	svc := newTestService(t, Metrics{})

	tests := []struct {
		name string
		raw  string
		m    mode.Mode
		want []string
	}{
		{"and any order", "feature enable", mode.And, []string{dummyID}},
		{"phrase keeps order", "feature enable", mode.Or, []string{}},
		{"phrase ignores spaces", "dummyfeature", mode.Or, []string{dummyID}},
		{"and needs every word", "dummy page", mode.And, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Search(context.Background(), mustRequest(t, tt.raw, tt.m, enUS(), field.FlagName, 10))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := ids(resp.Hits)
			if len(got) != len(tt.want) {
				t.Fatalf("hits = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("hits = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSearch_RegistryQuery(t *testing.T) {
	svc := newTestService(t, Metrics{})
	req := mustRequest(t, `Contoso\Kiosk`, mode.Or, enUS(), field.FlagName|field.FlagRegistry, 10)

	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Fields.UseRegistry {
		t.Fatal("expected registry to be searched")
	}
	if len(resp.Hits) != 1 || resp.Hits[0].UniqueID() != kioskID {
		t.Errorf("hits = %v", ids(resp.Hits))
	}
}

func TestSearch_NameRanksAboveDescription(t *testing.T) {
	svc := newTestService(t, Metrics{})
	req := mustRequest(t, "feature", mode.Or, enUS(), field.FlagName|field.FlagDescription, 10)

	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("hits = %v", ids(resp.Hits))
	}
	// Name and description both match; the best field wins.
	if got := resp.Hits[0].Score(); got != DefaultWeights().Name {
		t.Errorf("score = %v, want %v", got, DefaultWeights().Name)
	}
}

func TestSearch_Wildcard(t *testing.T) {
	svc := newTestService(t, Metrics{})

	resp, err := svc.Search(context.Background(), mustRequest(t, "dum*feat", mode.Or, enUS(), field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Wildcard {
		t.Error("expected wildcard path")
	}
	if len(resp.Hits) != 1 || resp.Hits[0].UniqueID() != dummyID {
		t.Errorf("hits = %v", ids(resp.Hits))
	}

	ja := culture.Build(culture.Options{Primary: "ja-JP"})
	resp, err = svc.Search(context.Background(), mustRequest(t, "だみ*", mode.Or, ja, field.FlagName, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].DisplayName() != "ダミー機能を有効にする" {
		t.Errorf("hits = %v", ids(resp.Hits))
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	svc := newTestService(t, Metrics{})
	req := mustRequest(t, "contoso", mode.Or, enUS(), field.FlagID, 2)

	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ids(resp.Hits)
	if len(got) != 2 || got[0] != dummyID || got[1] != kioskID {
		t.Errorf("hits = %v, want first two ids in order", got)
	}
}
