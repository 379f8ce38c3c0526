package query

import (
	"reflect"
	"testing"
)

func TestNew_DerivedForms(t *testing.T) {
	q := New("  Enable   DUMMY ", false)
	if q.Raw() != "  Enable   DUMMY " {
		t.Errorf("Raw() = %q", q.Raw())
	}
	if q.Strict() != "enable dummy" {
		t.Errorf("Strict() = %q", q.Strict())
	}
	if q.Loose() != "enable dummy" {
		t.Errorf("Loose() = %q", q.Loose())
	}
	if q.NGramStrict() == "" || q.NGramStrict() != q.NGramLoose() {
		t.Errorf("NGramStrict() = %q, NGramLoose() = %q", q.NGramStrict(), q.NGramLoose())
	}
	if !q.IsPhraseMode() {
		t.Error("IsPhraseMode() = false for OR multi-word query")
	}
	if q.TokenCount() != 2 {
		t.Errorf("TokenCount() = %d", q.TokenCount())
	}
	if got := q.Terms(); !reflect.DeepEqual(got, []string{"enable dummy"}) {
		t.Errorf("Terms() = %v", got)
	}
}

func TestNew_AndModeTerms(t *testing.T) {
	q := New("enable dummy", true)
	if q.IsPhraseMode() {
		t.Error("IsPhraseMode() = true in AND mode")
	}
	if got := q.Terms(); !reflect.DeepEqual(got, []string{"enable", "dummy"}) {
		t.Errorf("Terms() = %v", got)
	}
}

func TestNew_LooseKana(t *testing.T) {
	q := New("ぽりしー", false)
	if q.Loose() != "ポリシ" {
		t.Errorf("Loose() = %q", q.Loose())
	}
	if q.NGramLoose() != "ポリ ポリシ リシ" {
		t.Errorf("NGramLoose() = %q", q.NGramLoose())
	}
}

func TestNew_Empty(t *testing.T) {
	q := New("  !!! ", true)
	if !q.IsEmpty() {
		t.Error("IsEmpty() = false")
	}
	if q.Terms() != nil {
		t.Errorf("Terms() = %v", q.Terms())
	}
	if !q.IsShort() {
		t.Error("IsShort() = false for empty query")
	}
}

func TestIsShort(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"a", true},
		{"ab", true},
		{"abc", false},
		{"設定", true},
	}
	for _, tt := range tests {
		if got := New(tt.raw, false).IsShort(); got != tt.want {
			t.Errorf("IsShort(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLooksLikeRegistry(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`HKLM\Software\Policies`, true},
		{`Contoso\Dummy`, true},
		{"HKLM", true},
		{"hkcu something", true},
		{"HKEY_LOCAL_MACHINE", true},
		{"HKEY CURRENT USER", true},
		{"dummy", false},
		{"software", false},
		{"", false},
		{"edge policies", false},
		{"Policies/", false},
	}
	for _, tt := range tests {
		if got := LooksLikeRegistry(tt.in); got != tt.want {
			t.Errorf("LooksLikeRegistry(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Microsoft.Policies.Edge:AllowSync", true},
		{"AllowDummyFeatureSetting", true},
		{"AllowDummy", false},
		{"allowdummyfeaturesetting", false},
		{"Allow Dummy Feature Setting", false},
		{"", false},
		{"設定設定設定設定設定設定設定", false},
	}
	for _, tt := range tests {
		if got := LooksLikeID(tt.in); got != tt.want {
			t.Errorf("LooksLikeID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScriptClassifiers(t *testing.T) {
	tests := []struct {
		raw        string
		shortASCII bool
		longASCII  bool
		cjk        bool
	}{
		{"edge", true, false, false},
		{"ed", false, false, false},
		{"onedrive365", true, true, false},
		{"one drive", false, false, false},
		{"ポリシー", false, false, true},
		{"設定", false, false, false},
		{"edge設定", false, false, true},
	}
	for _, tt := range tests {
		q := New(tt.raw, false)
		if got := q.IsShortASCIIToken(); got != tt.shortASCII {
			t.Errorf("IsShortASCIIToken(%q) = %v", tt.raw, got)
		}
		if got := q.IsLongASCIIToken(); got != tt.longASCII {
			t.Errorf("IsLongASCIIToken(%q) = %v", tt.raw, got)
		}
		if got := q.IsCJKToken(); got != tt.cjk {
			t.Errorf("IsCJKToken(%q) = %v", tt.raw, got)
		}
	}
}

func TestIsWildcard(t *testing.T) {
	if !New("edge*", false).IsWildcard() || !New("ed?e", false).IsWildcard() {
		t.Error("IsWildcard() = false for wildcard queries")
	}
	if New("edge", false).IsWildcard() {
		t.Error("IsWildcard() = true for plain query")
	}
}
