package field

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/policysearch/internal/domain/search/query"
)

func TestSelect_RegistryRequiresHeuristic(t *testing.T) {
	s := Select(FlagName|FlagRegistry, query.New("dummy", false))
	if !s.UseName || s.UseRegistry {
		t.Fatalf("Select() = %+v", s)
	}
	s = Select(FlagName|FlagRegistry, query.New(`HKLM\Software\Contoso`, false))
	if !s.UseRegistry {
		t.Fatalf("Select() = %+v, want registry", s)
	}
}

func TestSelect_PassThrough(t *testing.T) {
	s := Select(FlagID|FlagDescription, query.New("anything", true))
	if s.UseName || !s.UseID || s.UseRegistry || !s.UseDescription {
		t.Fatalf("Select() = %+v", s)
	}
	if got := s.Kinds(); !reflect.DeepEqual(got, []Kind{ID, Description}) {
		t.Errorf("Kinds() = %v", got)
	}
}

func TestSelect_NoUsableField(t *testing.T) {
	s := Select(FlagRegistry, query.New("dummy", false))
	if s.HasAny() {
		t.Fatalf("HasAny() = true for %+v", s)
	}
	if s.Requested != FlagRegistry {
		t.Errorf("Requested = %v", s.Requested)
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		in      string
		want    Flags
		wantErr bool
	}{
		{"name,id", FlagName | FlagID, false},
		{" Registry , description ", FlagRegistry | FlagDescription, false},
		{"all", FlagAll, false},
		{"", FlagNone, false},
		{"name,title", FlagNone, true},
	}
	for _, tt := range tests {
		got, err := ParseFlags(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFlags(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFlags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFlags_String(t *testing.T) {
	if got := (FlagName | FlagRegistry).String(); got != "name,registry" {
		t.Errorf("String() = %q", got)
	}
	if FlagNone.Has(FlagNone) {
		t.Error("FlagNone.Has(FlagNone) = true")
	}
}

func TestKind_Localized(t *testing.T) {
	if !Name.Localized() || !Description.Localized() || ID.Localized() || Registry.Localized() {
		t.Error("unexpected Localized() values")
	}
}
