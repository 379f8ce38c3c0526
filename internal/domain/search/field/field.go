// Package field decides which policy fields take part in a search.
package field

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/policysearch/internal/domain/search/query"
)

// Kind identifies a searchable policy field.
type Kind string

// Searchable fields.
const (
	Name        Kind = "name"
	ID          Kind = "id"
	Registry    Kind = "registry"
	Description Kind = "description"
)

// Localized reports whether the field text differs per culture.
func (k Kind) Localized() bool { return k == Name || k == Description }

// AllKinds lists every field in evaluation order.
func AllKinds() []Kind { return []Kind{Name, ID, Registry, Description} }

// Flags is a set of requested fields.
type Flags uint8

// Field flags.
const (
	FlagName Flags = 1 << iota
	FlagID
	FlagRegistry
	FlagDescription

	FlagNone Flags = 0
	FlagAll        = FlagName | FlagID | FlagRegistry | FlagDescription
)

// Has reports whether every flag in other is set.
func (f Flags) Has(other Flags) bool { return f&other == other && other != 0 }

// String renders the flags as a comma-separated list.
func (f Flags) String() string {
	parts := make([]string, 0, 4)
	for _, k := range AllKinds() {
		if f.Has(flagOf(k)) {
			parts = append(parts, string(k))
		}
	}
	return strings.Join(parts, ",")
}

// ParseFlags parses a comma-separated field list ("name,id"). An empty
// string yields FlagNone.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		switch part {
		case "":
		case string(Name):
			f |= FlagName
		case string(ID):
			f |= FlagID
		case string(Registry):
			f |= FlagRegistry
		case string(Description):
			f |= FlagDescription
		case "all":
			f |= FlagAll
		default:
			return FlagNone, fmt.Errorf("unknown field %q", part)
		}
	}
	return f, nil
}

// Set is the field selection actually used for a query.
type Set struct {
	Requested      Flags `json:"requested"`
	UseName        bool  `json:"use_name"`
	UseID          bool  `json:"use_id"`
	UseRegistry    bool  `json:"use_registry"`
	UseDescription bool  `json:"use_description"`
}

// Select combines the requested flags with the query heuristics. Registry
// paths are searched only when the query looks like one.
func Select(requested Flags, q query.Query) Set {
	return Set{
		Requested:      requested,
		UseName:        requested.Has(FlagName),
		UseID:          requested.Has(FlagID),
		UseRegistry:    requested.Has(FlagRegistry) && q.LooksLikeRegistry(),
		UseDescription: requested.Has(FlagDescription),
	}
}

// HasAny reports whether at least one field is searchable.
func (s Set) HasAny() bool {
	return s.UseName || s.UseID || s.UseRegistry || s.UseDescription
}

// Uses reports whether kind is selected.
func (s Set) Uses(k Kind) bool {
	switch k {
	case Name:
		return s.UseName
	case ID:
		return s.UseID
	case Registry:
		return s.UseRegistry
	case Description:
		return s.UseDescription
	}
	return false
}

// Kinds returns the selected fields in evaluation order.
func (s Set) Kinds() []Kind {
	out := make([]Kind, 0, 4)
	for _, k := range AllKinds() {
		if s.Uses(k) {
			out = append(out, k)
		}
	}
	return out
}

func flagOf(k Kind) Flags {
	switch k {
	case Name:
		return FlagName
	case ID:
		return FlagID
	case Registry:
		return FlagRegistry
	case Description:
		return FlagDescription
	}
	return FlagNone
}
