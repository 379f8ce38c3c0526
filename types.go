package policysearch

import (
	"time"

	"github.com/kailas-cloud/policysearch/internal/domain/policy"
)

// Text is the localized text of a policy in one culture.
type Text = policy.Text

// Policy is a policy definition handed to Rebuild.
type Policy struct {
	ID           string
	RegistryPath string
	// Texts are keyed by culture name ("en-US", "ja-JP").
	Texts        map[string]Text
}

// Field selects which policy fields a search looks at.
type Field uint8

// Searchable fields. Combine with |.
const (
	FieldName Field = 1 << iota
	FieldID
	FieldRegistry
	FieldDescription

	FieldAll = FieldName | FieldID | FieldRegistry | FieldDescription
)

// Mode is how multi-word queries combine.
type Mode string

// Match modes.
const (
	// ModeOr matches the whole query as one phrase (default).
	ModeOr Mode = "or"
	// ModeAnd requires every word to match.
	ModeAnd Mode = "and"
)

// SearchOptions configures a search. Zero values use the engine defaults.
type SearchOptions struct {
	Query  string
	Fields Field // 0 means FieldAll
	Mode   Mode
	Limit  int

	// Culture overrides. Empty keeps the engine default. A non-empty Second
	// enables the second slot; SecondEnabled alone enables it as a placeholder
	// when no distinct second culture is known.
	Primary       string
	Second        string
	SecondEnabled bool
}

// Hit is a ranked search result.
type Hit struct {
	ID           string
	DisplayName  string
	RegistryPath string
	Score        float64
}

// Role is the position a culture holds in the fallback chain:
// "primary", "second", "os_fallback", "en_us_fallback" or "other_fallback".
type Role string

// Slot is one resolved entry of the culture chain. A placeholder Second slot
// keeps the second position addressable without adding a lookup.
type Slot struct {
	Name        string
	Role        Role
	Placeholder bool
}

// FieldSelection reports which fields a search actually looked at.
// Registry paths are only searched when the query looks like one.
type FieldSelection struct {
	Requested   Field
	Name        bool
	ID          bool
	Registry    bool
	Description bool
}

// Result is the outcome of a search.
type Result struct {
	Hits            []Hit
	// Slots is the resolved culture chain, placeholders included.
	Slots           []Slot
	// Cultures are the distinct culture names in preference order.
	Cultures        []string
	Fields          FieldSelection
	Unanswerable    bool
	Wildcard        bool
	FallbackUsed    bool
	FallbackSkipped bool
	SnapshotVersion uint64
}

// Weights scale a match by field and by culture slot.
type Weights struct {
	Name        float64
	ID          float64
	Registry    float64
	Description float64
	Primary     float64
	Second      float64
	Fallback    float64
}

// IndexStats describes a published index snapshot.
type IndexStats struct {
	Version  uint64
	Indexed  int
	Skipped  int
	Terms    int
	Cultures []string
	Duration time.Duration
}
