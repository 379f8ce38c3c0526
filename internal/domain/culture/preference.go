// Package culture resolves the ordered culture fallback chain used to pick
// which localized texts a search looks at.
package culture

import (
	"strings"

	"golang.org/x/text/language"
)

// EnUS is the culture appended as the last-resort fallback.
const EnUS = "en-US"

// Options are the inputs of Build.
type Options struct {
	Primary       string
	Second        string
	SecondEnabled bool
	OSUICulture   string
	AppendEnUS    bool
}

// Preference is the resolved, ordered culture chain.
type Preference struct {
	slots []Slot
}

// Canonicalize returns the canonical BCP 47 form of name ("en-us" -> "en-US").
// Names that do not parse are returned trimmed and otherwise unchanged.
func Canonicalize(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}

// Build resolves the culture chain:
// Primary, then Second (real or placeholder) when enabled, then the OS UI
// culture and en-US when not already present.
func Build(opts Options) Preference {
	primary := Canonicalize(opts.Primary)
	if primary == "" {
		primary = EnUS
	}
	p := Preference{slots: []Slot{{Name: primary, Role: Primary}}}

	if opts.SecondEnabled {
		second := Canonicalize(opts.Second)
		if second != "" && !strings.EqualFold(second, primary) {
			p.slots = append(p.slots, Slot{Name: second, Role: Second})
		} else {
			p.slots = append(p.slots, Slot{Name: primary, Role: Second, Placeholder: true})
		}
	}

	if osCulture := Canonicalize(opts.OSUICulture); osCulture != "" && !p.contains(osCulture) {
		p.slots = append(p.slots, Slot{Name: osCulture, Role: OsFallback})
	}

	if opts.AppendEnUS && !p.contains(EnUS) {
		p.slots = append(p.slots, Slot{Name: EnUS, Role: EnUsFallback})
	}
	return p
}

// FromNames rebuilds slot roles from a flat ordered name list for callers
// that only track names. The first name is treated as primary when primary
// is empty. When secondEnabled is set, index 1 is the Second slot and is a
// placeholder if it repeats the primary or is missing.
func FromNames(names []string, primary string, secondEnabled bool) Preference {
	canon := make([]string, 0, len(names))
	for _, n := range names {
		if c := Canonicalize(n); c != "" {
			canon = append(canon, c)
		}
	}
	primary = Canonicalize(primary)
	if primary == "" && len(canon) > 0 {
		primary = canon[0]
	}
	if primary == "" {
		return Preference{}
	}

	rest := canon
	if len(rest) > 0 && strings.EqualFold(rest[0], primary) {
		rest = rest[1:]
	}

	p := Preference{slots: []Slot{{Name: primary, Role: Primary}}}
	if secondEnabled {
		if len(rest) > 0 && !strings.EqualFold(rest[0], primary) {
			p.slots = append(p.slots, Slot{Name: rest[0], Role: Second})
		} else {
			p.slots = append(p.slots, Slot{Name: primary, Role: Second, Placeholder: true})
		}
		if len(rest) > 0 {
			rest = rest[1:]
		}
	}
	for _, n := range rest {
		if p.contains(n) {
			continue
		}
		role := OtherFallback
		if strings.EqualFold(n, EnUS) {
			role = EnUsFallback
		}
		p.slots = append(p.slots, Slot{Name: n, Role: role})
	}
	return p
}

// Slots returns a copy of the chain, placeholders included.
func (p Preference) Slots() []Slot {
	out := make([]Slot, len(p.slots))
	copy(out, p.slots)
	return out
}

// Len returns the number of slots, placeholders included.
func (p Preference) Len() int { return len(p.slots) }

// Primary returns the primary culture name.
func (p Preference) Primary() string {
	if len(p.slots) == 0 {
		return ""
	}
	return p.slots[0].Name
}

// Second returns the distinct second culture, if one is configured.
func (p Preference) Second() (string, bool) {
	s, ok := p.SecondSlot()
	if !ok || s.Placeholder {
		return "", false
	}
	return s.Name, true
}

// SecondSlot returns the Second slot, placeholder or not.
func (p Preference) SecondSlot() (Slot, bool) {
	for _, s := range p.slots {
		if s.Role == Second {
			return s, true
		}
	}
	return Slot{}, false
}

// Preferred returns the cultures the user actually opted into: the primary
// and a real second culture.
func (p Preference) Preferred() []string {
	out := make([]string, 0, 2)
	for _, s := range p.slots {
		if s.Placeholder {
			continue
		}
		if s.Role == Primary || s.Role == Second {
			out = appendUnique(out, s.Name)
		}
	}
	return out
}

// FlattenNames returns the distinct culture names in chain order.
func (p Preference) FlattenNames() []string {
	out := make([]string, 0, len(p.slots))
	for _, s := range p.slots {
		out = appendUnique(out, s.Name)
	}
	return out
}

func (p Preference) contains(name string) bool {
	for _, s := range p.slots {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return names
		}
	}
	return append(names, name)
}
