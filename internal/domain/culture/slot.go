package culture

// Role is the position a culture holds in the fallback chain.
type Role int

// Culture roles, in chain order.
const (
	Primary Role = iota
	Second
	OsFallback
	EnUsFallback
	OtherFallback
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Second:
		return "second"
	case OsFallback:
		return "os_fallback"
	case EnUsFallback:
		return "en_us_fallback"
	case OtherFallback:
		return "other_fallback"
	default:
		return "unknown"
	}
}

// Slot is one entry of the culture chain. A placeholder Second slot keeps
// index 1 addressable when no distinct second culture exists; it never adds
// a lookup of its own.
type Slot struct {
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	Placeholder bool   `json:"placeholder"`
}

// IsFallback reports whether the slot comes after Primary and Second.
func (s Slot) IsFallback() bool {
	return s.Role == OsFallback || s.Role == EnUsFallback || s.Role == OtherFallback
}
