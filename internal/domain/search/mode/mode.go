package mode

// Mode is how multi-word queries combine.
type Mode string

// Match modes.
const (
	// And requires every word to match.
	And Mode = "and"
	// Or matches the whole text as one phrase, ignoring word boundaries.
	Or Mode = "or"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == And || m == Or
}

// IsAnd reports whether the mode is And.
func (m Mode) IsAnd() bool { return m == And }
