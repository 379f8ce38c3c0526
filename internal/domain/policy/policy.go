// Package policy holds the policy record the search corpus is built from.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/policysearch/internal/domain/culture"
)

// MaxIDLength is the maximum policy unique id length.
const MaxIDLength = 512

// Text is the localized text of a policy in one culture.
type Text struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Policy is one policy definition (immutable value object).
type Policy struct {
	id           string
	registryPath string
	texts        map[string]Text
	cultures     []string
}

// New validates and creates a Policy. Culture keys are canonicalized; at
// least one culture must carry a display name.
func New(id, registryPath string, texts map[string]Text) (Policy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Policy{}, fmt.Errorf("policy ID is required")
	}
	if len(id) > MaxIDLength {
		return Policy{}, fmt.Errorf("policy ID too long (max %d)", MaxIDLength)
	}

	canon := make(map[string]Text, len(texts))
	for name, t := range texts {
		c := culture.Canonicalize(name)
		if c == "" {
			return Policy{}, fmt.Errorf("policy %q: empty culture name", id)
		}
		key := strings.ToLower(c)
		if _, dup := canon[key]; dup {
			return Policy{}, fmt.Errorf("policy %q: duplicate culture %q", id, c)
		}
		canon[key] = Text{
			DisplayName: strings.TrimSpace(t.DisplayName),
			Description: strings.TrimSpace(t.Description),
		}
	}

	hasName := false
	for _, t := range canon {
		if t.DisplayName != "" {
			hasName = true
			break
		}
	}
	if !hasName {
		return Policy{}, fmt.Errorf("policy %q: display name is required in at least one culture", id)
	}

	cultures := make([]string, 0, len(canon))
	for key := range canon {
		cultures = append(cultures, key)
	}
	sort.Strings(cultures)

	return Policy{
		id:           id,
		registryPath: strings.TrimSpace(registryPath),
		texts:        canon,
		cultures:     cultures,
	}, nil
}

// ID returns the policy unique id.
func (p Policy) ID() string { return p.id }

// RegistryPath returns the registry key path, value name last.
func (p Policy) RegistryPath() string { return p.registryPath }

// Cultures returns the lower-cased culture keys the policy has texts for, sorted.
func (p Policy) Cultures() []string {
	out := make([]string, len(p.cultures))
	copy(out, p.cultures)
	return out
}

// Text returns the localized text for a culture (case-insensitive).
func (p Policy) Text(cultureName string) (Text, bool) {
	t, ok := p.texts[strings.ToLower(cultureName)]
	return t, ok
}

// DisplayName returns the first non-empty display name following the given
// culture chain, falling back to the first culture in sorted order.
func (p Policy) DisplayName(chain []string) string {
	for _, c := range chain {
		if t, ok := p.Text(c); ok && t.DisplayName != "" {
			return t.DisplayName
		}
	}
	for _, key := range p.cultures {
		if name := p.texts[key].DisplayName; name != "" {
			return name
		}
	}
	return ""
}
