package search

import (
	"github.com/kailas-cloud/policysearch/internal/domain/culture"
)

// ShouldSkipFallback decides whether the linear fallback scan must be
// skipped. It is skipped only for single-token queries when the Second slot
// is a placeholder and further fallback cultures follow it: scanning would
// surface results from cultures the user never opted into.
func ShouldSkipFallback(slots []culture.Slot, tokenCount int) bool {
	if tokenCount > 1 {
		return false
	}
	if len(slots) < 2 {
		return false
	}
	secondAt := -1
	for i, s := range slots {
		if s.Role == culture.Second {
			secondAt = i
			break
		}
	}
	if secondAt < 0 {
		return false
	}
	if !slots[secondAt].Placeholder {
		return false
	}
	// Anything beyond primary + placeholder is a fallback culture.
	return len(slots) > 2
}

// ShouldSkipFallbackNames is ShouldSkipFallback for callers holding a flat
// culture-name list. Slot roles and placeholders are reconstructed first.
func ShouldSkipFallbackNames(names []string, primary string, secondEnabled bool, tokenCount int) bool {
	return ShouldSkipFallback(culture.FromNames(names, primary, secondEnabled).Slots(), tokenCount)
}
