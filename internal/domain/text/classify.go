package text

import "unicode/utf8"

// IsCJK reports whether r is Hiragana, Katakana, a CJK unified ideograph
// (including extension A) or a CJK compatibility ideograph.
func IsCJK(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x30FF:
		return true
	case r >= 0x3400 && r <= 0x9FFF:
		return true
	case r >= 0xF900 && r <= 0xFAFF:
		return true
	}
	return false
}

// HasCJK reports whether s contains at least one CJK rune.
func HasCJK(s string) bool {
	for _, r := range s {
		if IsCJK(r) {
			return true
		}
	}
	return false
}

// IsASCIIAlnum reports whether s is non-empty and made only of ASCII letters and digits.
func IsASCIIAlnum(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Len returns the rune length of s.
func Len(s string) int { return utf8.RuneCountInString(s) }
