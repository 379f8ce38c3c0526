// Package text implements the normalization pipeline shared by the index
// and the query side: NFKC compatibility folding, case folding, punctuation
// filtering, kana folding and n-gram tokenization.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// allowedPunct is the punctuation kept by Strict. Everything else in the
// punctuation and symbol categories is dropped.
const allowedPunct = `_-./\:()[]{}+@#'"`

// wildcardPunct is additionally kept when a Normalizer is built with KeepWildcards.
const wildcardPunct = "*?"

const (
	prolongedSoundMark          = 'ー'
	halfWidthProlongedSoundMark = 'ｰ'

	hiraganaFirst = 'ぁ'
	hiraganaLast  = 'ゖ'
	katakanaFirst = 'ァ'
	katakanaLast  = 'ヶ'

	// kanaOffset is the distance between a Hiragana code point and its Katakana twin.
	kanaOffset = katakanaFirst - hiraganaFirst
)

// halfWidthSmallKana maps half-width small kana to full-size Katakana.
var halfWidthSmallKana = map[rune]rune{
	'ｧ': 'ア',
	'ｨ': 'イ',
	'ｩ': 'ウ',
	'ｪ': 'エ',
	'ｫ': 'オ',
	'ｬ': 'ヤ',
	'ｭ': 'ユ',
	'ｮ': 'ヨ',
	'ｯ': 'ツ',
}

// Script is the kana script text is folded toward.
type Script int

// Fold targets.
const (
	// ScriptAsIs leaves kana untouched.
	ScriptAsIs Script = iota
	// ScriptKatakana folds Hiragana into Katakana.
	ScriptKatakana
	// ScriptHiragana folds Katakana into Hiragana.
	ScriptHiragana
)

// Options configures a Normalizer.
type Options struct {
	Target         Script
	StripProlonged bool // delete U+30FC
	StripHyphen    bool // delete ASCII '-'
	KeepWildcards  bool // keep '*' and '?' through the strict step
}

// Normalizer is a pure, explicitly parameterized normalization strategy.
// The zero value performs strict normalization only.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer.
func New(opts Options) Normalizer {
	return Normalizer{opts: opts}
}

// Loose returns the normalizer used for the loose index form: Katakana fold,
// prolonged-sound mark and hyphen removal.
func Loose() Normalizer {
	return New(Options{Target: ScriptKatakana, StripProlonged: true, StripHyphen: true})
}

// ForCulture returns the wildcard-oriented normalizer for the given culture.
// Japanese cultures fold toward Hiragana; everything else keeps its script.
func ForCulture(culture string, stripProlonged bool) Normalizer {
	target := ScriptAsIs
	if isJapanese(culture) {
		target = ScriptHiragana
	}
	return New(Options{Target: target, StripProlonged: stripProlonged, KeepWildcards: true})
}

// Options returns the normalizer configuration.
func (n Normalizer) Options() Options { return n.opts }

// Normalize runs the strict pipeline followed by the configured kana fold.
func (n Normalizer) Normalize(s string) string {
	extra := ""
	if n.opts.KeepWildcards {
		extra = wildcardPunct
	}
	return n.Fold(strict(s, extra))
}

// Fold applies only the kana fold and mark stripping to already-strict text.
func (n Normalizer) Fold(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if m, ok := halfWidthSmallKana[r]; ok {
			r = m
		}
		switch {
		case r == prolongedSoundMark || r == halfWidthProlongedSoundMark:
			if n.opts.StripProlonged {
				continue
			}
			r = prolongedSoundMark
		case r == '-':
			if n.opts.StripHyphen {
				continue
			}
		case n.opts.Target == ScriptKatakana && r >= hiraganaFirst && r <= hiraganaLast:
			r += kanaOffset
		case n.opts.Target == ScriptHiragana && r >= katakanaFirst && r <= katakanaLast:
			r -= kanaOffset
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// Strict applies NFKC, lower-cases, drops control characters, collapses
// whitespace runs to a single space, keeps letters, digits, marks and the
// allowed punctuation, then trims. Strict is idempotent.
func Strict(s string) string {
	return strict(s, "")
}

// LooseFromStrict folds already-strict text into the loose form. It does not
// re-run the strict pipeline.
func LooseFromStrict(strictText string) string {
	return Loose().Fold(strictText)
}

func strict(s, extraPunct string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	// A Caser carries state between calls and must not be shared.
	s = cases.Lower(language.Und).String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsControl(r):
		case keepRune(r, extraPunct):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	out := b.String()
	// Dropping runes can leave a base letter next to a combining mark, and
	// recomposing can yield an upper-case letter again.
	if !norm.NFKC.IsNormalString(out) {
		out = cases.Lower(language.Und).String(norm.NFKC.String(out))
	}
	return out
}

func keepRune(r rune, extraPunct string) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
		return true
	}
	if strings.ContainsRune(allowedPunct, r) {
		return true
	}
	return extraPunct != "" && strings.ContainsRune(extraPunct, r)
}

func isJapanese(culture string) bool {
	tag, err := language.Parse(strings.TrimSpace(culture))
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(culture)), "ja")
	}
	base, _ := tag.Base()
	return base.String() == "ja"
}
