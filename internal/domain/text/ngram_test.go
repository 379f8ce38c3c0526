package text

import (
	"strings"
	"testing"
)

func TestNGramTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"basic", "abc", "ab abc bc"},
		{"spaces removed", "a b", "ab"},
		{"too short", "a", ""},
		{"empty", "", ""},
		{"dedupe", "aaaa", "aa aaa"},
		{"kana", "ポリシ", "ポリ ポリシ リシ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NGramTokens(tt.in, DefaultMinN, DefaultMaxN); got != tt.want {
				t.Errorf("NGramTokens(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNGramTokens_Deterministic(t *testing.T) {
	in := "enable dummy feature"
	first := NGramTokens(in, 2, 3)
	for i := 0; i < 50; i++ {
		if got := NGramTokens(in, 2, 3); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
	toks := strings.Split(first, " ")
	for i := 1; i < len(toks); i++ {
		if toks[i-1] >= toks[i] {
			t.Fatalf("tokens not strictly sorted at %d: %q >= %q", i, toks[i-1], toks[i])
		}
		if strings.Contains(toks[i], " ") {
			t.Fatalf("token %q contains a space", toks[i])
		}
	}
}

func TestNGrams_InvalidBounds(t *testing.T) {
	if got := NGrams("abcdef", 4, 3); got != nil {
		t.Errorf("maxN < minN: got %v, want nil", got)
	}
	if got := NGrams("ab", 0, 1); len(got) != 2 {
		t.Errorf("minN clamped to 1: got %v", got)
	}
}

func TestCompact(t *testing.T) {
	if got := Compact(" a b\tc "); got != "abc" {
		t.Errorf("Compact = %q", got)
	}
	if got := Compact("abc"); got != "abc" {
		t.Errorf("Compact = %q", got)
	}
}

func TestClassifiers(t *testing.T) {
	if !HasCJK("policy 設定") {
		t.Error("HasCJK(kanji) = false")
	}
	if !HasCJK("ぽりしー") {
		t.Error("HasCJK(hiragana) = false")
	}
	if HasCJK("policy") {
		t.Error("HasCJK(ascii) = true")
	}
	if !IsASCIIAlnum("Edge123") {
		t.Error("IsASCIIAlnum(Edge123) = false")
	}
	if IsASCIIAlnum("edge_123") || IsASCIIAlnum("") {
		t.Error("IsASCIIAlnum accepted non-alnum input")
	}
	if Len("設定") != 2 {
		t.Errorf("Len = %d", Len("設定"))
	}
}
