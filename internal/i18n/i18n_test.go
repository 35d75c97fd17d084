package i18n

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":        English,
		"ID":      Indonesian,
		"id-ID":   Indonesian,
		"en-GB":   English,
		"fr":      English,
		"garbage": English,
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromAcceptLanguage(t *testing.T) {
	if got := FromAcceptLanguage("id-ID,en;q=0.8"); got != Indonesian {
		t.Fatalf("expected id, got %q", got)
	}
	if got := FromAcceptLanguage("en-US,en;q=0.9"); got != English {
		t.Fatalf("expected en, got %q", got)
	}
	if got := FromAcceptLanguage(""); got != "" {
		t.Fatalf("expected empty for empty header, got %q", got)
	}
}

func TestSprintfInsufficientCredits(t *testing.T) {
	en := Sprintf(English, MsgInsufficientCredits, 5, 3)
	if !strings.Contains(en, "needs 5 credits") || !strings.Contains(en, "balance is 3") {
		t.Fatalf("unexpected english message %q", en)
	}
	id := Sprintf("id-ID", MsgInsufficientCredits, 5, 3)
	if !strings.HasPrefix(id, "Kredit tidak cukup") {
		t.Fatalf("unexpected indonesian message %q", id)
	}
}
