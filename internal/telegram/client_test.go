package telegram

import (
	"net/http"
	"strings"
	"testing"
)

func TestSplitByBytes(t *testing.T) {
	parts := splitByBytes(strings.Repeat("ab", 5), 4)
	if len(parts) != 3 || parts[0] != "abab" || parts[2] != "ab" {
		t.Errorf("splitByBytes = %q", parts)
	}

	// multi-byte runes are never cut in half
	parts = splitByBytes("ééé", 3)
	for _, p := range parts {
		if p != "é" {
			t.Errorf("unexpected part %q", p)
		}
	}

	if got := splitByBytes("short", 4096); len(got) != 1 || got[0] != "short" {
		t.Errorf("splitByBytes(short) = %q", got)
	}
}

func TestTruncateByBytes(t *testing.T) {
	if got := truncateByBytes("héllo", 3); got != "hé" {
		t.Errorf("truncateByBytes = %q", got)
	}
	if got := truncateByBytes("abc", 0); got != "abc" {
		t.Errorf("zero limit should not truncate, got %q", got)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{Token: " ", HTTPClient: http.DefaultClient}); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := New(Options{Token: "123:abc"}); err == nil {
		t.Error("expected error for nil http client")
	}
}
