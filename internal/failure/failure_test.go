package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"auth", Auth("rejected", nil), KindAuth},
		{"wrapped fetch", fmt.Errorf("download: %w", Fetch("status 404", nil)), KindFetch},
		{"generation", Generation("missing result"), KindGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Transient("submit failed", errors.New("dial tcp: timeout"))
	if got := err.Error(); got != "submit failed: dial tcp: timeout" {
		t.Errorf("unexpected message: %q", got)
	}
	if !errors.Is(err, err.Err) {
		t.Error("expected Unwrap to expose the cause")
	}
	if !Is(err, KindTransient) {
		t.Error("expected transient kind")
	}
}

func TestSuggestsReauth(t *testing.T) {
	if !SuggestsReauth(Generation("Requested entity was not found.")) {
		t.Error("expected marker to be detected")
	}
	if SuggestsReauth(Generation("quota exceeded")) {
		t.Error("unexpected reauth suggestion")
	}
	if SuggestsReauth(nil) {
		t.Error("nil error must not suggest reauth")
	}
}
