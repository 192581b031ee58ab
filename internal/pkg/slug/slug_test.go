package slug

import (
	"strings"
	"testing"
)

func TestGenerate_InvalidLength(t *testing.T) {
	t.Parallel()

	if _, err := Generate(0); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	t.Parallel()

	s, err := Generate(DefaultLength)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != DefaultLength {
		t.Fatalf("expected slug length %d, got %d", DefaultLength, len(s))
	}

	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) == -1 {
			t.Fatalf("slug contains invalid character %q", s[i])
		}
	}
}

func TestGenerate_UniqueWithinSmallBatch(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		s, err := Generate(DefaultLength)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, exists := seen[s]; exists {
			t.Fatalf("duplicate slug generated in small batch: %s", s)
		}
		seen[s] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "abc123xy", want: true},
		{in: "", want: false},
		{in: "UPPER", want: false},
		{in: "has space", want: false},
		{in: strings.Repeat("a", 33), want: false},
	}

	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Fatalf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
