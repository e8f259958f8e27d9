package shortid

import "testing"

func TestNewMatchesPattern(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(id) != Length {
			t.Fatalf("expected length %d, got %q", Length, id)
		}
		if !Valid(id) {
			t.Fatalf("generated id %q does not match pattern", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"abc123":      true,
		"A_b-C":       true,
		"0123456789":  true,
		"01234567890": false,
		"":            false,
		"../etc":      false,
		"id.mp3":      false,
		"with space":  false,
	}
	for id, want := range cases {
		if got := Valid(id); got != want {
			t.Fatalf("Valid(%q) = %v, want %v", id, got, want)
		}
	}
}
