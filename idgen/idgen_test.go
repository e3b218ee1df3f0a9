package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 12, 16, 24} {
		gen := NanoID(length)
		id := gen()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	gen := NanoID(100)
	id := gen()
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestUUIDv7_ParseRoundTrip(t *testing.T) {
	id := New()
	got, err := Parse(id)
	if err != nil {
		t.Fatalf("Parse(%q): %v", id, err)
	}
	if got != id {
		t.Errorf("Parse(%q) = %q", id, got)
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("cap_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "cap_") {
		t.Errorf("missing prefix: %q", id)
	}
	if len(id) != len("cap_")+8 {
		t.Errorf("unexpected length: %q", id)
	}
}

func TestNonce_UniqueAndAttributeSafe(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for range 100 {
		n := Nonce()
		if n == "" {
			t.Fatal("empty nonce")
		}
		if strings.ContainsAny(n, `"'<>&=+/`) {
			t.Fatalf("nonce %q contains attribute-unsafe characters", n)
		}
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate nonce %q", n)
		}
		seen[n] = struct{}{}
	}
}
