package chat

import (
	"errors"
	"testing"
)

func TestDeriveKeyOrderIndependent(t *testing.T) {
	ab, err := DeriveKey("u1", "u2")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := DeriveKey("u2", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("keys differ: %q vs %q", ab, ba)
	}
	if ab != "u1_u2" {
		t.Fatalf("expected u1_u2, got %q", ab)
	}
}

func TestDeriveKeyTrimsWhitespace(t *testing.T) {
	key, err := DeriveKey(" u1 ", "u2")
	if err != nil {
		t.Fatal(err)
	}
	if key != "u1_u2" {
		t.Fatalf("expected u1_u2, got %q", key)
	}
}

func TestDeriveKeyRejectsSelf(t *testing.T) {
	_, err := DeriveKey("u1", "u1")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDeriveKeyRejectsEmpty(t *testing.T) {
	for _, pair := range [][2]string{{"", "u2"}, {"u1", ""}, {"  ", "u2"}} {
		if _, err := DeriveKey(pair[0], pair[1]); !errors.Is(err, ErrValidation) {
			t.Fatalf("DeriveKey(%q, %q): expected ErrValidation, got %v", pair[0], pair[1], err)
		}
	}
}

func TestDeriveKeyRejectsSeparatorInID(t *testing.T) {
	// "a_b"+"c" and "a"+"b_c" would both flatten to a_b_c if separator
	// bytes were allowed through.
	if _, err := DeriveKey("a_b", "c"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := DeriveKey("a", "b_c"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDeriveKeyDistinctPairsDistinctKeys(t *testing.T) {
	seen := make(map[string]string)
	pairs := [][2]string{{"u1", "u2"}, {"u1", "u3"}, {"u2", "u3"}, {"u10", "u2"}}
	for _, p := range pairs {
		key, err := DeriveKey(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		if prev, dup := seen[key]; dup {
			t.Fatalf("pair %v collides with %s on key %q", p, prev, key)
		}
		seen[key] = p[0] + "/" + p[1]
	}
}
