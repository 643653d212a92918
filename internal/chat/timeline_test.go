package chat

import (
	"testing"

	"github.com/achrafidrissi/urc/internal/models"
)

func msg(id, sender string, ts int64) models.Message {
	return models.Message{ID: id, Content: "m-" + id, SenderID: sender, Timestamp: ts}
}

func TestAssembleSortsAscending(t *testing.T) {
	// Store-physical order is most-recent-first.
	raw := []models.Message{msg("3", "u1", 300), msg("2", "u2", 200), msg("1", "u1", 100)}

	got := Assemble(raw, "u1")
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected id %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestAssembleDeduplicates(t *testing.T) {
	raw := []models.Message{msg("1", "u1", 100), msg("2", "u2", 300), msg("1", "u1", 100)}

	got := Assemble(raw, "u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 messages after dedup, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("expected order [1 2], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestAssembleDuplicateLastWriteWins(t *testing.T) {
	a := msg("1", "u1", 100)
	b := msg("1", "u1", 100)
	b.Content = "edited upstream"

	got := Assemble([]models.Message{a, msg("2", "u2", 50), b}, "u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[1].ID != "1" || got[1].Content != "edited upstream" {
		t.Fatalf("expected last write to win, got %+v", got[1])
	}
}

func TestAssembleStableOnTies(t *testing.T) {
	// Concurrent sends can legitimately carry the same timestamp; relative
	// input order must be preserved.
	raw := []models.Message{msg("a", "u1", 100), msg("b", "u2", 100), msg("c", "u1", 100)}

	got := Assemble(raw, "u1")
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Fatalf("tie order broken at %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestAssembleAnnotatesIsOwn(t *testing.T) {
	raw := []models.Message{msg("1", "u1", 100), msg("2", "u2", 200)}

	asU1 := Assemble(raw, "u1")
	if !asU1[0].IsOwn || asU1[1].IsOwn {
		t.Fatalf("viewer u1: expected [own, not-own], got [%v, %v]", asU1[0].IsOwn, asU1[1].IsOwn)
	}

	asU2 := Assemble(raw, "u2")
	if asU2[0].IsOwn || !asU2[1].IsOwn {
		t.Fatalf("viewer u2: expected [not-own, own], got [%v, %v]", asU2[0].IsOwn, asU2[1].IsOwn)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	got := Assemble(nil, "u1")
	if len(got) != 0 {
		t.Fatalf("expected empty timeline, got %d entries", len(got))
	}
}
