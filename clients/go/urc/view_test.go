package urc

import (
	"testing"

	"github.com/achrafidrissi/urc/internal/chat"
)

func display(id, sender string, ts int64, own bool) chat.DisplayMessage {
	return chat.DisplayMessage{ID: id, Content: "m-" + id, SenderID: sender, Timestamp: ts, IsOwn: own}
}

func TestAppendLocalIsSynchronous(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")

	tempID := v.AppendLocal("hello")
	if !IsProvisionalID(tempID) {
		t.Fatalf("expected provisional id, got %q", tempID)
	}

	entries := v.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry immediately, got %d", len(entries))
	}
	e := entries[0]
	if e.ID != tempID || !e.IsOwn || e.Delivery != DeliveryPending {
		t.Fatalf("unexpected optimistic entry: %+v", e)
	}
}

func TestConfirmReplacesInPlace(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")
	v.MergeFetch("u1_u2", []chat.DisplayMessage{display("a", "u2", 100, false)})

	tempID := v.AppendLocal("hello")
	before := v.Entries()

	if !v.Confirm(tempID, "01SERVER", 500) {
		t.Fatal("expected confirm to apply")
	}

	after := v.Entries()
	if len(after) != len(before) {
		t.Fatalf("confirm changed list length: %d -> %d", len(before), len(after))
	}
	// Same slot, new identity.
	if after[1].ID != "01SERVER" {
		t.Fatalf("expected server id in place, got %q", after[1].ID)
	}
	if after[1].Timestamp != 500 {
		t.Fatalf("expected authoritative timestamp, got %d", after[1].Timestamp)
	}
	if after[1].Delivery != DeliveryConfirmed {
		t.Fatal("expected entry confirmed")
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")
	tempID := v.AppendLocal("hello")

	if !v.Confirm(tempID, "01SERVER", 500) {
		t.Fatal("first confirm should apply")
	}
	// Duplicate network callback: must be a no-op, not a second entry.
	if v.Confirm(tempID, "01SERVER", 500) {
		t.Fatal("second confirm should be a no-op")
	}

	entries := v.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 finalized entry, got %d", len(entries))
	}
}

func TestConfirmUnknownIDIsNoOp(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")
	v.AppendLocal("hello")

	if v.Confirm("temp-NOPE", "01SERVER", 0) {
		t.Fatal("confirming an unknown provisional id should be a no-op")
	}
	if len(v.Entries()) != 1 {
		t.Fatal("no-op confirm must not change the timeline")
	}
}

func TestOverlappingSendsFinalizeIndependently(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")

	first := v.AppendLocal("one")
	second := v.AppendLocal("two")
	if first == second {
		t.Fatal("overlapping sends must get distinct provisional ids")
	}

	// Acknowledgments land out of order.
	if !v.Confirm(second, "01B", 0) {
		t.Fatal("second send should confirm")
	}
	if !v.Confirm(first, "01A", 0) {
		t.Fatal("first send should confirm")
	}

	entries := v.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "01A" || entries[1].ID != "01B" {
		t.Fatalf("expected [01A 01B], got [%s %s]", entries[0].ID, entries[1].ID)
	}
}

func TestFailedSendRetainedAndMarked(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")
	tempID := v.AppendLocal("hello")

	v.Fail(tempID, "store unavailable")

	entries := v.Entries()
	if len(entries) != 1 {
		t.Fatalf("failed entry must stay visible, got %d entries", len(entries))
	}
	if entries[0].Delivery != DeliveryFailed {
		t.Fatal("expected entry marked failed")
	}
	if v.LastError() != "store unavailable" {
		t.Fatalf("expected error surfaced, got %q", v.LastError())
	}

	// A failed entry cannot be confirmed afterwards.
	if v.Confirm(tempID, "01SERVER", 0) {
		t.Fatal("confirming a failed entry should be a no-op")
	}
}

func TestMergeFetchKeepsPendingEntries(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")
	tempID := v.AppendLocal("optimistic")

	applied := v.MergeFetch("u1_u2", []chat.DisplayMessage{
		display("a", "u2", 100, false),
		display("b", "u1", 200, true),
	})
	if !applied {
		t.Fatal("expected merge to apply")
	}

	entries := v.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected fetched + pending = 3 entries, got %d", len(entries))
	}
	last := entries[2]
	if last.ID != tempID || last.Delivery != DeliveryPending {
		t.Fatalf("pending entry lost in merge: %+v", last)
	}
	if v.Status() != StatusSucceeded {
		t.Fatalf("expected succeeded status, got %v", v.Status())
	}
}

func TestStaleFetchDiscarded(t *testing.T) {
	// The user opened u1_u3 while a fetch for u1_u2 was in flight.
	v := NewConversationView("u1_u3", "u1", "alice")
	v.BeginFetch()
	v.MergeFetch("u1_u3", []chat.DisplayMessage{display("a", "u3", 100, false)})

	applied := v.MergeFetch("u1_u2", []chat.DisplayMessage{display("z", "u2", 999, false)})
	if applied {
		t.Fatal("stale response must be discarded")
	}

	entries := v.Entries()
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Fatalf("stale response overwrote current state: %+v", entries)
	}

	if v.FailFetch("u1_u2", "timeout") {
		t.Fatal("stale failure must be discarded too")
	}
	if v.Status() != StatusSucceeded {
		t.Fatalf("stale failure changed status to %v", v.Status())
	}
}

func TestStatusMachineReentersLoading(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")
	if v.Status() != StatusIdle {
		t.Fatalf("expected idle start, got %v", v.Status())
	}

	v.BeginFetch()
	if v.Status() != StatusLoading {
		t.Fatalf("expected loading, got %v", v.Status())
	}

	v.FailFetch("u1_u2", "connection refused")
	if v.Status() != StatusFailed {
		t.Fatalf("expected failed, got %v", v.Status())
	}
	if v.LastError() != "connection refused" {
		t.Fatalf("expected error recorded, got %q", v.LastError())
	}

	// failed is not terminal
	v.BeginFetch()
	if v.Status() != StatusLoading || v.LastError() != "" {
		t.Fatal("retry should re-enter loading and clear the error")
	}

	v.MergeFetch("u1_u2", nil)
	if v.Status() != StatusSucceeded {
		t.Fatalf("expected succeeded, got %v", v.Status())
	}

	// succeeded is not terminal either
	v.BeginFetch()
	if v.Status() != StatusLoading {
		t.Fatal("re-open should re-enter loading")
	}
}

func TestMergeFetchResortsByTimestamp(t *testing.T) {
	v := NewConversationView("u1_u2", "u1", "alice")

	// Pending entry stamped locally between the two fetched messages.
	tempID := v.AppendLocal("middle")
	pending := v.Entries()[0]

	v.MergeFetch("u1_u2", []chat.DisplayMessage{
		display("late", "u2", pending.Timestamp+10_000, false),
		display("early", "u2", pending.Timestamp-10_000, false),
	})

	entries := v.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "early" || entries[1].ID != tempID || entries[2].ID != "late" {
		t.Fatalf("merge order wrong: [%s %s %s]", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}
