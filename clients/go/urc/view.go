package urc

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/achrafidrissi/urc/internal/chat"
)

// Status is the sync state of a conversation view.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

// Delivery is the delivery state of a single timeline entry.
type Delivery int

const (
	// DeliveryConfirmed entries carry a server-assigned id.
	DeliveryConfirmed Delivery = iota
	// DeliveryPending entries are optimistic local echoes awaiting the
	// server's acknowledgment.
	DeliveryPending
	// DeliveryFailed entries stayed local; resending is a new user action.
	DeliveryFailed
)

// provisionalPrefix marks locally synthesized ids. The store issues ULIDs,
// which never start with it, so the two namespaces cannot collide.
const provisionalPrefix = "temp-"

// IsProvisionalID reports whether an id was synthesized locally.
func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// Entry is one timeline row held by a view.
type Entry struct {
	ID         string
	Content    string
	SenderID   string
	SenderName string
	Timestamp  int64 // Unix ms
	IsOwn      bool
	Delivery   Delivery
}

// ConversationView holds the local state of one open conversation or room:
// the assembled timeline plus any optimistic entries not yet confirmed by
// the server. Every transition is a single atomic step under the view's
// lock, so overlapping sends and fetches never observe a half-applied
// update.
type ConversationView struct {
	mu sync.Mutex

	scope      string // conversation key or room id
	viewerID   string
	viewerName string

	status  Status
	lastErr string
	entries []Entry
}

// NewConversationView creates the view for one scope. Views start idle and
// are discarded when the user navigates away.
func NewConversationView(scope, viewerID, viewerName string) *ConversationView {
	return &ConversationView{
		scope:      scope,
		viewerID:   viewerID,
		viewerName: viewerName,
	}
}

// Scope returns the scope key this view targets.
func (v *ConversationView) Scope() string {
	return v.scope
}

// Status returns the view's sync status.
func (v *ConversationView) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// LastError returns the message of the most recent failure, if any.
func (v *ConversationView) LastError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Entries returns a snapshot of the timeline, oldest first.
func (v *ConversationView) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// AppendLocal inserts an optimistic local echo of an outgoing message and
// returns its provisional id. It never blocks on the network; the caller
// submits the message separately and reports back via Confirm or Fail.
func (v *ConversationView) AppendLocal(content string) string {
	tempID := provisionalPrefix + ulid.Make().String()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.entries = append(v.entries, Entry{
		ID:         tempID,
		Content:    content,
		SenderID:   v.viewerID,
		SenderName: v.viewerName,
		Timestamp:  time.Now().UnixMilli(),
		IsOwn:      true,
		Delivery:   DeliveryPending,
	})
	return tempID
}

// Confirm swaps a provisional entry for its server-assigned identity, in
// place: the entry keeps its slot in the timeline, its id becomes the
// server id, and no second copy appears. A provisional id finalizes at most
// once; confirming an id that is no longer pending is a no-op, so a
// duplicated acknowledgment cannot produce two finalized entries. Reports
// whether an entry was finalized.
func (v *ConversationView) Confirm(tempID, serverID string, serverTS int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.entries {
		if v.entries[i].ID != tempID {
			continue
		}
		if v.entries[i].Delivery != DeliveryPending {
			return false
		}
		v.entries[i].ID = serverID
		if serverTS > 0 {
			v.entries[i].Timestamp = serverTS
		}
		v.entries[i].Delivery = DeliveryConfirmed
		return true
	}
	return false
}

// Fail marks a provisional entry as failed, in place. The entry stays
// visible so the user can see the send did not go through; it is never
// retried automatically.
func (v *ConversationView) Fail(tempID, reason string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.entries {
		if v.entries[i].ID == tempID && v.entries[i].Delivery == DeliveryPending {
			v.entries[i].Delivery = DeliveryFailed
			v.lastErr = reason
			return
		}
	}
}

// BeginFetch transitions the view to loading. Both succeeded and failed
// views may re-enter loading.
func (v *ConversationView) BeginFetch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = StatusLoading
	v.lastErr = ""
}

// MergeFetch applies a fetch result. Each fetch is tagged with the scope it
// targeted; a response for any other scope is stale — the user has moved
// on — and is discarded rather than overwriting the current state. Fetched
// messages replace the confirmed portion of the timeline; pending and
// failed local entries survive the merge and the result is re-sorted by
// timestamp (stable, so equal stamps keep their relative order). Reports
// whether the result was applied.
func (v *ConversationView) MergeFetch(scope string, msgs []chat.DisplayMessage) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if scope != v.scope {
		return false
	}

	merged := make([]Entry, 0, len(msgs)+len(v.entries))
	for _, m := range msgs {
		merged = append(merged, Entry{
			ID:         m.ID,
			Content:    m.Content,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Timestamp:  m.Timestamp,
			IsOwn:      m.IsOwn,
			Delivery:   DeliveryConfirmed,
		})
	}
	for _, e := range v.entries {
		if e.Delivery != DeliveryConfirmed {
			merged = append(merged, e)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	v.entries = merged
	v.status = StatusSucceeded
	v.lastErr = ""
	return true
}

// FailFetch records a failed fetch for this scope. Stale failures are
// discarded by the same scope guard as MergeFetch.
func (v *ConversationView) FailFetch(scope, reason string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if scope != v.scope {
		return false
	}
	v.status = StatusFailed
	v.lastErr = reason
	return true
}
