package chat

import (
	"sort"

	"github.com/achrafidrissi/urc/internal/models"
)

// DisplayMessage is a message prepared for presentation: causally ordered
// and annotated with whether the viewer sent it.
type DisplayMessage struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Timestamp  int64  `json:"ts"`
	IsOwn      bool   `json:"is_own"`
}

// Assemble turns an unordered, possibly duplicated batch of stored messages
// into the timeline shown to viewerID: duplicates collapse by id (last write
// wins, keeping the first occurrence's slot), then a stable ascending sort
// by timestamp. Pure function; the same input set always yields the same
// output.
func Assemble(raw []models.Message, viewerID string) []DisplayMessage {
	out := make([]DisplayMessage, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, msg := range raw {
		dm := DisplayMessage{
			ID:         msg.ID,
			Content:    msg.Content,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Timestamp:  msg.Timestamp,
			IsOwn:      msg.SenderID == viewerID,
		}
		if i, seen := index[msg.ID]; seen {
			out[i] = dm
			continue
		}
		index[msg.ID] = len(out)
		out = append(out, dm)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
