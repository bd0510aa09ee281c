// Package fanout delivers persisted messages and summaries to live subscribers.
//
// Conversation subscribers get every message of one conversation in sequence
// order, without duplicates or gaps: anything the live stream drops or skips is
// read back from the message store. Inbox subscribers get lightweight summary
// and match events for all conversations of one user.
package fanout

import (
	"time"

	"github.com/oggyb/spark-core/internal/db"
)

// EventKind identifies the payload of an Event.
type EventKind string

const (
	EventMessage EventKind = "message"
	EventSummary EventKind = "summary"
	EventMatch   EventKind = "match"
)

// Event is what subscribers receive.
type Event struct {
	Kind           EventKind `json:"kind"`
	ConversationID uint64    `json:"conversation_id,omitempty"`
	Seq            int64     `json:"seq,omitempty"`
	// Recipients are the users whose inboxes receive summary and match events.
	Recipients []uint64     `json:"recipients,omitempty"`
	Message    *MessageView `json:"message,omitempty"`
	Summary    *SummaryView `json:"summary,omitempty"`
	Match      *MatchView   `json:"match,omitempty"`
	Replayed   bool         `json:"replayed,omitempty"`
}

// MessageView is the delivered form of a persisted message.
type MessageView struct {
	ID             string    `json:"id"`
	ConversationID uint64    `json:"conversation_id"`
	Seq            int64     `json:"seq"`
	SenderID       uint64    `json:"sender_id"`
	Body           string    `json:"body,omitempty"`
	MediaRef       string    `json:"media_ref,omitempty"`
	ClientRef      string    `json:"client_ref,omitempty"`
	WasFree        bool      `json:"was_free"`
	PointsCharged  int64     `json:"points_charged"`
	CreatedAt      time.Time `json:"created_at"`
}

// SummaryView is the conversation-list update sent to both participants.
type SummaryView struct {
	ConversationID uint64    `json:"conversation_id"`
	Kind           string    `json:"kind"`
	LastSeq        int64     `json:"last_seq"`
	LastSenderID   uint64    `json:"last_sender_id"`
	Preview        string    `json:"preview"`
	LastMessageAt  time.Time `json:"last_message_at"`
}

// MatchView announces a newly created match.
type MatchView struct {
	MatchID        uint64    `json:"match_id"`
	UserLowID      uint64    `json:"user_low_id"`
	UserHighID     uint64    `json:"user_high_id"`
	ConversationID uint64    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
}

const previewLen = 80

// NewMessageView converts a stored message.
func NewMessageView(m db.Message) *MessageView {
	return &MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Seq:            m.Seq,
		SenderID:       m.SenderID,
		Body:           m.Body,
		MediaRef:       m.MediaRef,
		ClientRef:      m.ClientRef,
		WasFree:        m.WasFree,
		PointsCharged:  m.PointsCharged,
		CreatedAt:      m.CreatedAt,
	}
}

// MessageEvent wraps a stored message for conversation subscribers.
func MessageEvent(m db.Message) Event {
	return Event{
		Kind:           EventMessage,
		ConversationID: m.ConversationID,
		Seq:            m.Seq,
		Message:        NewMessageView(m),
	}
}

// SummaryEvent builds the inbox update for a message in conv.
func SummaryEvent(conv db.Conversation, m db.Message) Event {
	p := conv.Participants()
	return Event{
		Kind:           EventSummary,
		ConversationID: conv.ID,
		Seq:            m.Seq,
		Recipients:     p[:],
		Summary: &SummaryView{
			ConversationID: conv.ID,
			Kind:           conv.Kind,
			LastSeq:        m.Seq,
			LastSenderID:   m.SenderID,
			Preview:        Preview(m),
			LastMessageAt:  m.CreatedAt,
		},
	}
}

// MatchEvent builds the inbox announcement for a new match.
func MatchEvent(m db.Match) Event {
	return Event{
		Kind:           EventMatch,
		ConversationID: m.ConversationID,
		Recipients:     []uint64{m.UserLowID, m.UserHighID},
		Match: &MatchView{
			MatchID:        m.ID,
			UserLowID:      m.UserLowID,
			UserHighID:     m.UserHighID,
			ConversationID: m.ConversationID,
			CreatedAt:      m.CreatedAt,
		},
	}
}

// Preview shortens a message body for list rows. Media-only messages read as "[media]".
func Preview(m db.Message) string {
	if m.Body == "" {
		if m.MediaRef != "" {
			return "[media]"
		}
		return ""
	}
	r := []rune(m.Body)
	if len(r) <= previewLen {
		return m.Body
	}
	return string(r[:previewLen-1]) + "…"
}
