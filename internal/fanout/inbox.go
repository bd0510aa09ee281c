package fanout

import (
	"sync"
	"sync/atomic"
)

// InboxSubscription streams conversation-list summaries and match
// announcements for one user. Summaries are snapshots, so a dropped one is
// superseded by the next; Dropped counts them for clients that want to
// re-fetch the list.
type InboxSubscription struct {
	hub    *Hub
	userID uint64
	ch     chan Event

	mu     sync.Mutex
	seen   map[uint64]int64
	closed bool

	dropped atomic.Int64
}

// SubscribeInbox attaches a conversation-list listener for userID.
func (h *Hub) SubscribeInbox(userID uint64) *InboxSubscription {
	s := &InboxSubscription{
		hub:    h,
		userID: userID,
		ch:     make(chan Event, h.buffer),
		seen:   make(map[uint64]int64),
	}
	h.addInbox(s)
	return s
}

// Events yields summary and match events; closed by Close.
func (s *InboxSubscription) Events() <-chan Event { return s.ch }

// Dropped counts events lost to a full buffer.
func (s *InboxSubscription) Dropped() int64 { return s.dropped.Load() }

// Close detaches the listener. Safe to call more than once.
func (s *InboxSubscription) Close() {
	s.hub.removeInbox(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *InboxSubscription) offer(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if ev.Kind == EventSummary {
		if ev.Seq <= s.seen[ev.ConversationID] {
			return
		}
		s.seen[ev.ConversationID] = ev.Seq
	}
	select {
	case s.ch <- ev:
	default:
		s.dropped.Add(1)
	}
}
