package fanout

import (
	"sort"
	"sync"
	"time"
)

// TimelineItem is one row of a rendered conversation. Pending rows were
// shown optimistically and have no sequence number yet.
type TimelineItem struct {
	Seq       int64
	ClientRef string
	SenderID  uint64
	Body      string
	MediaRef  string
	Pending   bool
	At        time.Time
}

// Timeline is the client-side view of one conversation. Confirmed messages
// are keyed by sequence number, so a message that arrives through both the
// live stream and a replay is kept once, and a server echo replaces the
// optimistic row carrying the same client reference.
type Timeline struct {
	mu        sync.Mutex
	confirmed map[int64]TimelineItem
	pending   map[string]TimelineItem
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		confirmed: make(map[int64]TimelineItem),
		pending:   make(map[string]TimelineItem),
	}
}

// AddPending shows a message before the server has confirmed it.
func (t *Timeline) AddPending(clientRef string, senderID uint64, body, mediaRef string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[clientRef] = TimelineItem{
		ClientRef: clientRef,
		SenderID:  senderID,
		Body:      body,
		MediaRef:  mediaRef,
		Pending:   true,
		At:        at,
	}
}

// Apply merges a confirmed message. It reports false when the sequence number
// was already present.
func (t *Timeline) Apply(m *MessageView) bool {
	if m == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if m.ClientRef != "" {
		delete(t.pending, m.ClientRef)
	}
	if _, dup := t.confirmed[m.Seq]; dup {
		return false
	}
	t.confirmed[m.Seq] = TimelineItem{
		Seq:       m.Seq,
		ClientRef: m.ClientRef,
		SenderID:  m.SenderID,
		Body:      m.Body,
		MediaRef:  m.MediaRef,
		At:        m.CreatedAt,
	}
	return true
}

// ApplyEvent merges a message event; other kinds are ignored.
func (t *Timeline) ApplyEvent(ev Event) bool {
	if ev.Kind != EventMessage {
		return false
	}
	return t.Apply(ev.Message)
}

// Drop removes an optimistic row whose send failed.
func (t *Timeline) Drop(clientRef string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, clientRef)
}

// LastSeq is the highest confirmed sequence number, the resume point after a
// reconnect.
func (t *Timeline) LastSeq() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var last int64
	for seq := range t.confirmed {
		if seq > last {
			last = seq
		}
	}
	return last
}

// Items returns confirmed messages in sequence order followed by pending ones
// in the order they were shown.
func (t *Timeline) Items() []TimelineItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	items := make([]TimelineItem, 0, len(t.confirmed)+len(t.pending))
	for _, it := range t.confirmed {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })

	pending := make([]TimelineItem, 0, len(t.pending))
	for _, it := range t.pending {
		pending = append(pending, it)
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].At.Before(pending[j].At) })
	return append(items, pending...)
}
