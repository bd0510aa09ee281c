package fanout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oggyb/spark-core/internal/db"
)

// MessageSource reads persisted messages with seq in (afterSeq, upTo].
// upTo <= 0 means no upper bound.
type MessageSource interface {
	After(ctx context.Context, conversationID uint64, afterSeq, upTo int64, limit int) ([]db.Message, error)
}

// Publisher forwards locally published events to other instances.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Hub keeps the live subscriber sets. Delivery never blocks on a subscriber:
// a full conversation buffer makes that subscriber catch up from the store,
// a full inbox buffer drops the summary.
type Hub struct {
	source MessageSource
	buffer int
	log    *slog.Logger

	mu      sync.RWMutex
	convs   map[uint64]map[*Subscription]struct{}
	inboxes map[uint64]map[*InboxSubscription]struct{}
	remote  Publisher
}

// NewHub creates a hub that back-fills conversation subscribers from source.
func NewHub(source MessageSource, buffer int, log *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		source:  source,
		buffer:  buffer,
		log:     log.With("component", "fanout"),
		convs:   make(map[uint64]map[*Subscription]struct{}),
		inboxes: make(map[uint64]map[*InboxSubscription]struct{}),
	}
}

// SetRemote attaches a cross-instance publisher. Pass nil to detach.
func (h *Hub) SetRemote(p Publisher) {
	h.mu.Lock()
	h.remote = p
	h.mu.Unlock()
}

// PublishMessage delivers a persisted message to the conversation's
// subscribers and a summary to both participants' inboxes.
func (h *Hub) PublishMessage(ctx context.Context, conv db.Conversation, m db.Message) {
	h.publish(ctx, MessageEvent(m))
	h.publish(ctx, SummaryEvent(conv, m))
}

// PublishMatch announces a new match to both users' inboxes.
func (h *Hub) PublishMatch(ctx context.Context, m db.Match) {
	h.publish(ctx, MatchEvent(m))
}

func (h *Hub) publish(ctx context.Context, ev Event) {
	h.Deliver(ev)

	h.mu.RLock()
	remote := h.remote
	h.mu.RUnlock()
	if remote == nil {
		return
	}
	// live delivery carries no durability promise; subscribers on other
	// instances recover from the store on their next gap or reconnect
	if err := remote.Publish(ctx, ev); err != nil {
		h.log.Warn("remote publish failed", "kind", ev.Kind, "conversation_id", ev.ConversationID, "err", err)
	}
}

// Deliver hands ev to local subscribers only.
func (h *Hub) Deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch ev.Kind {
	case EventMessage:
		for sub := range h.convs[ev.ConversationID] {
			sub.offer(ev)
		}
	case EventSummary, EventMatch:
		for _, userID := range ev.Recipients {
			for sub := range h.inboxes[userID] {
				sub.offer(ev)
			}
		}
	default:
		h.log.Warn("unknown event kind", "kind", ev.Kind)
	}
}

// SubscriberCount reports live conversation subscribers.
func (h *Hub) SubscriberCount(conversationID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.convs[conversationID])
}

// InboxCount reports live inbox subscribers of a user.
func (h *Hub) InboxCount(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.inboxes[userID])
}

func (h *Hub) addConversation(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.convs[s.conversationID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.convs[s.conversationID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) removeConversation(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.convs[s.conversationID]
	delete(set, s)
	if len(set) == 0 {
		delete(h.convs, s.conversationID)
	}
}

func (h *Hub) addInbox(s *InboxSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.inboxes[s.userID]
	if !ok {
		set = make(map[*InboxSubscription]struct{})
		h.inboxes[s.userID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) removeInbox(s *InboxSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.inboxes[s.userID]
	delete(set, s)
	if len(set) == 0 {
		delete(h.inboxes, s.userID)
	}
}
