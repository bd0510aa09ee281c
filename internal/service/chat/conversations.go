package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/db"
	svcErr "github.com/oggyb/spark-core/internal/errors"
	"github.com/oggyb/spark-core/internal/fanout"
	"github.com/oggyb/spark-core/internal/logger"
	"github.com/oggyb/spark-core/internal/service/quota"
	"github.com/oggyb/spark-core/internal/utils/pagination"
)

// Summary is one row of a user's conversation list.
type Summary struct {
	Conversation db.Conversation
	PeerID       uint64
	LastMessage  *db.Message
	ReadSeq      int64
	Unread       int64
}

// OpenConversation returns the conversation of kind between a and b,
// creating it on first use. match conversations require an existing match.
func (p *Pipeline) OpenConversation(ctx context.Context, a, b uint64, kind string) (db.Conversation, bool, error) {
	logger.FromContext(ctx, p.log).Debug("OpenConversation called", "user_a", a, "user_b", b, "kind", kind)

	if a == 0 || b == 0 || a == b {
		return db.Conversation{}, false, svcErr.Validation("a conversation needs two distinct users")
	}
	switch kind {
	case db.KindIntro:
	case db.KindMatch:
		m, err := p.matches.FindByPair(ctx, a, b)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Conversation{}, false, svcErr.Forbidden("users %d and %d are not matched", a, b)
		}
		if err != nil {
			return db.Conversation{}, false, svcErr.Transient("load match", err)
		}
		if m.ConversationID != 0 {
			conv, err := p.convs.Get(ctx, m.ConversationID)
			if err == nil {
				return conv, false, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return db.Conversation{}, false, svcErr.Transient("load conversation", err)
			}
		}
	default:
		return db.Conversation{}, false, svcErr.Validation("unknown conversation kind %q", kind)
	}

	conv, created, err := p.convs.GetOrCreate(ctx, a, b, kind)
	if err != nil {
		return db.Conversation{}, false, svcErr.Transient("open conversation", err)
	}
	if created {
		logger.FromContext(ctx, p.log).Info("conversation opened", "conversation_id", conv.ID, "kind", kind)
	}
	return conv, created, nil
}

// GetConversation returns the conversation if viewer takes part in it.
func (p *Pipeline) GetConversation(ctx context.Context, conversationID, viewerID uint64) (db.Conversation, error) {
	return p.participantOf(ctx, conversationID, viewerID)
}

// ListMessages returns up to limit messages after afterSeq in sequence order,
// the same range a reconnecting subscriber replays.
func (p *Pipeline) ListMessages(ctx context.Context, conversationID, viewerID uint64, afterSeq int64, limit int) ([]db.Message, error) {
	if afterSeq < 0 {
		return nil, svcErr.Validation("after_seq must be >= 0")
	}
	if _, err := p.participantOf(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := p.messages.After(ctx, conversationID, afterSeq, 0, pagination.Limit(limit))
	if err != nil {
		return nil, svcErr.Transient("list messages", err)
	}
	return msgs, nil
}

// MarkRead advances the viewer's read marker to seq, capped at the last
// message. Markers never move backwards; the stored value is returned.
func (p *Pipeline) MarkRead(ctx context.Context, conversationID, userID uint64, seq int64) (int64, error) {
	if seq < 0 {
		return 0, svcErr.Validation("seq must be >= 0")
	}
	conv, err := p.participantOf(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	if seq > conv.LastSeq {
		seq = conv.LastSeq
	}
	readSeq, err := p.convs.MarkRead(ctx, conversationID, userID, seq)
	if err != nil {
		return 0, svcErr.Transient("mark read", err)
	}
	return readSeq, nil
}

// ListConversations returns the user's conversations, most recently active
// first, with the last message and the unread count.
func (p *Pipeline) ListConversations(ctx context.Context, userID uint64) ([]Summary, error) {
	if userID == 0 {
		return nil, svcErr.Validation("user id is required")
	}
	convs, err := p.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Transient("list conversations", err)
	}
	ids := make([]uint64, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	reads, err := p.convs.ReadSeqs(ctx, userID, ids)
	if err != nil {
		return nil, svcErr.Transient("load read markers", err)
	}

	out := make([]Summary, 0, len(convs))
	for _, c := range convs {
		s := Summary{Conversation: c, PeerID: c.Peer(userID), ReadSeq: reads[c.ID]}
		if c.LastSeq > 0 {
			if s.LastMessage, err = p.messages.Latest(ctx, c.ID); err != nil {
				return nil, svcErr.Transient("load last message", err)
			}
			if s.Unread, err = p.messages.CountUnread(ctx, c.ID, userID, s.ReadSeq); err != nil {
				return nil, svcErr.Transient("count unread", err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// QuotaStatus reports today's counters. Unmetered conversations report
// Unmetered for both the limit and the remaining allowance.
func (p *Pipeline) QuotaStatus(ctx context.Context, conversationID, userID uint64) (quota.Status, error) {
	conv, err := p.participantOf(ctx, conversationID, userID)
	if err != nil {
		return quota.Status{}, err
	}
	day := p.quota.Day(p.now())
	if conv.Kind != db.KindIntro {
		return quota.Status{Day: day, FreeRemaining: Unmetered, Limit: Unmetered}, nil
	}
	return p.quota.Status(ctx, conversationID, day)
}

// Subscribe attaches viewer to the live stream of a conversation. With since
// set, stored messages after it are replayed first.
func (p *Pipeline) Subscribe(ctx context.Context, conversationID, viewerID uint64, since *int64) (*fanout.Subscription, error) {
	if since != nil && *since < 0 {
		return nil, svcErr.Validation("since must be >= 0")
	}
	if p.hub == nil {
		return nil, svcErr.Fatal("live delivery is not configured")
	}
	if _, err := p.participantOf(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	return p.hub.SubscribeConversation(ctx, conversationID, viewerID, since), nil
}

// SubscribeInbox attaches a conversation-list listener for userID.
func (p *Pipeline) SubscribeInbox(userID uint64) (*fanout.InboxSubscription, error) {
	if userID == 0 {
		return nil, svcErr.Validation("user id is required")
	}
	if p.hub == nil {
		return nil, svcErr.Fatal("live delivery is not configured")
	}
	return p.hub.SubscribeInbox(userID), nil
}
