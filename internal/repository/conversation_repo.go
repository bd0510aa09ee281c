package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-core/internal/db"
)

// ConversationRepository manages conversations, their sequence counter and
// per-participant read markers.
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database}
}

func (r *ConversationRepository) WithTx(tx *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: tx}
}

// GetOrCreate returns the conversation of the given kind between a and b,
// creating it on first use. Concurrent callers converge on one row through
// the unique (pair, kind) index.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, a, b uint64, kind string) (db.Conversation, bool, error) {
	low, high := CanonicalPair(a, b)
	conv := db.Conversation{Kind: kind, UserLowID: low, UserHighID: high}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&conv)
	if res.Error != nil {
		return db.Conversation{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return conv, true, nil
	}

	var existing db.Conversation
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ? AND kind = ?", low, high, kind).
		First(&existing).Error
	return existing, false, err
}

// Get loads a conversation by id.
func (r *ConversationRepository) Get(ctx context.Context, id uint64) (db.Conversation, error) {
	var conv db.Conversation
	err := r.db.WithContext(ctx).First(&conv, id).Error
	return conv, err
}

// NextSeq bumps the conversation sequence and stamps the new message time.
//
// The UPDATE takes the conversation row lock and holds it until the
// surrounding transaction ends, which serializes sends per conversation.
// clock is read only once the lock is held, and the stamp never falls below
// the previous last_message_at, so message time is non-decreasing in seq.
// Must be called inside a transaction.
func (r *ConversationRepository) NextSeq(ctx context.Context, id uint64, clock func() time.Time) (int64, time.Time, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return 0, time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, time.Time{}, gorm.ErrRecordNotFound
	}

	var conv db.Conversation
	err := r.db.WithContext(ctx).
		Select("id", "last_seq", "last_message_at").
		Where("id = ?", id).
		Take(&conv).Error
	if err != nil {
		return 0, time.Time{}, err
	}

	at := clock().UTC().Truncate(time.Millisecond)
	if prev := conv.LastMessageAt; prev != nil && prev.After(at) {
		at = prev.UTC()
	}
	err = r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_message_at": at}).Error
	if err != nil {
		return 0, time.Time{}, err
	}
	return conv.LastSeq, at, nil
}

// ListForUser returns the user's conversations, most recently active first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Conversation, error) {
	var convs []db.Conversation
	// empty conversations sort last on every dialect, whatever its NULL ordering
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("last_seq = 0, last_message_at DESC, id DESC").
		Find(&convs).Error
	return convs, err
}

// MarkRead advances the read marker of userID. Markers never move backwards.
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, userID uint64, seq int64) (int64, error) {
	marker := db.ReadMarker{ConversationID: conversationID, UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&marker).Error
	if err != nil {
		return 0, err
	}

	err = r.db.WithContext(ctx).
		Model(&db.ReadMarker{}).
		Where("conversation_id = ? AND user_id = ? AND read_seq < ?", conversationID, userID, seq).
		Update("read_seq", seq).Error
	if err != nil {
		return 0, err
	}
	return r.ReadSeq(ctx, conversationID, userID)
}

// ReadSeq returns how far userID has read, 0 when never marked.
func (r *ConversationRepository) ReadSeq(ctx context.Context, conversationID, userID uint64) (int64, error) {
	var seqs []int64
	err := r.db.WithContext(ctx).
		Model(&db.ReadMarker{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Pluck("read_seq", &seqs).Error
	if err != nil || len(seqs) == 0 {
		return 0, err
	}
	return seqs[0], nil
}

// ReadSeqs returns read markers of userID keyed by conversation id.
func (r *ConversationRepository) ReadSeqs(ctx context.Context, userID uint64, conversationIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var markers []db.ReadMarker
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id IN ?", userID, conversationIDs).
		Find(&markers).Error
	if err != nil {
		return nil, err
	}
	for _, m := range markers {
		out[m.ConversationID] = m.ReadSeq
	}
	return out, nil
}
