package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/db"
)

// MessageRepository persists messages and serves ordered reads by sequence.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// Create inserts an already-sequenced message.
func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// After returns messages with seq in (afterSeq, upTo], ascending. upTo <= 0
// means no upper bound; limit <= 0 means no limit.
func (r *MessageRepository) After(ctx context.Context, conversationID uint64, afterSeq, upTo int64, limit int) ([]db.Message, error) {
	var msgs []db.Message
	query := r.db.WithContext(ctx).
		Where("conversation_id = ? AND seq > ?", conversationID, afterSeq).
		Order("seq ASC")
	if upTo > 0 {
		query = query.Where("seq <= ?", upTo)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&msgs).Error
	return msgs, err
}

// Latest returns the newest message of a conversation, or nil when empty.
func (r *MessageRepository) Latest(ctx context.Context, conversationID uint64) (*db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq DESC").
		Limit(1).
		Find(&msgs).Error
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// CountUnread counts messages after readSeq that userID did not send.
func (r *MessageRepository) CountUnread(ctx context.Context, conversationID, userID uint64, readSeq int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("conversation_id = ? AND seq > ? AND sender_id <> ?", conversationID, readSeq, userID).
		Count(&n).Error
	return n, err
}
