package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-core/internal/db"
)

// QuotaRepository owns the per-conversation, per-day message counters.
type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(database *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: database}
}

func (r *QuotaRepository) WithTx(tx *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: tx}
}

// Ensure lazily creates the counter row for (conversation, day).
func (r *QuotaRepository) Ensure(ctx context.Context, conversationID uint64, day string) error {
	counter := db.QuotaCounter{ConversationID: conversationID, Day: day}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&counter).Error
}

// TryIncrementFree takes one free slot if free_count is still below limit.
//
// The guard lives in the UPDATE itself, so two concurrent callers can never
// both observe limit-1 and both succeed.
func (r *QuotaRepository) TryIncrementFree(ctx context.Context, conversationID uint64, day string, limit int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.QuotaCounter{}).
		Where("conversation_id = ? AND day = ? AND free_count < ?", conversationID, day, limit).
		Update("free_count", gorm.Expr("free_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementPaid records one paid message. Callers must only do this after a
// successful debit in the same transaction.
func (r *QuotaRepository) IncrementPaid(ctx context.Context, conversationID uint64, day string) error {
	res := r.db.WithContext(ctx).
		Model(&db.QuotaCounter{}).
		Where("conversation_id = ? AND day = ?", conversationID, day).
		Update("paid_count", gorm.Expr("paid_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Get returns the counter for (conversation, day); a missing row reads as zero.
func (r *QuotaRepository) Get(ctx context.Context, conversationID uint64, day string) (db.QuotaCounter, error) {
	var counters []db.QuotaCounter
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND day = ?", conversationID, day).
		Limit(1).
		Find(&counters).Error
	if err != nil {
		return db.QuotaCounter{}, err
	}
	if len(counters) == 0 {
		return db.QuotaCounter{ConversationID: conversationID, Day: day}, nil
	}
	return counters[0], nil
}
