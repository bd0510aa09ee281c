package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-core/internal/db"
)

// MatchRepository stores mutual likes keyed by their canonical pair.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// CanonicalPair orders two user ids so that either insertion order yields
// the same key.
func CanonicalPair(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// CreateIfAbsent inserts the match for the pair unless one already exists.
//
// Behavior:
//   - Conflicts on the unique canonical pair are treated as "already exists",
//     not as errors.
//   - Returns the stored match and whether this call created it.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, a, b uint64) (db.Match, bool, error) {
	low, high := CanonicalPair(a, b)
	m := db.Match{UserLowID: low, UserHighID: high}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	if res.Error != nil {
		return db.Match{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return m, true, nil
	}

	existing, err := r.FindByPair(ctx, low, high)
	if err != nil {
		return db.Match{}, false, err
	}
	return existing, false, nil
}

// FindByPair loads the match for a pair in either order.
func (r *MatchRepository) FindByPair(ctx context.Context, a, b uint64) (db.Match, error) {
	low, high := CanonicalPair(a, b)
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&m).Error
	return m, err
}

// CountByPair counts match rows for a pair. Anything above one is a broken
// uniqueness constraint.
func (r *MatchRepository) CountByPair(ctx context.Context, a, b uint64) (int64, error) {
	low, high := CanonicalPair(a, b)
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Count(&n).Error
	return n, err
}

// AttachConversation records the conversation opened for a match.
func (r *MatchRepository) AttachConversation(ctx context.Context, matchID, conversationID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", matchID).
		Update("conversation_id", conversationID).Error
}

// ListForUser returns all matches the user is part of, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}
