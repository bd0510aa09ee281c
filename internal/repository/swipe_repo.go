package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/utils/pagination"
)

// SwipeRepository provides data access methods for swipes.
// It encapsulates all queries related to likes/passes between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx.
func (r *SwipeRepository) WithTx(tx *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: tx}
}

// Record upserts the current decision for (actor, target) and appends the
// swipe to the audit history.
//
// Behavior:
//   - If the pair exists → action is overwritten (last write wins).
//   - If it doesn’t exist → a new row is inserted.
//   - A SwipeEvent row is always appended; history is never rewritten.
//
// Example:
//
//	repo.Record(ctx, 1, 2, db.ActionLike, false) // user 1 liked user 2
func (r *SwipeRepository) Record(
	ctx context.Context,
	actorID, targetID uint64,
	action string,
	paid bool,
) error {
	swipe := db.Swipe{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
		}).
		Create(&swipe).Error
	if err != nil {
		return err
	}

	event := db.SwipeEvent{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
		Paid:     paid,
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

// Current returns the current decision of actor about target, or "" if none.
func (r *SwipeRepository) Current(ctx context.Context, actorID, targetID uint64) (string, error) {
	var swipes []db.Swipe
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Limit(1).
		Find(&swipes).Error
	if err != nil || len(swipes) == 0 {
		return "", err
	}
	return swipes[0].Action, nil
}

// HasLiked checks whether an actor currently likes a target.
//
// Behavior:
//   - Returns true if the current decision row for (actor, target) is a like.
//   - Used for the reciprocal-like check in SubmitSwipe.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *SwipeRepository) HasLiked(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("actor_id = ? AND target_id = ? AND action = ?", actorID, targetID, db.ActionLike).
		Count(&count).Error
	return count > 0, err
}

// History returns every swipe actor submitted about target, oldest first.
func (r *SwipeRepository) History(ctx context.Context, actorID, targetID uint64) ([]db.SwipeEvent, error) {
	var events []db.SwipeEvent
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

// GetLikers returns all users who currently like the given target.
//
// Behavior:
//   - Only swipes where target_id = X and action = like are returned.
//   - Excludes users that the target explicitly passed.
//   - When excludeMutual is set, also excludes users the target liked back.
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.GetLikers(ctx, 42, false, nil, 20) // first 20 people who liked user 42
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	targetID uint64,
	excludeMutual bool,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	cursor, err := pagination.Decode(pagination.Deref(paginationToken))
	if err != nil {
		return nil, nil, err
	}
	limit = pagination.Limit(limit)

	query := r.likersQuery(ctx, targetID, excludeMutual).
		Order("s.updated_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	if cursor.ID > 0 && cursor.UnixMilli > 0 {
		ts := time.UnixMilli(cursor.UnixMilli).UTC()
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:        last.ActorID,
			UnixMilli: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountLikers returns how many users currently like the given target,
// excluding users the target passed.
func (r *SwipeRepository) CountLikers(ctx context.Context, targetID uint64) (int64, error) {
	var count int64
	err := r.likersQuery(ctx, targetID, false).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SwipeRepository) likersQuery(ctx context.Context, targetID uint64, excludeMutual bool) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.action = ?", targetID, db.ActionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.action = ?
			)`, targetID, db.ActionPass)

	if excludeMutual {
		query = query.Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s3
				WHERE s3.actor_id = s.target_id
				  AND s3.target_id = s.actor_id
				  AND s3.action = ?
			)`, db.ActionLike)
	}
	return query
}
