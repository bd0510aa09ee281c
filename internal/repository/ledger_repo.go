package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/utils/pagination"
)

// LedgerRepository stores point balances and their append-only entry log.
// Balance mutations and entry inserts are only meaningful together; callers
// run them inside one transaction.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(database *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: database}
}

func (r *LedgerRepository) WithTx(tx *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

// EnsureAccount lazily creates a zero balance row for the user.
func (r *LedgerRepository) EnsureAccount(ctx context.Context, userID uint64) error {
	acct := db.LedgerBalance{UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&acct).Error
}

// TryDecrement subtracts amount only if the balance covers it. The guard is
// part of the UPDATE so concurrent debits can never overdraw; false means
// insufficient funds and nothing changed.
func (r *LedgerRepository) TryDecrement(ctx context.Context, userID uint64, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.LedgerBalance{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]any{
			"balance":     gorm.Expr("balance - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Increment adds amount to the balance. The account row must exist.
func (r *LedgerRepository) Increment(ctx context.Context, userID uint64, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&db.LedgerBalance{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendEntry writes one ledger entry with a time-ordered UUIDv7 id.
func (r *LedgerRepository) AppendEntry(ctx context.Context, e *db.LedgerEntry) error {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id.String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// Balance returns the user's balance row; users without one read as zero.
func (r *LedgerRepository) Balance(ctx context.Context, userID uint64) (db.LedgerBalance, error) {
	var rows []db.LedgerBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return db.LedgerBalance{}, err
	}
	if len(rows) == 0 {
		return db.LedgerBalance{UserID: userID}, nil
	}
	return rows[0], nil
}

// SumEntries returns the sum of all entry deltas for the user.
func (r *LedgerRepository) SumEntries(ctx context.Context, userID uint64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&db.LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&total).Error
	return total, err
}

// FindByPaymentRef returns the entry previously written for a payment
// reference, or nil.
func (r *LedgerRepository) FindByPaymentRef(ctx context.Context, ref string) (*db.LedgerEntry, error) {
	var entries []db.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("payment_ref = ?", ref).
		Limit(1).
		Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// ListEntries pages through a user's entries, newest first.
func (r *LedgerRepository) ListEntries(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.LedgerEntry, *string, error) {
	cursor, err := pagination.Decode(pagination.Deref(paginationToken))
	if err != nil {
		return nil, nil, err
	}
	limit = pagination.Limit(limit)

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if cursor.Ref != "" && cursor.UnixMilli > 0 {
		ts := time.UnixMilli(cursor.UnixMilli).UTC()
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", ts, ts, cursor.Ref)
	}

	var entries []db.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(entries) > limit {
		last := entries[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			Ref:       last.ID,
			UnixMilli: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		entries = entries[:limit]
	}
	return entries, nextToken, nil
}
