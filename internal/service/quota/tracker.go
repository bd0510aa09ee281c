package quota

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/app"
	"github.com/oggyb/spark-core/internal/config"
	svcErr "github.com/oggyb/spark-core/internal/errors"
	"github.com/oggyb/spark-core/internal/repository"
)

// DayLayout is the calendar-day key of a quota counter.
const DayLayout = "2006-01-02"

// Decision is the outcome of CheckAndReserve.
type Decision int

const (
	// Free means a free slot was reserved; no ledger interaction is needed.
	Free Decision = iota + 1
	// RequiresDebit means the free allowance is used up and the caller must
	// debit the sender before calling CommitPaid.
	RequiresDebit
)

func (d Decision) String() string {
	switch d {
	case Free:
		return "free"
	case RequiresDebit:
		return "requires_debit"
	default:
		return "unknown"
	}
}

// Status is a read-only view of a conversation-day counter.
type Status struct {
	Day           string
	FreeUsed      int
	Paid          int
	FreeRemaining int
	Limit         int
}

// Tracker is the Quota Tracker: per-conversation, per-day free-message counters.
//
// CheckAndReserve and CommitPaid take a transaction handle. The reservation
// only persists if the caller's transaction commits, so a failed send gives the
// slot back through rollback.
type Tracker struct {
	db    *gorm.DB
	repo  *repository.QuotaRepository
	limit int
	loc   *time.Location
	log   *slog.Logger
}

// NewTracker creates a tracker with the daily limit and day boundary from config.
func NewTracker(appCtx *app.AppContext) *Tracker {
	return newTracker(appCtx.DB, appCtx.Config, appCtx.Logger)
}

func newTracker(database *gorm.DB, cfg *config.Config, log *slog.Logger) *Tracker {
	loc := cfg.Quota.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{
		db:    database,
		repo:  repository.NewQuotaRepository(database),
		limit: cfg.Quota.DailyFreeLimit,
		loc:   loc,
		log:   log.With("component", "quota"),
	}
}

// Limit is the configured daily free-message allowance.
func (t *Tracker) Limit() int { return t.limit }

// Day returns the counter key for the instant now in the configured timezone.
func (t *Tracker) Day(now time.Time) string {
	return now.In(t.loc).Format(DayLayout)
}

// CheckAndReserve reserves a free slot for (conversation, day) if one is left.
//
// Behavior:
//   - Lazily creates the day's counter.
//   - free_count < limit: increments free_count and returns Free.
//   - Otherwise returns RequiresDebit and changes nothing.
//   - The increment is a guarded UPDATE, so concurrent senders can never
//     both take the last free slot.
func (t *Tracker) CheckAndReserve(ctx context.Context, tx *gorm.DB, conversationID uint64, day string) (Decision, error) {
	if conversationID == 0 || day == "" {
		return 0, svcErr.Validation("conversation and day are required")
	}
	repo := t.repo.WithTx(tx)
	if err := repo.Ensure(ctx, conversationID, day); err != nil {
		return 0, err
	}
	ok, err := repo.TryIncrementFree(ctx, conversationID, day, t.limit)
	if err != nil {
		return 0, err
	}
	if ok {
		return Free, nil
	}
	t.log.Debug("free allowance exhausted", "conversation_id", conversationID, "day", day)
	return RequiresDebit, nil
}

// CommitPaid counts one paid message. Call only after the debit succeeded in tx.
func (t *Tracker) CommitPaid(ctx context.Context, tx *gorm.DB, conversationID uint64, day string) error {
	return t.repo.WithTx(tx).IncrementPaid(ctx, conversationID, day)
}

// Remaining reads the free slots left inside tx, after a reservation.
func (t *Tracker) Remaining(ctx context.Context, tx *gorm.DB, conversationID uint64, day string) (int, error) {
	counter, err := t.repo.WithTx(tx).Get(ctx, conversationID, day)
	if err != nil {
		return 0, err
	}
	return t.remaining(counter.FreeCount), nil
}

// Status reports the counters for (conversation, day). Days without activity
// read as an untouched allowance.
func (t *Tracker) Status(ctx context.Context, conversationID uint64, day string) (Status, error) {
	counter, err := t.repo.Get(ctx, conversationID, day)
	if err != nil {
		return Status{}, svcErr.Transient("load quota", err)
	}
	return Status{
		Day:           day,
		FreeUsed:      counter.FreeCount,
		Paid:          counter.PaidCount,
		FreeRemaining: t.remaining(counter.FreeCount),
		Limit:         t.limit,
	}, nil
}

func (t *Tracker) remaining(used int) int {
	if left := t.limit - used; left > 0 {
		return left
	}
	return 0
}
