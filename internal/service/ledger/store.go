package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/app"
	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db"
	svcErr "github.com/oggyb/spark-core/internal/errors"
	"github.com/oggyb/spark-core/internal/logger"
	"github.com/oggyb/spark-core/internal/repository"
	"github.com/oggyb/spark-core/internal/utils/pagination"
)

// Result is the outcome of a balance movement.
type Result struct {
	Entry   db.LedgerEntry
	Balance int64
	// Duplicate is set when a credit with an already-seen payment reference
	// was replayed; Entry is then the original entry and nothing changed.
	Duplicate bool
}

// Store is the Ledger Store: per-user point balances backed by an
// append-only entry log. Every movement changes the balance and appends the
// matching entry in one transaction.
type Store struct {
	db   *gorm.DB
	repo *repository.LedgerRepository
	cfg  *config.Config
	log  *slog.Logger
}

// NewStore creates a ledger store with dependencies from AppContext.
func NewStore(appCtx *app.AppContext) *Store {
	return &Store{
		db:   appCtx.DB,
		repo: repository.NewLedgerRepository(appCtx.DB),
		cfg:  appCtx.Config,
		log:  appCtx.Logger.With("component", "ledger"),
	}
}

// Debit removes amount points from the user in its own transaction.
//
// Behavior:
//   - Fails with ErrInsufficientFunds and changes nothing when balance < amount.
//   - Otherwise decrements the balance and appends a negative entry atomically.
//   - Concurrent debits are serialized by the guarded UPDATE on the balance row,
//     so they can never jointly overdraw.
func (s *Store) Debit(ctx context.Context, userID uint64, amount int64, reason string, conversationID *uint64) (Result, error) {
	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.DebitTx(ctx, tx, userID, amount, reason, conversationID)
		return err
	})
	if err != nil {
		return Result{}, svcErr.Transient("debit", err)
	}
	return res, nil
}

// DebitTx is Debit inside a caller-owned transaction, so the debit commits or
// rolls back together with the caller's other writes.
func (s *Store) DebitTx(ctx context.Context, tx *gorm.DB, userID uint64, amount int64, reason string, conversationID *uint64) (Result, error) {
	if userID == 0 {
		return Result{}, svcErr.Validation("user id is required")
	}
	if amount <= 0 {
		return Result{}, svcErr.Validation("debit amount must be positive, got %d", amount)
	}
	if reason == "" {
		return Result{}, svcErr.Validation("debit reason is required")
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.TryDecrement(ctx, userID, amount)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, fmt.Errorf("user %d needs %d points: %w", userID, amount, svcErr.ErrInsufficientFunds)
	}

	entry := db.LedgerEntry{
		UserID:         userID,
		Delta:          -amount,
		Kind:           db.EntrySpend,
		Reason:         reason,
		ConversationID: conversationID,
	}
	if err := repo.AppendEntry(ctx, &entry); err != nil {
		return Result{}, err
	}

	bal, err := repo.Balance(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return Result{Entry: entry, Balance: bal.Balance}, nil
}

// Credit adds points to the user. kind is one of purchase, refund or bonus.
//
// Behavior:
//   - No upper bound on the resulting balance.
//   - A non-empty paymentRef makes the credit idempotent: replaying the same
//     reference returns the original entry with Duplicate set.
//   - Only the payment-confirmation collaborator calls this; end-user actions
//     never credit directly.
func (s *Store) Credit(ctx context.Context, userID uint64, amount int64, kind, reason, paymentRef string) (Result, error) {
	if userID == 0 {
		return Result{}, svcErr.Validation("user id is required")
	}
	if amount <= 0 {
		return Result{}, svcErr.Validation("credit amount must be positive, got %d", amount)
	}
	switch kind {
	case db.EntryPurchase, db.EntryRefund, db.EntryBonus:
	default:
		return Result{}, svcErr.Validation("unsupported credit kind %q", kind)
	}
	if reason == "" {
		reason = kind
	}

	if paymentRef != "" {
		if res, found, err := s.replayed(ctx, userID, paymentRef); err != nil || found {
			return res, err
		}
	}

	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.EnsureAccount(ctx, userID); err != nil {
			return err
		}
		if err := repo.Increment(ctx, userID, amount); err != nil {
			return err
		}

		entry := db.LedgerEntry{
			UserID: userID,
			Delta:  amount,
			Kind:   kind,
			Reason: reason,
		}
		if paymentRef != "" {
			ref := paymentRef
			entry.PaymentRef = &ref
		}
		if err := repo.AppendEntry(ctx, &entry); err != nil {
			return err
		}

		bal, err := repo.Balance(ctx, userID)
		if err != nil {
			return err
		}
		res = Result{Entry: entry, Balance: bal.Balance}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && paymentRef != "" {
		// lost a race with a concurrent replay of the same payment; our
		// increment was rolled back with the failed insert
		if replay, found, rerr := s.replayed(ctx, userID, paymentRef); rerr == nil && found {
			return replay, nil
		}
	}
	if err != nil {
		return Result{}, svcErr.Transient("credit", err)
	}

	logger.FromContext(ctx, s.log).Info("points credited",
		"user_id", userID, "amount", amount, "kind", kind, "balance", res.Balance)
	return res, nil
}

func (s *Store) replayed(ctx context.Context, userID uint64, paymentRef string) (Result, bool, error) {
	prev, err := s.repo.FindByPaymentRef(ctx, paymentRef)
	if err != nil {
		return Result{}, false, svcErr.Transient("lookup payment reference", err)
	}
	if prev == nil {
		return Result{}, false, nil
	}
	if prev.UserID != userID {
		return Result{}, false, svcErr.Validation("payment reference %q belongs to another user", paymentRef)
	}
	bal, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return Result{}, false, svcErr.Transient("load balance", err)
	}
	return Result{Entry: *prev, Balance: bal.Balance, Duplicate: true}, true, nil
}

// PurchasePackage credits a configured point package (points + bonus) as a
// single purchase entry. paymentRef is the verified provider reference.
func (s *Store) PurchasePackage(ctx context.Context, userID uint64, packageID, paymentRef string) (Result, error) {
	pkg, ok := s.cfg.Package(packageID)
	if !ok {
		return Result{}, svcErr.Validation("unknown point package %q", packageID)
	}
	if paymentRef == "" {
		return Result{}, svcErr.Validation("payment reference is required for purchases")
	}
	reason := "package:" + pkg.ID
	return s.Credit(ctx, userID, pkg.Total(), db.EntryPurchase, reason, paymentRef)
}

// GetBalance returns the user's balance row; unknown users have zero points.
func (s *Store) GetBalance(ctx context.Context, userID uint64) (db.LedgerBalance, error) {
	if userID == 0 {
		return db.LedgerBalance{}, svcErr.Validation("user id is required")
	}
	bal, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return db.LedgerBalance{}, svcErr.Transient("load balance", err)
	}
	return bal, nil
}

// ListEntries pages through the user's ledger history, newest first.
func (s *Store) ListEntries(ctx context.Context, userID uint64, token *string, limit int) ([]db.LedgerEntry, *string, error) {
	if userID == 0 {
		return nil, nil, svcErr.Validation("user id is required")
	}
	if _, err := pagination.Decode(pagination.Deref(token)); err != nil {
		return nil, nil, svcErr.Validation("%v", err)
	}
	entries, next, err := s.repo.ListEntries(ctx, userID, token, limit)
	if err != nil {
		return nil, nil, svcErr.Transient("list ledger entries", err)
	}
	return entries, next, nil
}

// Reconcile verifies that the stored balance equals the sum of the user's
// entries. A mismatch is a bug and is reported as ErrFatal, never repaired.
func (s *Store) Reconcile(ctx context.Context, userID uint64) error {
	var (
		bal db.LedgerBalance
		sum int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if bal, err = repo.Balance(ctx, userID); err != nil {
			return err
		}
		sum, err = repo.SumEntries(ctx, userID)
		return err
	})
	if err != nil {
		return svcErr.Transient("reconcile", err)
	}
	if bal.Balance != sum || bal.Balance < 0 {
		logger.FromContext(ctx, s.log).Error("ledger drift detected", "user_id", userID, "balance", bal.Balance, "entries_sum", sum)
		return svcErr.Fatal("user %d balance %d != entries sum %d", userID, bal.Balance, sum)
	}
	return nil
}
