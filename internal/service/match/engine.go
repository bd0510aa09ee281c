package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/app"
	"github.com/oggyb/spark-core/internal/cache"
	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db"
	svcErr "github.com/oggyb/spark-core/internal/errors"
	"github.com/oggyb/spark-core/internal/logger"
	"github.com/oggyb/spark-core/internal/repository"
	"github.com/oggyb/spark-core/internal/service/ledger"
	"github.com/oggyb/spark-core/internal/utils/pagination"
)

// Outcome of a swipe.
type Outcome string

const (
	OutcomeRecorded       Outcome = "recorded"
	OutcomeMatched        Outcome = "matched"
	OutcomeAlreadyMatched Outcome = "already_matched"
)

// SwipeResult is returned by SubmitSwipe and SendCrush. Match is set for
// matched and already_matched outcomes.
type SwipeResult struct {
	Outcome Outcome
	Match   *db.Match
	// Balance after the crush debit; zero for plain swipes.
	Balance int64
}

// Notifier receives newly created matches.
type Notifier interface {
	PublishMatch(ctx context.Context, m db.Match)
}

// Liker is one entry of a "liked you" list.
type Liker struct {
	ActorID uint64
	LikedAt time.Time
}

// Engine is the Match Engine. It turns swipes into matches: the swipe is
// committed first, then the reciprocal like is checked, and the unique
// canonical pair on matches decides which concurrent caller creates the row.
type Engine struct {
	db       *gorm.DB
	swipes   *repository.SwipeRepository
	matches  *repository.MatchRepository
	convs    *repository.ConversationRepository
	ledger   *ledger.Store
	cache    *cache.RedisCache
	notifier Notifier
	cfg      *config.Config
	log      *slog.Logger
}

// NewEngine wires the engine. notifier may be nil.
func NewEngine(appCtx *app.AppContext, ledgerStore *ledger.Store, notifier Notifier) *Engine {
	return &Engine{
		db:       appCtx.DB,
		swipes:   repository.NewSwipeRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
		convs:    repository.NewConversationRepository(appCtx.DB),
		ledger:   ledgerStore,
		cache:    appCtx.RedisCache,
		notifier: notifier,
		cfg:      appCtx.Config,
		log:      appCtx.Logger.With("component", "match"),
	}
}

// SubmitSwipe records actor's decision about target and resolves a match.
//
// Behavior:
//   - Rejects self-swipes, zero ids and unknown actions.
//   - Last write wins on the current decision; every swipe is kept in history.
//   - pass never creates a match and never removes one.
//   - like with a reciprocal like creates the match exactly once; later or
//     losing callers get already_matched.
//   - Two concurrent mutual likes may return matched and recorded, when the
//     first to commit saw no reciprocal like yet.
//   - More than one match row for the pair fails with ErrFatal.
func (e *Engine) SubmitSwipe(ctx context.Context, actorID, targetID uint64, action string) (SwipeResult, error) {
	e.logFor(ctx).Debug("SubmitSwipe called", "actor", actorID, "target", targetID, "action", action)

	if err := validatePair(actorID, targetID); err != nil {
		return SwipeResult{}, err
	}
	if action != db.ActionLike && action != db.ActionPass {
		return SwipeResult{}, svcErr.Validation("action must be %q or %q, got %q", db.ActionLike, db.ActionPass, action)
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return e.swipes.WithTx(tx).Record(ctx, actorID, targetID, action, false)
	})
	if err != nil {
		return SwipeResult{}, svcErr.Transient("record swipe", err)
	}
	e.invalidateCounts(ctx, actorID, targetID)

	if action == db.ActionPass {
		return SwipeResult{Outcome: OutcomeRecorded}, nil
	}
	return e.resolve(ctx, actorID, targetID)
}

// SendCrush is a paid like: the crush cost is debited and the like recorded
// in one transaction, then the usual match check runs. With insufficient
// funds nothing is recorded.
func (e *Engine) SendCrush(ctx context.Context, actorID, targetID uint64) (SwipeResult, error) {
	e.logFor(ctx).Debug("SendCrush called", "actor", actorID, "target", targetID)

	if err := validatePair(actorID, targetID); err != nil {
		return SwipeResult{}, err
	}
	n, err := e.matches.CountByPair(ctx, actorID, targetID)
	if err != nil {
		return SwipeResult{}, svcErr.Transient("check match", err)
	}
	if n > 0 {
		return SwipeResult{}, svcErr.Validation("users %d and %d are already matched", actorID, targetID)
	}

	var debit ledger.Result
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		debit, err = e.ledger.DebitTx(ctx, tx, actorID, e.cfg.Match.CrushCost, "crush", nil)
		if err != nil {
			return err
		}
		return e.swipes.WithTx(tx).Record(ctx, actorID, targetID, db.ActionLike, true)
	})
	if err != nil {
		return SwipeResult{}, svcErr.Transient("send crush", err)
	}
	e.invalidateCounts(ctx, actorID, targetID)
	e.logFor(ctx).Info("crush sent", "actor", actorID, "target", targetID, "cost", e.cfg.Match.CrushCost, "balance", debit.Balance)

	res, err := e.resolve(ctx, actorID, targetID)
	res.Balance = debit.Balance
	return res, err
}

// resolve runs after actor's like is committed.
func (e *Engine) resolve(ctx context.Context, actorID, targetID uint64) (SwipeResult, error) {
	reciprocal, err := e.swipes.HasLiked(ctx, targetID, actorID)
	if err != nil {
		return SwipeResult{}, svcErr.Transient("check reciprocal like", err)
	}
	if !reciprocal {
		return SwipeResult{Outcome: OutcomeRecorded}, nil
	}

	var (
		m       db.Match
		created bool
	)
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matches := e.matches.WithTx(tx)
		var err error
		m, created, err = matches.CreateIfAbsent(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		// a missing unique index lets the insert through; roll it back
		if err := e.checkUnique(ctx, matches, actorID, targetID); err != nil {
			return err
		}
		if !created {
			return nil
		}
		conv, _, err := e.convs.WithTx(tx).GetOrCreate(ctx, actorID, targetID, db.KindMatch)
		if err != nil {
			return err
		}
		m.ConversationID = conv.ID
		return matches.AttachConversation(ctx, m.ID, conv.ID)
	})
	if err != nil {
		return SwipeResult{}, svcErr.Transient("create match", err)
	}

	if !created {
		return SwipeResult{Outcome: OutcomeAlreadyMatched, Match: &m}, nil
	}

	e.logFor(ctx).Info("match created",
		"match_id", m.ID, "user_low", m.UserLowID, "user_high", m.UserHighID, "conversation_id", m.ConversationID)
	if e.notifier != nil {
		e.notifier.PublishMatch(ctx, m)
	}
	return SwipeResult{Outcome: OutcomeMatched, Match: &m}, nil
}

// checkUnique surfaces a duplicated canonical pair, which only a broken
// unique index can produce.
func (e *Engine) checkUnique(ctx context.Context, matches *repository.MatchRepository, a, b uint64) error {
	n, err := matches.CountByPair(ctx, a, b)
	if err != nil {
		return err
	}
	if n > 1 {
		e.logFor(ctx).Error("duplicate match rows", "user_a", a, "user_b", b, "rows", n)
		return svcErr.Fatal("%d match rows for pair (%d, %d)", n, a, b)
	}
	return nil
}

// GetMatch returns the match between a and b.
func (e *Engine) GetMatch(ctx context.Context, a, b uint64) (db.Match, error) {
	m, err := e.matches.FindByPair(ctx, a, b)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Match{}, svcErr.NotFound("no match between %d and %d", a, b)
	}
	if err != nil {
		return db.Match{}, svcErr.Transient("load match", err)
	}
	return m, nil
}

// ListMatches returns every match the user is part of, newest first.
func (e *Engine) ListMatches(ctx context.Context, userID uint64) ([]db.Match, error) {
	if userID == 0 {
		return nil, svcErr.Validation("user id is required")
	}
	matches, err := e.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Transient("list matches", err)
	}
	return matches, nil
}

// ListLikedYou returns users who currently like the recipient, newest first,
// excluding users the recipient passed.
func (e *Engine) ListLikedYou(ctx context.Context, recipientID uint64, token *string, limit int) ([]Liker, *string, error) {
	return e.likers(ctx, recipientID, false, token, limit)
}

// ListNewLikedYou is ListLikedYou without the users the recipient already liked back.
func (e *Engine) ListNewLikedYou(ctx context.Context, recipientID uint64, token *string, limit int) ([]Liker, *string, error) {
	return e.likers(ctx, recipientID, true, token, limit)
}

func (e *Engine) likers(ctx context.Context, recipientID uint64, excludeMutual bool, token *string, limit int) ([]Liker, *string, error) {
	if recipientID == 0 {
		return nil, nil, svcErr.Validation("recipient id is required")
	}
	if _, err := pagination.Decode(pagination.Deref(token)); err != nil {
		return nil, nil, svcErr.Validation("%v", err)
	}
	swipes, next, err := e.swipes.GetLikers(ctx, recipientID, excludeMutual, token, limit)
	if err != nil {
		return nil, nil, svcErr.Transient("list likers", err)
	}
	out := make([]Liker, 0, len(swipes))
	for _, s := range swipes {
		out = append(out, Liker{ActorID: s.ActorID, LikedAt: s.UpdatedAt})
	}
	return out, next, nil
}

// CountLikedYou counts the recipient's likers.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On miss or Redis failure, falls back to the DB.
//  3. On DB fetch, stores the count with a 1h TTL.
func (e *Engine) CountLikedYou(ctx context.Context, recipientID uint64) (int64, error) {
	if recipientID == 0 {
		return 0, svcErr.Validation("recipient id is required")
	}
	if e.cache != nil {
		n, ok, err := e.cache.GetLikeCount(ctx, recipientID)
		if err != nil {
			e.logFor(ctx).Warn("like count cache read failed", "recipient", recipientID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	n, err := e.swipes.CountLikers(ctx, recipientID)
	if err != nil {
		return 0, svcErr.Transient("count likers", err)
	}
	if e.cache != nil {
		if err := e.cache.SetLikeCount(ctx, recipientID, n); err != nil {
			e.logFor(ctx).Warn("like count cache write failed", "recipient", recipientID, "err", err)
		}
	}
	return n, nil
}

// invalidateCounts drops both users' cached counters: a like changes the
// target's count, a pass can hide a liker from the actor's count.
func (e *Engine) invalidateCounts(ctx context.Context, actorID, targetID uint64) {
	if e.cache == nil {
		return
	}
	for _, id := range []uint64{actorID, targetID} {
		if err := e.cache.InvalidateLikeCount(ctx, id); err != nil {
			e.logFor(ctx).Warn("like count invalidation failed", "user", id, "err", err)
		}
	}
}

// logFor prefers the request logger the transport put in ctx.
func (e *Engine) logFor(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, e.log)
}

func validatePair(actorID, targetID uint64) error {
	if actorID == 0 || targetID == 0 {
		return svcErr.Validation("actor and target ids are required")
	}
	if actorID == targetID {
		return svcErr.Validation("cannot swipe on yourself")
	}
	return nil
}
