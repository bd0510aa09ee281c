package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/app"
	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db"
	svcErr "github.com/oggyb/spark-core/internal/errors"
	"github.com/oggyb/spark-core/internal/fanout"
	"github.com/oggyb/spark-core/internal/logger"
	"github.com/oggyb/spark-core/internal/repository"
	"github.com/oggyb/spark-core/internal/service/ledger"
	"github.com/oggyb/spark-core/internal/service/quota"
)

const (
	MaxBodyRunes    = 4000
	MaxClientRefLen = 64
	MaxMediaRefLen  = 512

	// Unmetered is reported as FreeRemaining for conversations outside the quota.
	Unmetered = -1
)

// SendRequest is one message submission.
type SendRequest struct {
	ConversationID uint64
	SenderID       uint64
	Body           string
	MediaRef       string
	// ClientRef is the sender's id for the optimistic copy; echoed back verbatim.
	ClientRef string
}

// SendResult is the persisted message plus the quota state after the send.
type SendResult struct {
	Message       db.Message
	WasFree       bool
	FreeRemaining int
	// Balance after the debit, set only for charged sends.
	Balance *int64
}

// Pipeline is the Message Pipeline and owns conversations, history and read
// markers.
type Pipeline struct {
	db       *gorm.DB
	convs    *repository.ConversationRepository
	messages *repository.MessageRepository
	matches  *repository.MatchRepository
	quota    *quota.Tracker
	ledger   *ledger.Store
	hub      *fanout.Hub
	cfg      *config.Config
	log      *slog.Logger
	now      func() time.Time
}

// NewPipeline wires the pipeline. hub may be nil, in which case nothing is
// delivered live.
func NewPipeline(appCtx *app.AppContext, tracker *quota.Tracker, ledgerStore *ledger.Store, hub *fanout.Hub) *Pipeline {
	return &Pipeline{
		db:       appCtx.DB,
		convs:    repository.NewConversationRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
		quota:    tracker,
		ledger:   ledgerStore,
		hub:      hub,
		cfg:      appCtx.Config,
		log:      appCtx.Logger.With("component", "chat"),
		now:      appCtx.Now,
	}
}

// SendMessage validates, meters, persists and publishes one message.
//
// Behavior:
//   - The sender must be a participant; body or media reference must be set.
//   - intro conversations take a free slot while one is left today, then
//     debit MessageCost points. Without enough points the send fails with
//     ErrQuotaExceeded and nothing is persisted.
//   - match conversations are unmetered.
//   - Reservation, debit, paid counter, sequence number and message insert
//     share one transaction, so any failure or cancellation before commit
//     leaves no trace.
//   - Subscribers are notified only after commit.
func (p *Pipeline) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx, p.log).With("conversation_id", req.ConversationID, "sender", req.SenderID)
	log.Debug("SendMessage called", "client_ref", req.ClientRef)

	if err := validateSend(&req); err != nil {
		return SendResult{}, err
	}
	conv, err := p.participantOf(ctx, req.ConversationID, req.SenderID)
	if err != nil {
		return SendResult{}, err
	}

	// the message time is stamped under the conversation lock; this read only
	// picks the quota day
	day := p.quota.Day(p.now())
	metered := conv.Kind == db.KindIntro

	var res SendResult
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res = SendResult{WasFree: true, FreeRemaining: Unmetered}

		if metered {
			decision, err := p.quota.CheckAndReserve(ctx, tx, conv.ID, day)
			if err != nil {
				return err
			}
			if decision == quota.RequiresDebit {
				cost := p.cfg.Quota.MessageCost
				debit, err := p.ledger.DebitTx(ctx, tx, req.SenderID, cost, "message", &conv.ID)
				if errors.Is(err, svcErr.ErrInsufficientFunds) {
					return fmt.Errorf("%w: %w", svcErr.ErrQuotaExceeded, err)
				}
				if err != nil {
					return err
				}
				if err := p.quota.CommitPaid(ctx, tx, conv.ID, day); err != nil {
					return err
				}
				res.WasFree = false
				res.Balance = &debit.Balance
			}
		}

		seq, at, err := p.convs.WithTx(tx).NextSeq(ctx, conv.ID, p.now)
		if err != nil {
			return err
		}
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		msg := db.Message{
			ID:             id.String(),
			ConversationID: conv.ID,
			Seq:            seq,
			SenderID:       req.SenderID,
			Body:           req.Body,
			MediaRef:       req.MediaRef,
			ClientRef:      req.ClientRef,
			WasFree:        res.WasFree,
			CreatedAt:      at,
		}
		if !res.WasFree {
			msg.PointsCharged = p.cfg.Quota.MessageCost
		}
		if err := p.messages.WithTx(tx).Create(ctx, &msg); err != nil {
			return err
		}
		res.Message = msg

		if metered {
			left, err := p.quota.Remaining(ctx, tx, conv.ID, day)
			if err != nil {
				return err
			}
			res.FreeRemaining = left
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, svcErr.ErrQuotaExceeded) {
			log.Info("send blocked by quota", "day", day)
		}
		return SendResult{}, svcErr.Transient("send message", err)
	}

	if p.hub != nil {
		p.hub.PublishMessage(ctx, conv, res.Message)
	}

	if res.WasFree {
		log.Debug("message sent", "seq", res.Message.Seq, "free_remaining", res.FreeRemaining, logger.Since(start))
	} else {
		log.Info("paid message sent", "seq", res.Message.Seq, "cost", res.Message.PointsCharged, "balance", *res.Balance)
	}
	return res, nil
}

func validateSend(req *SendRequest) error {
	if req.ConversationID == 0 || req.SenderID == 0 {
		return svcErr.Validation("conversation and sender ids are required")
	}
	if strings.TrimSpace(req.Body) == "" {
		req.Body = ""
	}
	req.MediaRef = strings.TrimSpace(req.MediaRef)
	if req.Body == "" && req.MediaRef == "" {
		return svcErr.Validation("message needs a body or a media reference")
	}
	if utf8.RuneCountInString(req.Body) > MaxBodyRunes {
		return svcErr.Validation("message body exceeds %d characters", MaxBodyRunes)
	}
	if len(req.MediaRef) > MaxMediaRefLen {
		return svcErr.Validation("media reference exceeds %d bytes", MaxMediaRefLen)
	}
	if len(req.ClientRef) > MaxClientRefLen {
		return svcErr.Validation("client reference exceeds %d bytes", MaxClientRefLen)
	}
	return nil
}

// participantOf loads the conversation and checks userID belongs to it.
func (p *Pipeline) participantOf(ctx context.Context, conversationID, userID uint64) (db.Conversation, error) {
	conv, err := p.convs.Get(ctx, conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Conversation{}, svcErr.NotFound("conversation %d", conversationID)
	}
	if err != nil {
		return db.Conversation{}, svcErr.Transient("load conversation", err)
	}
	if !conv.HasParticipant(userID) {
		return db.Conversation{}, svcErr.Forbidden("user %d is not part of conversation %d", userID, conversationID)
	}
	return conv, nil
}
