package db

import (
	"time"
)

// Swipe actions.
const (
	ActionLike = "like"
	ActionPass = "pass"
)

// Conversation kinds. Both share message and fan-out mechanics; only intro
// conversations are metered by the daily quota.
const (
	KindMatch = "match"
	KindIntro = "intro"
)

// Ledger entry kinds.
const (
	EntryPurchase = "purchase"
	EntrySpend    = "spend"
	EntryRefund   = "refund"
	EntryBonus    = "bonus"
)

// User table. The core only needs the identifier; profile data belongs to
// the profile service and is kept here for seeding and local development.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Active       bool      `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Swipe is the current decision of an actor about a target.
//
// Composite PK: (ActorID, TargetID)
//   - One current row per pair, later swipes overwrite Action.
//
// Indexes:
//   - idx_target_action_updated_actor(target_id, action, updated_at DESC, actor_id)
//     Serves "who liked me" lists with pagination.
//   - idx_actor_target_action(actor_id, target_id, action)
//     Serves the reciprocal-like lookup during match checks.
type Swipe struct {
	ActorID   uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_actor_target_action,priority:1"`
	TargetID  uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_target_action_updated_actor,priority:1;index:idx_actor_target_action,priority:2"`
	Action    string    `gorm:"size:8;not null;index:idx_target_action_updated_actor,priority:2;index:idx_actor_target_action,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_target_action_updated_actor,priority:3,sort:desc"`
}

// SwipeEvent is the append-only audit history of every swipe ever submitted.
type SwipeEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ActorID   uint64    `gorm:"not null;index:idx_swipe_event_pair,priority:1"`
	TargetID  uint64    `gorm:"not null;index:idx_swipe_event_pair,priority:2"`
	Action    string    `gorm:"size:8;not null"`
	Paid      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Match is an immutable mutual like. The canonical pair (UserLowID < UserHighID)
// carries a unique index, which is the serialization point for match creation.
type Match struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	UserLowID      uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1"`
	UserHighID     uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index"`
	ConversationID uint64    `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// Conversation between two users of a given kind. LastSeq is the last
// sequence number handed out; bumping it row-locks the conversation for the
// rest of the sending transaction.
type Conversation struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement"`
	Kind          string     `gorm:"size:16;not null;uniqueIndex:idx_conversation_pair_kind,priority:3"`
	UserLowID     uint64     `gorm:"not null;uniqueIndex:idx_conversation_pair_kind,priority:1"`
	UserHighID    uint64     `gorm:"not null;uniqueIndex:idx_conversation_pair_kind,priority:2;index"`
	LastSeq       int64      `gorm:"not null;default:0"`
	LastMessageAt *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c Conversation) HasParticipant(userID uint64) bool {
	return userID != 0 && (c.UserLowID == userID || c.UserHighID == userID)
}

// Peer returns the other party of the conversation.
func (c Conversation) Peer(userID uint64) uint64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// Participants returns both parties, low id first.
func (c Conversation) Participants() [2]uint64 {
	return [2]uint64{c.UserLowID, c.UserHighID}
}

// ReadMarker stores how far a participant has read a conversation.
type ReadMarker struct {
	ConversationID uint64    `gorm:"primaryKey;autoIncrement:false"`
	UserID         uint64    `gorm:"primaryKey;autoIncrement:false"`
	ReadSeq        int64     `gorm:"not null;default:0"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Message is immutable once persisted. (ConversationID, Seq) is unique and is
// the identity clients de-duplicate on.
type Message struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ConversationID uint64    `gorm:"not null;uniqueIndex:idx_message_conversation_seq,priority:1"`
	Seq            int64     `gorm:"not null;uniqueIndex:idx_message_conversation_seq,priority:2"`
	SenderID       uint64    `gorm:"not null;index"`
	Body           string    `gorm:"type:text"`
	MediaRef       string    `gorm:"size:512"`
	ClientRef      string    `gorm:"size:64"`
	WasFree        bool      `gorm:"not null"`
	PointsCharged  int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
}

// QuotaCounter counts free and paid messages of one conversation on one day.
// Rows are created lazily; a new day is simply a new key.
type QuotaCounter struct {
	ConversationID uint64    `gorm:"primaryKey;autoIncrement:false"`
	Day            string    `gorm:"primaryKey;size:10"`
	FreeCount      int       `gorm:"not null;default:0"`
	PaidCount      int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// LedgerBalance is the spendable point total of a user. Balance always equals
// the sum of the user's LedgerEntry deltas.
type LedgerBalance struct {
	UserID      uint64    `gorm:"primaryKey;autoIncrement:false"`
	Balance     int64     `gorm:"not null;default:0;check:chk_ledger_balance_non_negative,balance >= 0"`
	TotalEarned int64     `gorm:"not null;default:0"`
	TotalSpent  int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// LedgerEntry is one append-only balance movement. Delta is positive for
// credits and negative for debits.
type LedgerEntry struct {
	ID             string    `gorm:"primaryKey;size:36"`
	UserID         uint64    `gorm:"not null;index:idx_ledger_user_created,priority:1"`
	Delta          int64     `gorm:"not null"`
	Kind           string    `gorm:"size:16;not null"`
	Reason         string    `gorm:"size:64;not null"`
	ConversationID *uint64   `gorm:"index"`
	PaymentRef     *string   `gorm:"size:128;uniqueIndex"`
	CreatedAt      time.Time `gorm:"not null;index:idx_ledger_user_created,priority:2"`
}

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Swipe{},
		&SwipeEvent{},
		&Match{},
		&Conversation{},
		&ReadMarker{},
		&Message{},
		&QuotaCounter{},
		&LedgerBalance{},
		&LedgerEntry{},
	}
}
