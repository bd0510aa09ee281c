// Package pbconv converts between storage/fan-out types and the wire contract.
package pbconv

import (
	"strconv"
	"time"

	"github.com/oggyb/spark-core/internal/db"
	svcErr "github.com/oggyb/spark-core/internal/errors"
	"github.com/oggyb/spark-core/internal/fanout"
	pb "github.com/oggyb/spark-core/internal/proto/spark"
)

// ParseID parses a decimal user id. field names the request field in the
// InvalidArgument error.
func ParseID(field, value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(field + " must be a valid uint64")
	}
	return id, nil
}

func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func Match(m *db.Match) *pb.Match {
	if m == nil {
		return nil
	}
	return &pb.Match{
		MatchId:            m.ID,
		UserLowId:          FormatID(m.UserLowID),
		UserHighId:         FormatID(m.UserHighID),
		ConversationId:     m.ConversationID,
		CreatedAtUnixMilli: millis(m.CreatedAt),
	}
}

func Conversation(c db.Conversation) *pb.Conversation {
	out := &pb.Conversation{
		Id:         c.ID,
		Kind:       c.Kind,
		UserLowId:  FormatID(c.UserLowID),
		UserHighId: FormatID(c.UserHighID),
		LastSeq:    c.LastSeq,
	}
	if c.LastMessageAt != nil {
		out.LastMessageAtUnixMilli = c.LastMessageAt.UnixMilli()
	}
	return out
}

func Message(m db.Message) *pb.Message {
	return MessageView(fanout.NewMessageView(m))
}

func MessageView(v *fanout.MessageView) *pb.Message {
	if v == nil {
		return nil
	}
	return &pb.Message{
		Id:                 v.ID,
		ConversationId:     v.ConversationID,
		Seq:                v.Seq,
		SenderUserId:       FormatID(v.SenderID),
		Body:               v.Body,
		MediaRef:           v.MediaRef,
		ClientRef:          v.ClientRef,
		WasFree:            v.WasFree,
		PointsCharged:      v.PointsCharged,
		CreatedAtUnixMilli: millis(v.CreatedAt),
	}
}

func LedgerEntry(e db.LedgerEntry) *pb.LedgerEntry {
	out := &pb.LedgerEntry{
		Id:                 e.ID,
		Delta:              e.Delta,
		Kind:               e.Kind,
		Reason:             e.Reason,
		CreatedAtUnixMilli: millis(e.CreatedAt),
	}
	if e.ConversationID != nil {
		out.ConversationId = *e.ConversationID
	}
	if e.PaymentRef != nil {
		out.PaymentRef = *e.PaymentRef
	}
	return out
}

// Event converts a fan-out event. Recipients stay server-side.
func Event(ev fanout.Event) *pb.Event {
	out := &pb.Event{
		Kind:           string(ev.Kind),
		ConversationId: ev.ConversationID,
		Seq:            ev.Seq,
		Replayed:       ev.Replayed,
		Message:        MessageView(ev.Message),
	}
	if s := ev.Summary; s != nil {
		out.Summary = &pb.Summary{
			ConversationId:         s.ConversationID,
			Kind:                   s.Kind,
			LastSeq:                s.LastSeq,
			LastSenderUserId:       FormatID(s.LastSenderID),
			Preview:                s.Preview,
			LastMessageAtUnixMilli: millis(s.LastMessageAt),
		}
	}
	if m := ev.Match; m != nil {
		out.Match = &pb.Match{
			MatchId:            m.MatchID,
			UserLowId:          FormatID(m.UserLowID),
			UserHighId:         FormatID(m.UserHighID),
			ConversationId:     m.ConversationID,
			CreatedAtUnixMilli: millis(m.CreatedAt),
		}
	}
	return out
}
