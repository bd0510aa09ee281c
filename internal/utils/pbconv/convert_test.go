package pbconv_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/fanout"
	"github.com/oggyb/spark-core/internal/utils/pbconv"
)

func TestParseID(t *testing.T) {
	id, err := pbconv.ParseID("user_id", "42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := pbconv.ParseID("user_id", bad)
		require.Error(t, err, bad)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), bad)
		assert.Contains(t, err.Error(), "user_id")
	}
}

func TestEventConversion(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	conv := db.Conversation{ID: 3, Kind: db.KindIntro, UserLowID: 1, UserHighID: 2}
	msg := db.Message{ID: "m-1", ConversationID: 3, Seq: 9, SenderID: 2, Body: "hello", WasFree: true, CreatedAt: at}

	ev := pbconv.Event(fanout.MessageEvent(msg))
	assert.Equal(t, "message", ev.Kind)
	assert.Equal(t, int64(9), ev.Seq)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "2", ev.Message.SenderUserId)
	assert.Equal(t, at.UnixMilli(), ev.Message.CreatedAtUnixMilli)
	assert.Nil(t, ev.Summary)

	sum := pbconv.Event(fanout.SummaryEvent(conv, msg))
	require.NotNil(t, sum.Summary)
	assert.Equal(t, "hello", sum.Summary.Preview)
	assert.Equal(t, "intro", sum.Summary.Kind)
	assert.Nil(t, sum.Message)

	m := pbconv.Event(fanout.MatchEvent(db.Match{ID: 5, UserLowID: 1, UserHighID: 2, ConversationID: 3, CreatedAt: at}))
	require.NotNil(t, m.Match)
	assert.Equal(t, "1", m.Match.UserLowId)
	assert.Equal(t, uint64(3), m.Match.ConversationId)
}

func TestLedgerEntryConversion(t *testing.T) {
	conv := uint64(8)
	ref := "pay-9"
	out := pbconv.LedgerEntry(db.LedgerEntry{ID: "e", Delta: -10, Kind: db.EntrySpend, ConversationID: &conv})
	assert.Equal(t, uint64(8), out.ConversationId)
	assert.Empty(t, out.PaymentRef)
	assert.Zero(t, out.CreatedAtUnixMilli)

	out = pbconv.LedgerEntry(db.LedgerEntry{ID: "e", Delta: 15, Kind: db.EntryPurchase, PaymentRef: &ref})
	assert.Equal(t, "pay-9", out.PaymentRef)
	assert.Zero(t, out.ConversationId)
}

func TestMatchNil(t *testing.T) {
	assert.Nil(t, pbconv.Match(nil))
}
