package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/db/dbtest"
	"github.com/oggyb/spark-core/internal/repository"
)

func TestMatchCreateIfAbsentIsOrderIndependent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(dbtest.New(t))

	m1, created, err := repo.CreateIfAbsent(ctx, 7, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(3), m1.UserLowID)
	assert.Equal(t, uint64(7), m1.UserHighID)

	m2, created, err := repo.CreateIfAbsent(ctx, 3, 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m1.ID, m2.ID)

	n, err := repo.CountByPair(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestConversationGetOrCreateAndSequence(t *testing.T) {
	ctx := context.Background()
	dbase := dbtest.New(t)
	repo := repository.NewConversationRepository(dbase)

	conv, created, err := repo.GetOrCreate(ctx, 5, 2, db.KindIntro)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.GetOrCreate(ctx, 2, 5, db.KindIntro)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, again.ID)

	// a different kind is a different conversation
	other, created, err := repo.GetOrCreate(ctx, 2, 5, db.KindMatch)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, conv.ID, other.ID)

	base := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	// the third clock reading runs behind the second; the stamp must not
	clocks := []time.Time{base, base.Add(2 * time.Second), base.Add(time.Second)}
	wantAt := []time.Time{base, base.Add(2 * time.Second), base.Add(2 * time.Second)}
	for i, clk := range clocks {
		var (
			seq int64
			at  time.Time
		)
		err := dbase.Transaction(func(tx *gorm.DB) error {
			var err error
			seq, at, err = repo.WithTx(tx).NextSeq(ctx, conv.ID, func() time.Time { return clk })
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
		assert.True(t, wantAt[i].Equal(at), "seq %d stamped %v", seq, at)
	}

	stored, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.LastSeq)
	require.NotNil(t, stored.LastMessageAt)
	assert.True(t, base.Add(2*time.Second).Equal(*stored.LastMessageAt))

	_, _, err = repo.NextSeq(ctx, 9999, time.Now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReadMarkersNeverMoveBackwards(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewConversationRepository(dbtest.New(t))

	seq, err := repo.MarkRead(ctx, 1, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)

	seq, err = repo.MarkRead(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)

	seqs, err := repo.ReadSeqs(ctx, 10, []uint64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{1: 4}, seqs)
}

func TestMessagesAfterAndUnread(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMessageRepository(dbtest.New(t))

	for seq := int64(1); seq <= 4; seq++ {
		sender := uint64(1)
		if seq%2 == 0 {
			sender = 2
		}
		require.NoError(t, repo.Create(ctx, &db.Message{
			ID:             "m" + string(rune('0'+seq)),
			ConversationID: 1,
			Seq:            seq,
			SenderID:       sender,
			Body:           "hi",
			CreatedAt:      time.Now().UTC(),
		}))
	}

	msgs, err := repo.After(ctx, 1, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(2), msgs[0].Seq)
	assert.Equal(t, int64(4), msgs[2].Seq)

	msgs, err = repo.After(ctx, 1, 0, 2, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	latest, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(4), latest.Seq)

	// user 1 has read nothing; messages 2 and 4 came from user 2
	unread, err := repo.CountUnread(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	// duplicated sequence numbers are rejected by the unique index
	err = repo.Create(ctx, &db.Message{ID: "dup", ConversationID: 1, Seq: 4, SenderID: 1, CreatedAt: time.Now().UTC()})
	assert.Error(t, err)
}

func TestQuotaFreeSlotsAreBounded(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewQuotaRepository(dbtest.New(t))

	require.NoError(t, repo.Ensure(ctx, 1, "2026-10-17"))
	require.NoError(t, repo.Ensure(ctx, 1, "2026-10-17")) // idempotent

	for i := 0; i < 2; i++ {
		ok, err := repo.TryIncrementFree(ctx, 1, "2026-10-17", 2)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := repo.TryIncrementFree(ctx, 1, "2026-10-17", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.IncrementPaid(ctx, 1, "2026-10-17"))

	c, err := repo.Get(ctx, 1, "2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, 2, c.FreeCount)
	assert.Equal(t, 1, c.PaidCount)

	// a new day is a fresh key
	c, err = repo.Get(ctx, 1, "2026-10-18")
	require.NoError(t, err)
	assert.Zero(t, c.FreeCount)
}

func TestLedgerConditionalDecrement(t *testing.T) {
	ctx := context.Background()
	dbase := dbtest.New(t)
	repo := repository.NewLedgerRepository(dbase)

	require.NoError(t, repo.EnsureAccount(ctx, 1))
	require.NoError(t, repo.Increment(ctx, 1, 15))

	ok, err := repo.TryDecrement(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TryDecrement(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	bal, err := repo.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal.Balance)
	assert.Equal(t, int64(15), bal.TotalEarned)
	assert.Equal(t, int64(10), bal.TotalSpent)

	// unknown users read as zero
	bal, err = repo.Balance(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, bal.Balance)

	assert.ErrorIs(t, repo.Increment(ctx, 42, 5), gorm.ErrRecordNotFound)
}

func TestLedgerEntriesPaginationAndSum(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewLedgerRepository(dbtest.New(t))

	deltas := []int64{100, -10, -10, 25, -5}
	for _, d := range deltas {
		require.NoError(t, repo.AppendEntry(ctx, &db.LedgerEntry{
			UserID: 1, Delta: d, Kind: db.EntryBonus, Reason: "test",
		}))
	}

	sum, err := repo.SumEntries(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), sum)

	sum, err = repo.SumEntries(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, sum)

	var all []db.LedgerEntry
	var token *string
	for {
		page, next, err := repo.ListEntries(ctx, 1, token, 2)
		require.NoError(t, err)
		all = append(all, page...)
		if next == nil {
			break
		}
		token = next
	}
	require.Len(t, all, len(deltas))
	// newest first
	assert.Equal(t, int64(-5), all[0].Delta)
	assert.Equal(t, int64(100), all[len(all)-1].Delta)

	ref := "pay_123"
	require.NoError(t, repo.AppendEntry(ctx, &db.LedgerEntry{
		UserID: 1, Delta: 15, Kind: db.EntryPurchase, Reason: "purchase", PaymentRef: &ref,
	}))
	found, err := repo.FindByPaymentRef(ctx, ref)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(15), found.Delta)

	missing, err := repo.FindByPaymentRef(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
