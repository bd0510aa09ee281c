package fanout_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spark-core/internal/cache"
	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/fanout"
	"github.com/oggyb/spark-core/internal/logger"
)

// memStore is an in-memory MessageSource.
type memStore struct {
	mu   sync.Mutex
	msgs map[uint64][]db.Message
}

func newMemStore() *memStore {
	return &memStore{msgs: make(map[uint64][]db.Message)}
}

func (m *memStore) add(conv uint64) db.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := int64(len(m.msgs[conv]) + 1)
	msg := db.Message{
		ID:             fmt.Sprintf("m-%d-%d", conv, seq),
		ConversationID: conv,
		Seq:            seq,
		SenderID:       1,
		Body:           fmt.Sprintf("hello %d", seq),
		ClientRef:      fmt.Sprintf("c-%d", seq),
		CreatedAt:      time.Now().UTC(),
	}
	m.msgs[conv] = append(m.msgs[conv], msg)
	return msg
}

func (m *memStore) After(_ context.Context, conv uint64, afterSeq, upTo int64, limit int) ([]db.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Message
	for _, msg := range m.msgs[conv] {
		if msg.Seq <= afterSeq || (upTo > 0 && msg.Seq > upTo) {
			continue
		}
		out = append(out, msg)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var conv = db.Conversation{ID: 1, Kind: db.KindIntro, UserLowID: 1, UserHighID: 2}

func recv(t *testing.T, ch <-chan fanout.Event) fanout.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return fanout.Event{}
	}
}

func recvSeqs(t *testing.T, ch <-chan fanout.Event, n int) []int64 {
	t.Helper()
	seqs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		seqs = append(seqs, recv(t, ch).Seq)
	}
	return seqs
}

func TestReplayThenLive(t *testing.T) {
	store := newMemStore()
	hub := fanout.NewHub(store, 8, logger.Discard())
	for i := 0; i < 3; i++ {
		store.add(conv.ID)
	}

	since := int64(1)
	sub := hub.SubscribeConversation(context.Background(), conv.ID, 2, &since)
	defer sub.Close()

	ev := recv(t, sub.Events())
	assert.Equal(t, int64(2), ev.Seq)
	assert.True(t, ev.Replayed)
	assert.Equal(t, int64(3), recv(t, sub.Events()).Seq)

	// redeliveries of replayed messages are dropped
	hub.PublishMessage(context.Background(), conv, store.msgs[conv.ID][2])

	m4 := store.add(conv.ID)
	hub.PublishMessage(context.Background(), conv, m4)
	ev = recv(t, sub.Events())
	assert.Equal(t, int64(4), ev.Seq)
	assert.False(t, ev.Replayed)
	assert.Equal(t, "hello 4", ev.Message.Body)
}

func TestGapIsFilledFromStore(t *testing.T) {
	store := newMemStore()
	hub := fanout.NewHub(store, 8, logger.Discard())

	since := int64(0)
	sub := hub.SubscribeConversation(context.Background(), conv.ID, 2, &since)
	defer sub.Close()
	require.Eventually(t, func() bool { return hub.SubscriberCount(conv.ID) == 1 }, time.Second, 5*time.Millisecond)

	store.add(conv.ID)
	store.add(conv.ID)
	m3 := store.add(conv.ID)
	// only the last one is published live
	hub.PublishMessage(context.Background(), conv, m3)

	assert.Equal(t, []int64{1, 2, 3}, recvSeqs(t, sub.Events(), 3))
}

func TestLiveOnlyStartsAtFirstEvent(t *testing.T) {
	store := newMemStore()
	hub := fanout.NewHub(store, 8, logger.Discard())
	store.add(conv.ID)
	store.add(conv.ID)

	sub := hub.SubscribeConversation(context.Background(), conv.ID, 2, nil)
	defer sub.Close()

	m3 := store.add(conv.ID)
	hub.PublishMessage(context.Background(), conv, m3)
	assert.Equal(t, int64(3), recv(t, sub.Events()).Seq)
}

func TestSlowSubscriberCatchesUpInOrder(t *testing.T) {
	store := newMemStore()
	hub := fanout.NewHub(store, 1, logger.Discard())

	since := int64(0)
	sub := hub.SubscribeConversation(context.Background(), conv.ID, 2, &since)
	defer sub.Close()

	const total = 25
	for i := 0; i < total; i++ {
		m := store.add(conv.ID)
		hub.PublishMessage(context.Background(), conv, m)
	}

	seqs := recvSeqs(t, sub.Events(), total)
	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestLiveOnlyOverflowBeforeFirstEventIsNotLost(t *testing.T) {
	for run := 0; run < 200; run++ {
		store := newMemStore()
		hub := fanout.NewHub(store, 1, logger.Discard())
		sub := hub.SubscribeConversation(context.Background(), conv.ID, 2, nil)

		// the second publish overflows the one-slot buffer before the
		// subscription has seen any event
		hub.PublishMessage(context.Background(), conv, store.add(conv.ID))
		hub.PublishMessage(context.Background(), conv, store.add(conv.ID))

		require.Equal(t, []int64{1, 2}, recvSeqs(t, sub.Events(), 2), "run %d", run)
		sub.Close()
	}
}

func TestCloseEndsSubscription(t *testing.T) {
	hub := fanout.NewHub(newMemStore(), 8, logger.Discard())
	sub := hub.SubscribeConversation(context.Background(), conv.ID, 2, nil)
	require.Eventually(t, func() bool { return hub.SubscriberCount(conv.ID) == 1 }, time.Second, 5*time.Millisecond)

	sub.Close()
	sub.Close()
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount(conv.ID))
	assert.NoError(t, sub.Err())
}

func TestInboxReceivesSummariesAndMatches(t *testing.T) {
	store := newMemStore()
	hub := fanout.NewHub(store, 8, logger.Discard())

	inbox1 := hub.SubscribeInbox(1)
	defer inbox1.Close()
	inbox2 := hub.SubscribeInbox(2)
	defer inbox2.Close()
	other := hub.SubscribeInbox(3)
	defer other.Close()

	m := store.add(conv.ID)
	hub.PublishMessage(context.Background(), conv, m)
	// duplicate summary is suppressed
	hub.PublishMessage(context.Background(), conv, m)

	for _, in := range []*fanout.InboxSubscription{inbox1, inbox2} {
		ev := recv(t, in.Events())
		assert.Equal(t, fanout.EventSummary, ev.Kind)
		require.NotNil(t, ev.Summary)
		assert.Equal(t, "hello 1", ev.Summary.Preview)
		assert.Equal(t, int64(1), ev.Summary.LastSeq)
	}

	hub.PublishMatch(context.Background(), db.Match{ID: 5, UserLowID: 1, UserHighID: 2, ConversationID: 9})
	ev := recv(t, inbox1.Events())
	assert.Equal(t, fanout.EventMatch, ev.Kind)
	assert.Equal(t, uint64(9), ev.Match.ConversationID)
	ev = recv(t, inbox2.Events())
	assert.Equal(t, fanout.EventMatch, ev.Kind)

	assert.Len(t, other.Events(), 0)
}

func TestInboxDropsWhenFull(t *testing.T) {
	store := newMemStore()
	hub := fanout.NewHub(store, 1, logger.Discard())
	inbox := hub.SubscribeInbox(1)
	defer inbox.Close()

	for i := 0; i < 3; i++ {
		hub.PublishMessage(context.Background(), conv, store.add(conv.ID))
	}
	assert.Equal(t, int64(2), inbox.Dropped())
	assert.Equal(t, int64(1), recv(t, inbox.Events()).Seq)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "[media]", fanout.Preview(db.Message{MediaRef: "photos/1.jpg"}))
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'é'
	}
	p := []rune(fanout.Preview(db.Message{Body: string(long)}))
	assert.Len(t, p, 80)
}

func TestRedisBridgeRelaysBetweenHubs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mr := miniredis.RunT(t)
	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })

	// both instances read the same store
	store := newMemStore()
	hubA := fanout.NewHub(store, 8, logger.Discard())
	hubB := fanout.NewHub(store, 8, logger.Discard())
	bridgeA := fanout.NewRedisBridge(hubA, rc, "spark:test", logger.Discard())
	bridgeB := fanout.NewRedisBridge(hubB, rc, "spark:test", logger.Discard())

	errs := make(chan error, 2)
	go func() { errs <- bridgeA.Run(ctx) }()
	go func() { errs <- bridgeB.Run(ctx) }()
	<-bridgeA.Ready()
	<-bridgeB.Ready()

	since := int64(0)
	onA := hubA.SubscribeConversation(ctx, conv.ID, 1, &since)
	defer onA.Close()
	onB := hubB.SubscribeConversation(ctx, conv.ID, 2, &since)
	defer onB.Close()
	inboxB := hubB.SubscribeInbox(2)
	defer inboxB.Close()

	m := store.add(conv.ID)
	hubA.PublishMessage(ctx, conv, m)

	assert.Equal(t, int64(1), recv(t, onB.Events()).Seq)
	assert.Equal(t, fanout.EventSummary, recv(t, inboxB.Events()).Kind)
	assert.Equal(t, int64(1), recv(t, onA.Events()).Seq)

	// hubA ignores its own echo, so the next thing A sees is seq 2
	m2 := store.add(conv.ID)
	hubA.PublishMessage(ctx, conv, m2)
	assert.Equal(t, int64(2), recv(t, onA.Events()).Seq)

	cancel()
	for i := 0; i < 2; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestTimelineCollapsesOptimisticEcho(t *testing.T) {
	tl := fanout.NewTimeline()
	now := time.Now()

	tl.AddPending("c-1", 1, "hello 1", "", now)
	tl.AddPending("c-2", 1, "hello 2", "", now.Add(time.Millisecond))
	require.Len(t, tl.Items(), 2)

	store := newMemStore()
	m1 := store.add(conv.ID)

	// echo from the send call and the same message from the live stream
	assert.True(t, tl.Apply(fanout.NewMessageView(m1)))
	assert.False(t, tl.ApplyEvent(fanout.MessageEvent(m1)))

	items := tl.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Seq)
	assert.False(t, items[0].Pending)
	assert.True(t, items[1].Pending)
	assert.Equal(t, "c-2", items[1].ClientRef)
	assert.Equal(t, int64(1), tl.LastSeq())

	tl.Drop("c-2")
	assert.Len(t, tl.Items(), 1)
}
