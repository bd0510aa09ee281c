package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/spark-core/internal/app"
	"github.com/oggyb/spark-core/internal/cache"
	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db/dbtest"
	"github.com/oggyb/spark-core/internal/fanout"
	"github.com/oggyb/spark-core/internal/logger"
	pb "github.com/oggyb/spark-core/internal/proto/spark"
	"github.com/oggyb/spark-core/internal/repository"
	"github.com/oggyb/spark-core/internal/server"
	"github.com/oggyb/spark-core/internal/service/chat"
	"github.com/oggyb/spark-core/internal/service/ledger"
	"github.com/oggyb/spark-core/internal/service/match"
	"github.com/oggyb/spark-core/internal/service/quota"
)

type clients struct {
	match  pb.MatchServiceClient
	chat   pb.ChatServiceClient
	wallet pb.WalletServiceClient
	health healthpb.HealthClient
	hub    *fanout.Hub
}

// startServer wires every service over SQLite and miniredis and serves them
// on an in-memory listener.
func startServer(t *testing.T) *clients {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })

	database := dbtest.New(t)
	log := logger.Discard()
	appCtx := app.New(database, rc, log, cfg)

	store := ledger.NewStore(appCtx)
	hub := fanout.NewHub(repository.NewMessageRepository(database), cfg.Fanout.Buffer, log)
	engine := match.NewEngine(appCtx, store, hub)
	pipeline := chat.NewPipeline(appCtx, quota.NewTracker(appCtx), store, hub)

	srv := server.NewServer(cfg, log,
		match.NewRegistrar(engine),
		chat.NewRegistrar(pipeline),
		ledger.NewRegistrar(store),
	)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &clients{
		match:  pb.NewMatchServiceClient(conn),
		chat:   pb.NewChatServiceClient(conn),
		wallet: pb.NewWalletServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
		hub:    hub,
	}
}

func TestHealth(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	for _, name := range []string{"", "spark.MatchService", "spark.ChatService", "spark.WalletService"} {
		resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err, name)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus(), name)
	}
}

func TestMatchThenChat(t *testing.T) {
	c := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inbox, err := c.chat.SubscribeInbox(ctx, &pb.SubscribeInboxRequest{UserId: "1"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.hub.InboxCount(1) == 1 }, 2*time.Second, 10*time.Millisecond)

	first, err := c.match.SubmitSwipe(ctx, &pb.SubmitSwipeRequest{ActorUserId: "1", TargetUserId: "2", Action: "like"})
	require.NoError(t, err)
	assert.Equal(t, "recorded", first.Outcome)
	assert.Nil(t, first.Match)

	second, err := c.match.SubmitSwipe(ctx, &pb.SubmitSwipeRequest{ActorUserId: "2", TargetUserId: "1", Action: "like"})
	require.NoError(t, err)
	assert.Equal(t, "matched", second.Outcome)
	require.NotNil(t, second.Match)
	convID := second.Match.ConversationId
	require.NotZero(t, convID)

	ev, err := inbox.Recv()
	require.NoError(t, err)
	assert.Equal(t, "match", ev.Kind)
	require.NotNil(t, ev.Match)
	assert.Equal(t, second.Match.MatchId, ev.Match.MatchId)

	again, err := c.match.SubmitSwipe(ctx, &pb.SubmitSwipeRequest{ActorUserId: "1", TargetUserId: "2", Action: "like"})
	require.NoError(t, err)
	assert.Equal(t, "already_matched", again.Outcome)

	zero := int64(0)
	stream, err := c.chat.SubscribeConversation(ctx, &pb.SubscribeConversationRequest{
		ConversationId: convID,
		ViewerUserId:   "2",
		SinceSeq:       &zero,
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.hub.SubscriberCount(convID) == 1 }, 2*time.Second, 10*time.Millisecond)

	sent, err := c.chat.SendMessage(ctx, &pb.SendMessageRequest{
		ConversationId: convID,
		SenderUserId:   "1",
		Body:           "hey there",
		ClientRef:      "c-1",
	})
	require.NoError(t, err)
	assert.True(t, sent.WasFree)
	assert.Equal(t, int32(chat.Unmetered), sent.FreeRemaining)
	assert.Nil(t, sent.Balance)
	assert.Equal(t, int64(1), sent.Message.Seq)

	got, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "message", got.Kind)
	require.NotNil(t, got.Message)
	assert.Equal(t, "hey there", got.Message.Body)
	assert.Equal(t, "c-1", got.Message.ClientRef)
	assert.Equal(t, "1", got.Message.SenderUserId)

	summary, err := inbox.Recv()
	require.NoError(t, err)
	assert.Equal(t, "summary", summary.Kind)
	require.NotNil(t, summary.Summary)
	assert.Equal(t, "hey there", summary.Summary.Preview)

	list, err := c.chat.ListConversations(ctx, &pb.ListConversationsRequest{UserId: "2"})
	require.NoError(t, err)
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, int64(1), list.Conversations[0].Unread)
	assert.Equal(t, "1", list.Conversations[0].PeerUserId)

	read, err := c.chat.MarkRead(ctx, &pb.MarkReadRequest{ConversationId: convID, UserId: "2", Seq: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), read.ReadSeq)

	count, err := c.match.CountLikedYou(ctx, &pb.CountLikedYouRequest{RecipientUserId: "1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count.Count)
}

func TestIntroQuotaOverGRPC(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	open, err := c.chat.OpenConversation(ctx, &pb.OpenConversationRequest{UserId: "1", PeerUserId: "3", Kind: "intro"})
	require.NoError(t, err)
	assert.True(t, open.Created)
	convID := open.Conversation.Id

	for i := 0; i < 5; i++ {
		resp, err := c.chat.SendMessage(ctx, &pb.SendMessageRequest{ConversationId: convID, SenderUserId: "1", Body: "hi"})
		require.NoError(t, err)
		assert.True(t, resp.WasFree)
		assert.Equal(t, int32(4-i), resp.FreeRemaining)
	}

	_, err = c.chat.SendMessage(ctx, &pb.SendMessageRequest{ConversationId: convID, SenderUserId: "3", Body: "hello?"})
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.ResourceExhausted, st.Code())
	assert.Equal(t, "quota_exceeded", st.Message())

	credit, err := c.wallet.PurchasePackage(ctx, &pb.PurchasePackageRequest{UserId: "3", PackageId: "starter", PaymentRef: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(15), credit.Balance)

	replay, err := c.wallet.PurchasePackage(ctx, &pb.PurchasePackageRequest{UserId: "3", PackageId: "starter", PaymentRef: "pay-1"})
	require.NoError(t, err)
	assert.True(t, replay.Duplicate)
	assert.Equal(t, int64(15), replay.Balance)

	paid, err := c.chat.SendMessage(ctx, &pb.SendMessageRequest{ConversationId: convID, SenderUserId: "3", Body: "hello?"})
	require.NoError(t, err)
	assert.False(t, paid.WasFree)
	require.NotNil(t, paid.Balance)
	assert.Equal(t, int64(5), *paid.Balance)
	assert.Equal(t, int64(10), paid.Message.PointsCharged)

	q, err := c.chat.GetQuota(ctx, &pb.GetQuotaRequest{ConversationId: convID, UserId: "1"})
	require.NoError(t, err)
	assert.Equal(t, int32(5), q.FreeUsed)
	assert.Equal(t, int32(1), q.Paid)
	assert.Equal(t, int32(0), q.FreeRemaining)

	entries, err := c.wallet.ListEntries(ctx, &pb.ListEntriesRequest{UserId: "3"})
	require.NoError(t, err)
	require.Len(t, entries.Entries, 2)
	assert.Equal(t, int64(-10), entries.Entries[0].Delta)
	assert.Equal(t, convID, entries.Entries[0].ConversationId)
	assert.Equal(t, int64(15), entries.Entries[1].Delta)

	bal, err := c.wallet.GetBalance(ctx, &pb.GetBalanceRequest{UserId: "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), bal.Balance)
	assert.Equal(t, int64(15), bal.TotalEarned)
	assert.Equal(t, int64(10), bal.TotalSpent)
}

func TestErrorMapping(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"malformed id", func() error {
			_, err := c.match.SubmitSwipe(ctx, &pb.SubmitSwipeRequest{ActorUserId: "abc", TargetUserId: "2", Action: "like"})
			return err
		}, codes.InvalidArgument},
		{"self swipe", func() error {
			_, err := c.match.SubmitSwipe(ctx, &pb.SubmitSwipeRequest{ActorUserId: "2", TargetUserId: "2", Action: "like"})
			return err
		}, codes.InvalidArgument},
		{"crush without points", func() error {
			_, err := c.match.SendCrush(ctx, &pb.SendCrushRequest{ActorUserId: "1", TargetUserId: "2"})
			return err
		}, codes.FailedPrecondition},
		{"match conversation without match", func() error {
			_, err := c.chat.OpenConversation(ctx, &pb.OpenConversationRequest{UserId: "1", PeerUserId: "2", Kind: "match"})
			return err
		}, codes.PermissionDenied},
		{"unknown conversation", func() error {
			_, err := c.chat.SendMessage(ctx, &pb.SendMessageRequest{ConversationId: 999, SenderUserId: "1", Body: "x"})
			return err
		}, codes.NotFound},
		{"bad page token", func() error {
			token := "%%%"
			_, err := c.wallet.ListEntries(ctx, &pb.ListEntriesRequest{UserId: "1", PaginationToken: &token})
			return err
		}, codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestListMatchesAndLikers(t *testing.T) {
	c := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	before := time.Now().UnixMilli()
	for _, s := range []*pb.SubmitSwipeRequest{
		{ActorUserId: "1", TargetUserId: "2", Action: "like"},
		{ActorUserId: "2", TargetUserId: "1", Action: "like"},
		{ActorUserId: "3", TargetUserId: "1", Action: "like"},
		{ActorUserId: "1", TargetUserId: "3", Action: "like"},
		{ActorUserId: "4", TargetUserId: "1", Action: "like"},
	} {
		_, err := c.match.SubmitSwipe(ctx, s)
		require.NoError(t, err)
	}

	resp, err := c.match.ListMatches(ctx, &pb.ListMatchesRequest{UserId: "1"})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	peers := make([]string, 0, 2)
	for _, m := range resp.Matches {
		assert.Equal(t, "1", m.UserLowId)
		assert.NotZero(t, m.ConversationId)
		peers = append(peers, m.UserHighId)
	}
	assert.ElementsMatch(t, []string{"2", "3"}, peers)

	none, err := c.match.ListMatches(ctx, &pb.ListMatchesRequest{UserId: "4"})
	require.NoError(t, err)
	assert.Empty(t, none.Matches)

	_, err = c.match.ListMatches(ctx, &pb.ListMatchesRequest{UserId: "abc"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	likers, err := c.match.ListNewLikedYou(ctx, &pb.ListLikedYouRequest{RecipientUserId: "1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, likers.Likers, 1)
	assert.Equal(t, "4", likers.Likers[0].ActorId)
	assert.GreaterOrEqual(t, int64(likers.Likers[0].LikedAtUnixMilli), before-1000)
	assert.LessOrEqual(t, int64(likers.Likers[0].LikedAtUnixMilli), time.Now().UnixMilli()+1000)
}
