package chat

import (
	"context"

	svcErr "github.com/oggyb/spark-core/internal/errors"
	pb "github.com/oggyb/spark-core/internal/proto/spark"
	"github.com/oggyb/spark-core/internal/service/quota"
	"github.com/oggyb/spark-core/internal/utils/pbconv"
)

// Service implements the ChatService gRPC API on top of the Pipeline.
type Service struct {
	pipeline *Pipeline

	pb.UnimplementedChatServiceServer
}

func NewService(pipeline *Pipeline) *Service {
	return &Service{pipeline: pipeline}
}

// OpenConversation returns or creates the conversation between two users.
func (s *Service) OpenConversation(ctx context.Context, req *pb.OpenConversationRequest) (*pb.OpenConversationResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	peerID, err := pbconv.ParseID("peer_user_id", req.GetPeerUserId())
	if err != nil {
		return nil, err
	}
	conv, created, err := s.pipeline.OpenConversation(ctx, userID, peerID, req.GetKind())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.OpenConversationResponse{Conversation: pbconv.Conversation(conv), Created: created}, nil
}

// SendMessage persists a message, charging the sender once the daily free
// allowance of an intro conversation is used up.
//
// Example:
//
//	svc.SendMessage(ctx, &pb.SendMessageRequest{ConversationId: 7, SenderUserId: "1", Body: "hi"})
func (s *Service) SendMessage(ctx context.Context, req *pb.SendMessageRequest) (*pb.SendMessageResponse, error) {
	senderID, err := pbconv.ParseID("sender_user_id", req.GetSenderUserId())
	if err != nil {
		return nil, err
	}
	res, err := s.pipeline.SendMessage(ctx, SendRequest{
		ConversationID: req.GetConversationId(),
		SenderID:       senderID,
		Body:           req.Body,
		MediaRef:       req.MediaRef,
		ClientRef:      req.ClientRef,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.SendMessageResponse{
		Message:       pbconv.Message(res.Message),
		WasFree:       res.WasFree,
		FreeRemaining: int32(res.FreeRemaining),
		Balance:       res.Balance,
	}, nil
}

// ListMessages pages through history in sequence order.
func (s *Service) ListMessages(ctx context.Context, req *pb.ListMessagesRequest) (*pb.ListMessagesResponse, error) {
	viewerID, err := pbconv.ParseID("viewer_user_id", req.GetViewerUserId())
	if err != nil {
		return nil, err
	}
	msgs, err := s.pipeline.ListMessages(ctx, req.ConversationId, viewerID, req.AfterSeq, int(req.Limit))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.ListMessagesResponse{Messages: make([]*pb.Message, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, pbconv.Message(m))
	}
	return resp, nil
}

func (s *Service) MarkRead(ctx context.Context, req *pb.MarkReadRequest) (*pb.MarkReadResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	readSeq, err := s.pipeline.MarkRead(ctx, req.ConversationId, userID, req.Seq)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.MarkReadResponse{ReadSeq: readSeq}, nil
}

func (s *Service) ListConversations(ctx context.Context, req *pb.ListConversationsRequest) (*pb.ListConversationsResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	summaries, err := s.pipeline.ListConversations(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.ListConversationsResponse{Conversations: make([]*pb.ConversationSummary, 0, len(summaries))}
	for _, sum := range summaries {
		out := &pb.ConversationSummary{
			Conversation: pbconv.Conversation(sum.Conversation),
			PeerUserId:   pbconv.FormatID(sum.PeerID),
			ReadSeq:      sum.ReadSeq,
			Unread:       sum.Unread,
		}
		if sum.LastMessage != nil {
			out.LastMessage = pbconv.Message(*sum.LastMessage)
		}
		resp.Conversations = append(resp.Conversations, out)
	}
	return resp, nil
}

// GetQuota reports today's free-message counters for a conversation.
func (s *Service) GetQuota(ctx context.Context, req *pb.GetQuotaRequest) (*pb.GetQuotaResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	st, err := s.pipeline.QuotaStatus(ctx, req.ConversationId, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return quotaResponse(st), nil
}

// SubscribeConversation streams messages of one conversation in sequence
// order until the client goes away.
func (s *Service) SubscribeConversation(req *pb.SubscribeConversationRequest, stream pb.ChatService_SubscribeConversationServer) error {
	viewerID, err := pbconv.ParseID("viewer_user_id", req.GetViewerUserId())
	if err != nil {
		return err
	}
	ctx := stream.Context()
	sub, err := s.pipeline.Subscribe(ctx, req.ConversationId, viewerID, req.SinceSeq)
	if err != nil {
		return svcErr.Map(err)
	}
	defer sub.Close()

	for ev := range sub.Events() {
		if err := stream.Send(pbconv.Event(ev)); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return svcErr.Map(svcErr.Transient("conversation stream", sub.Err()))
}

// SubscribeInbox streams conversation summaries and new matches for a user.
func (s *Service) SubscribeInbox(req *pb.SubscribeInboxRequest, stream pb.ChatService_SubscribeInboxServer) error {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return err
	}
	sub, err := s.pipeline.SubscribeInbox(userID)
	if err != nil {
		return svcErr.Map(err)
	}
	defer func() {
		sub.Close()
		if n := sub.Dropped(); n > 0 {
			s.pipeline.log.Info("inbox stream closed with drops", "user", userID, "dropped", n)
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.Send(pbconv.Event(ev)); err != nil {
				return err
			}
		}
	}
}

func quotaResponse(st quota.Status) *pb.GetQuotaResponse {
	return &pb.GetQuotaResponse{
		Day:           st.Day,
		FreeUsed:      int32(st.FreeUsed),
		Paid:          int32(st.Paid),
		FreeRemaining: int32(st.FreeRemaining),
		Limit:         int32(st.Limit),
	}
}
