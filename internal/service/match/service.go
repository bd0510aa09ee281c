package match

import (
	"context"

	svcErr "github.com/oggyb/spark-core/internal/errors"
	pb "github.com/oggyb/spark-core/internal/proto/spark"
	"github.com/oggyb/spark-core/internal/utils/pbconv"
)

// Service implements the MatchService gRPC API on top of the Engine.
// Each method parses ids, calls the engine and maps domain errors to
// status codes.
type Service struct {
	engine *Engine

	pb.UnimplementedMatchServiceServer
}

func NewService(engine *Engine) *Service {
	return &Service{engine: engine}
}

// SubmitSwipe records a like or pass.
//
// Example:
//
//	svc.SubmitSwipe(ctx, &pb.SubmitSwipeRequest{ActorUserId: "1", TargetUserId: "2", Action: "like"})
func (s *Service) SubmitSwipe(ctx context.Context, req *pb.SubmitSwipeRequest) (*pb.SubmitSwipeResponse, error) {
	actorID, err := pbconv.ParseID("actor_user_id", req.GetActorUserId())
	if err != nil {
		return nil, err
	}
	targetID, err := pbconv.ParseID("target_user_id", req.GetTargetUserId())
	if err != nil {
		return nil, err
	}

	res, err := s.engine.SubmitSwipe(ctx, actorID, targetID, req.GetAction())
	if err != nil {
		s.engine.logFor(ctx).Debug("SubmitSwipe failed", "actor", actorID, "target", targetID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.SubmitSwipeResponse{Outcome: string(res.Outcome), Match: pbconv.Match(res.Match)}, nil
}

// SendCrush debits the crush cost and records a like.
func (s *Service) SendCrush(ctx context.Context, req *pb.SendCrushRequest) (*pb.SendCrushResponse, error) {
	actorID, err := pbconv.ParseID("actor_user_id", req.GetActorUserId())
	if err != nil {
		return nil, err
	}
	targetID, err := pbconv.ParseID("target_user_id", req.GetTargetUserId())
	if err != nil {
		return nil, err
	}

	res, err := s.engine.SendCrush(ctx, actorID, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.SendCrushResponse{
		Outcome: string(res.Outcome),
		Match:   pbconv.Match(res.Match),
		Balance: res.Balance,
	}, nil
}

// ListLikedYou returns users who liked the recipient, excluding passed ones.
func (s *Service) ListLikedYou(ctx context.Context, req *pb.ListLikedYouRequest) (*pb.ListLikedYouResponse, error) {
	recipientID, err := pbconv.ParseID("recipient_user_id", req.GetRecipientUserId())
	if err != nil {
		return nil, err
	}
	likers, next, err := s.engine.ListLikedYou(ctx, recipientID, req.PaginationToken, int(req.GetLimit()))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return likersResponse(likers, next), nil
}

// ListNewLikedYou is ListLikedYou without users the recipient liked back.
func (s *Service) ListNewLikedYou(ctx context.Context, req *pb.ListLikedYouRequest) (*pb.ListLikedYouResponse, error) {
	recipientID, err := pbconv.ParseID("recipient_user_id", req.GetRecipientUserId())
	if err != nil {
		return nil, err
	}
	likers, next, err := s.engine.ListNewLikedYou(ctx, recipientID, req.PaginationToken, int(req.GetLimit()))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return likersResponse(likers, next), nil
}

// CountLikedYou returns the cached liker count.
func (s *Service) CountLikedYou(ctx context.Context, req *pb.CountLikedYouRequest) (*pb.CountLikedYouResponse, error) {
	recipientID, err := pbconv.ParseID("recipient_user_id", req.GetRecipientUserId())
	if err != nil {
		return nil, err
	}
	n, err := s.engine.CountLikedYou(ctx, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountLikedYouResponse{Count: uint64(n)}, nil
}

// ListMatches returns the user's matches, newest first.
func (s *Service) ListMatches(ctx context.Context, req *pb.ListMatchesRequest) (*pb.ListMatchesResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	matches, err := s.engine.ListMatches(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.ListMatchesResponse{Matches: make([]*pb.Match, 0, len(matches))}
	for i := range matches {
		resp.Matches = append(resp.Matches, pbconv.Match(&matches[i]))
	}
	return resp, nil
}

func likersResponse(likers []Liker, next *string) *pb.ListLikedYouResponse {
	resp := &pb.ListLikedYouResponse{Likers: make([]*pb.ListLikedYouResponse_Liker, 0, len(likers))}
	for _, l := range likers {
		resp.Likers = append(resp.Likers, &pb.ListLikedYouResponse_Liker{
			ActorId:          pbconv.FormatID(l.ActorID),
			LikedAtUnixMilli: uint64(l.LikedAt.UnixMilli()),
		})
	}
	resp.NextPaginationToken = next
	return resp
}
