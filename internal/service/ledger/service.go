package ledger

import (
	"context"

	svcErr "github.com/oggyb/spark-core/internal/errors"
	pb "github.com/oggyb/spark-core/internal/proto/spark"
	"github.com/oggyb/spark-core/internal/utils/pbconv"
)

// Service implements the WalletService gRPC API on top of the Store.
// Credit and PurchasePackage are meant for the payment-confirmation
// collaborator, not for end users.
type Service struct {
	store *Store

	pb.UnimplementedWalletServiceServer
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetBalance(ctx context.Context, req *pb.GetBalanceRequest) (*pb.GetBalanceResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	bal, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.GetBalanceResponse{
		Balance:     bal.Balance,
		TotalEarned: bal.TotalEarned,
		TotalSpent:  bal.TotalSpent,
	}, nil
}

// Credit adds points. Replaying a payment_ref returns the original entry.
func (s *Service) Credit(ctx context.Context, req *pb.CreditRequest) (*pb.CreditResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	res, err := s.store.Credit(ctx, userID, req.Amount, req.Kind, req.Reason, req.PaymentRef)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return creditResponse(res), nil
}

// PurchasePackage credits a configured point package.
func (s *Service) PurchasePackage(ctx context.Context, req *pb.PurchasePackageRequest) (*pb.CreditResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	res, err := s.store.PurchasePackage(ctx, userID, req.PackageId, req.PaymentRef)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return creditResponse(res), nil
}

// ListEntries pages through the ledger history, newest first.
func (s *Service) ListEntries(ctx context.Context, req *pb.ListEntriesRequest) (*pb.ListEntriesResponse, error) {
	userID, err := pbconv.ParseID("user_id", req.GetUserId())
	if err != nil {
		return nil, err
	}
	entries, next, err := s.store.ListEntries(ctx, userID, req.PaginationToken, int(req.Limit))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &pb.ListEntriesResponse{
		Entries:             make([]*pb.LedgerEntry, 0, len(entries)),
		NextPaginationToken: next,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, pbconv.LedgerEntry(e))
	}
	return resp, nil
}

func creditResponse(res Result) *pb.CreditResponse {
	return &pb.CreditResponse{
		Entry:     pbconv.LedgerEntry(res.Entry),
		Balance:   res.Balance,
		Duplicate: res.Duplicate,
	}
}
