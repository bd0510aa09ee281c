package ledger

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/spark-core/internal/proto/spark"
)

// Registrar ties the WalletService into the gRPC server.
type Registrar struct {
	store *Store
}

func NewRegistrar(store *Store) *Registrar {
	return &Registrar{store: store}
}

// Register attaches the WalletService implementation to the gRPC server.
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterWalletServiceServer(s, NewService(r.store))
}
