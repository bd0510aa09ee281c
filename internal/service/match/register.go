package match

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/spark-core/internal/proto/spark"
)

// Registrar ties the MatchService into the gRPC server.
type Registrar struct {
	engine *Engine
}

func NewRegistrar(engine *Engine) *Registrar {
	return &Registrar{engine: engine}
}

// Register attaches the MatchService implementation to the gRPC server.
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterMatchServiceServer(s, NewService(r.engine))
}
