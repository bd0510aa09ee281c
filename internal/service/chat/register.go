package chat

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/spark-core/internal/proto/spark"
)

// Registrar ties the ChatService into the gRPC server.
type Registrar struct {
	pipeline *Pipeline
}

func NewRegistrar(pipeline *Pipeline) *Registrar {
	return &Registrar{pipeline: pipeline}
}

// Register attaches the ChatService implementation to the gRPC server.
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterChatServiceServer(s, NewService(r.pipeline))
}
