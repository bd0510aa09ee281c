package server

import "google.golang.org/grpc"

// Registrar is a common interface for all gRPC service registrars.
// Each service package exposes one wrapping its already-wired dependencies.
type Registrar interface {
	Register(s *grpc.Server)
}
