// Package spark is the gRPC contract of the spark core: request and response
// messages, service interfaces, descriptors and clients, written in the shape
// protoc-gen-go-grpc produces.
//
// Messages travel as JSON. Protobuf messages sharing the server, such as the
// health service, keep their binary encoding through the same codec.
package spark

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content-subtype of the contract ("application/grpc+json").
const CodecName = "json"

// Codec marshals protobuf messages as protobuf and everything else as JSON.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("spark codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("spark codec: unmarshal %T: %w", v, err)
	}
	return nil
}

func init() {
	encoding.RegisterCodec(Codec{})
}
