package bank

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Codec encodes the messages of this package in proto3 wire format. It keeps the "proto"
// name so clients generated from bank.proto are served without any content-subtype change,
// and it hands real protobuf messages (health checks) to the protobuf runtime.
//
// Use it with grpc.ForceServerCodec on servers and grpc.ForceCodec on clients.
type Codec struct{}

// Name implements encoding.Codec.
func (Codec) Name() string {
	return "proto"
}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.appendWire(nil), nil
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("bank codec: cannot marshal %T", v)
	}
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case wireMessage:
		if err := m.unmarshalWire(data); err != nil {
			return fmt.Errorf("bank codec: unmarshal %T: %w", v, err)
		}
		return nil
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("bank codec: cannot unmarshal into %T", v)
	}
}
