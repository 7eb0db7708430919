/**
 * Copyright 2024 OpenStream Engineering.
 * All rights reserved.
 */

package schemaregistry

import (
	"fmt"
	"strings"

	"github.com/tryfix/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

type protoSchema struct {
	raw string
}

func (s *protoSchema) Format() Format { return Protobuf }

func (s *protoSchema) Canonical() string { return strings.TrimSpace(s.raw) }

// ProtoMarshaller encodes and decodes protobuf messages. Payloads are
// wrapped in an anypb.Any so they stay self describing and the generic
// decode path can recover the concrete message type from the global proto
// registry. The schema text itself is not compiled, generated Go types
// already carry their descriptors.
type ProtoMarshaller struct{}

func NewProtoMarshaller() *ProtoMarshaller {
	return &ProtoMarshaller{}
}

func (m *ProtoMarshaller) Parse(schema string) (CompiledSchema, error) {
	if strings.TrimSpace(schema) == `` {
		return nil, &SchemaParseError{Format: Protobuf, Err: errors.New(`empty protobuf schema`)}
	}

	return &protoSchema{raw: schema}, nil
}

func (m *ProtoMarshaller) Marshall(schema CompiledSchema, v interface{}) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, errors.New(fmt.Sprintf(`protobuf marshaller requires a proto.Message, got %T`, v))
	}

	anyPB, err := anypb.New(msg)
	if err != nil {
		return nil, errors.WithPrevious(err, `failed to add message into anypb`)
	}

	value, err := proto.Marshal(anyPB)
	if err != nil {
		return nil, errors.WithPrevious(err, `failed to marshal anypb wrapper`)
	}

	return value, nil
}

func (m *ProtoMarshaller) NewUnmarshaler(schema CompiledSchema, data []byte) Unmarshaler {
	return &ProtoUnmarshaler{data: data}
}

type ProtoUnmarshaler struct {
	data []byte
}

func (u *ProtoUnmarshaler) Unmarshal(in interface{}) error {
	wrapper := &anypb.Any{}
	if err := proto.Unmarshal(u.data, wrapper); err != nil {
		return errors.WithPrevious(err, `failed to unmarshal anypb wrapper`)
	}

	switch target := in.(type) {
	case proto.Message:
		if err := anypb.UnmarshalTo(wrapper, target, proto.UnmarshalOptions{}); err != nil {
			return errors.WithPrevious(err, `failed to unmarshal anypb`)
		}
		return nil
	case *interface{}:
		msg, err := wrapper.UnmarshalNew()
		if err != nil {
			return errors.WithPrevious(err, `failed to unmarshal anypb into a registered type`)
		}
		*target = msg
		return nil
	default:
		return errors.New(fmt.Sprintf(`protobuf unmarshaler requires a proto.Message or *interface{}, got %T`, in))
	}
}
