/**
 * Copyright 2024 OpenStream Engineering.
 * All rights reserved.
 */

package schemaregistry

// Marshaller abstracts one serialization format. Implementations are
// stateless, the parsed schema travels with every call so a single
// Marshaller instance serves every subject of its format.
type Marshaller interface {
	// Parse compiles a raw schema definition. It fails with a
	// SchemaParseError if the definition is invalid for the format.
	Parse(schema string) (CompiledSchema, error)

	// Marshall encodes a value under the given compiled schema.
	Marshall(schema CompiledSchema, v interface{}) ([]byte, error)

	// NewUnmarshaler wraps an encoded payload for decoding under the given
	// compiled schema.
	NewUnmarshaler(schema CompiledSchema, data []byte) Unmarshaler
}

// Unmarshaler decodes a single payload. Passing a pointer to a concrete type
// decodes into that type, passing a *interface{} yields the format's generic
// representation.
type Unmarshaler interface {
	Unmarshal(in interface{}) error
}

func defaultMarshallers() map[Format]Marshaller {
	return map[Format]Marshaller{
		Avro:     NewAvroMarshaller(),
		Protobuf: NewProtoMarshaller(),
		Json:     NewJsonMarshaller(),
	}
}
