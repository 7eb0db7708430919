package schemaregistry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_PostSchemasIdempotent(t *testing.T) {
	transport := newFakeTransport()
	reg := newTestRegistry(transport)

	entry := SchemaEntry{
		Schema:  testAvroSchema,
		Details: SchemaDetails{Topic: `my-topic`, Format: Avro},
	}

	ids, err := reg.PostSchemas(entry)
	require.NoError(t, err)
	require.Equal(t, []int{1}, ids)

	// posting again is a cache hit, no second registration call
	again, err := reg.PostSchemas(entry)
	require.NoError(t, err)
	require.Equal(t, ids, again)
	require.Equal(t, int32(1), transport.registerCalls.Load())
}

func TestRegistry_PostSchemasStopsAtFailure(t *testing.T) {
	transport := newFakeTransport()
	reg := newTestRegistry(transport)

	ids, err := reg.PostSchemas(
		SchemaEntry{Schema: testAvroSchema, Details: SchemaDetails{Topic: `my-topic`, Format: Avro}},
		SchemaEntry{Schema: `{"type":"record"`, Details: SchemaDetails{Topic: `other-topic`, Format: Avro}},
	)
	require.Error(t, err)
	require.Equal(t, []int{1}, ids)

	var parseErr *SchemaParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, Avro, parseErr.Format)
}

// The canonical serialize/deserialize scenario: first registration takes id
// 1, the payload starts with the five byte wire header carrying it, and the
// payload round-trips.
func TestRegistry_SerializeDeserializeScenario(t *testing.T) {
	transport := newFakeTransport()
	reg := newTestRegistry(transport)

	details := SchemaDetails{Topic: `my-topic`, Format: Avro}
	require.Equal(t, `my-topic-value`, details.SubjectName())

	serializer, err := reg.Serializer(testAvroSchema, details)
	require.NoError(t, err)

	payload, err := serializer.Serialize(testRecord{A: 100, B: `My Test`})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, []byte{0x00, 0x00, 0x00, 0x00, 0x01}))
	require.Greater(t, len(payload), wirePrefixSize)

	id, ok := serializer.SchemaID()
	require.True(t, ok)
	require.Equal(t, 1, id)

	v, err := reg.Deserializer().Deserialize(payload, Avro)
	require.NoError(t, err)

	record, ok := v.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, int64(100), record[`a`])
	require.Equal(t, `My Test`, record[`b`])
}

func TestRegistry_DeserializeInto(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	serializer, err := reg.Serializer(testAvroSchema, SchemaDetails{Topic: `my-topic`, Format: Avro})
	require.NoError(t, err)

	in := testRecord{A: 100, B: `My Test`}
	payload, err := serializer.Serialize(in)
	require.NoError(t, err)

	var out testRecord
	require.NoError(t, reg.Deserializer().DeserializeInto(payload, Avro, &out))
	require.Equal(t, in, out)
}

func TestRegistry_DeserializeBadMagicByte(t *testing.T) {
	transport := newFakeTransport()
	reg := newTestRegistry(transport)

	err := reg.Deserializer().DeserializeInto([]byte{0x01, 0x00, 0x00, 0x00, 0x01, 0xff}, Avro, &testRecord{})
	require.ErrorIs(t, err, ErrInvalidWireFormat)
	require.Equal(t, int32(0), transport.fetchByIDCalls.Load())
}

func TestRegistry_DeserializeUnknownID(t *testing.T) {
	transport := newFakeTransport()
	reg := newTestRegistry(transport)

	payload := append(encodePrefix(42), 0xff)

	_, err := reg.Deserializer().Deserialize(payload, Avro)
	requireRegistryError(t, err)
	require.Equal(t, int32(1), transport.fetchByIDCalls.Load())

	// the missing id is not cached as a failure, a retry fetches again
	_, err = reg.Deserializer().Deserialize(payload, Avro)
	requireRegistryError(t, err)
	require.Equal(t, int32(2), transport.fetchByIDCalls.Load())
}

func TestRegistry_DeserializeFormatMismatch(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	serializer, err := reg.Serializer(testAvroSchema, SchemaDetails{Topic: `my-topic`, Format: Avro})
	require.NoError(t, err)

	payload, err := serializer.Serialize(testRecord{A: 1, B: `b`})
	require.NoError(t, err)

	_, err = reg.Deserializer().Deserialize(payload, Json)
	require.ErrorIs(t, err, ErrFormatMismatch)
}

func TestRegistry_DeserializeCorruptPayload(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	serializer, err := reg.Serializer(testAvroSchema, SchemaDetails{Topic: `my-topic`, Format: Avro})
	require.NoError(t, err)

	payload, err := serializer.Serialize(testRecord{A: 1, B: `b`})
	require.NoError(t, err)

	// a long field truncated mid varint
	var out testRecord
	err = reg.Deserializer().DeserializeInto(payload[:wirePrefixSize], Avro, &out)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, 1, decodeErr.SchemaID)
}

func TestRegistry_SerializerRequiresSchemaOrSubject(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	_, err := reg.Serializer(``, SchemaDetails{Format: Avro, Strategy: RecordNameStrategy})
	require.Error(t, err)
}

func TestRegistry_JsonRoundTrip(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	serializer, err := reg.Serializer(testJsonSchema, SchemaDetails{Topic: `my-topic`, Format: Json})
	require.NoError(t, err)

	payload, err := serializer.Serialize(testRecord{A: 100, B: `My Test`})
	require.NoError(t, err)

	var out testRecord
	require.NoError(t, reg.Deserializer().DeserializeInto(payload, Json, &out))
	require.Equal(t, testRecord{A: 100, B: `My Test`}, out)
}

func TestRegistry_JsonRejectsNonConformingValue(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	serializer, err := reg.Serializer(testJsonSchema, SchemaDetails{Topic: `my-topic`, Format: Json})
	require.NoError(t, err)

	type looseRecord struct {
		A string `json:"a"`
		B string `json:"b"`
	}

	_, err = serializer.Serialize(looseRecord{A: `not-an-integer`, B: `b`})

	var encodeErr *EncodeError
	require.ErrorAs(t, err, &encodeErr)
}

func TestRegistry_RequiresURL(t *testing.T) {
	_, err := NewRegistry(``)
	require.Error(t, err)
}

func TestRegistry_Print(t *testing.T) {
	reg := newTestRegistry(newFakeTransport())

	_, err := reg.PostSchemas(SchemaEntry{
		Schema:  testAvroSchema,
		Details: SchemaDetails{Topic: `my-topic`, Format: Avro},
	})
	require.NoError(t, err)

	// must not panic with or without cached entries
	reg.Print()
}

func TestRegistry_ErrorsCarrySubjectContext(t *testing.T) {
	transport := newFakeTransport()
	transport.failRegister = errors.New(`boom`)
	reg := newTestRegistry(transport)

	_, err := reg.PostSchemas(SchemaEntry{
		Schema:  testAvroSchema,
		Details: SchemaDetails{Topic: `my-topic`, Format: Avro},
	})

	var regErr *RegistryError
	require.ErrorAs(t, err, &regErr)
	require.Equal(t, `my-topic-value`, regErr.Subject)
	require.Equal(t, `register`, regErr.Op)
}
