package schemaregistry

import (
	"fmt"
)

// Deserializer decodes wire format payloads referencing any schema id. It is
// stateless with respect to subjects, safe for unrestricted concurrent use
// and cheap enough to hand to every consumer task.
type Deserializer struct {
	cache *schemaCache
}

// Deserialize decodes a payload into the format's generic representation,
// a map[string]interface{} for Avro and JSON records, a proto.Message for
// Protobuf.
func (d *Deserializer) Deserialize(data []byte, format Format) (interface{}, error) {
	var v interface{}
	if err := d.DeserializeInto(data, format, &v); err != nil {
		return nil, err
	}

	return v, nil
}

// DeserializeInto decodes a payload into the given target, which must be a
// pointer. The schema id is read from the wire header and resolved through
// the shared cache, fetching unseen schemas from the registry exactly once.
func (d *Deserializer) DeserializeInto(data []byte, format Format, in interface{}) error {
	id, payload, err := decodePrefix(data)
	if err != nil {
		return err
	}

	entry, err := d.cache.ResolveByID(id)
	if err != nil {
		return err
	}

	if entry.Raw.Format != format {
		return fmt.Errorf(`%w: schema [%d] is registered as [%s], requested [%s]`,
			ErrFormatMismatch, id, entry.Raw.Format, format)
	}

	m, err := d.cache.marshaller(format)
	if err != nil {
		return err
	}

	if err := m.NewUnmarshaler(entry.Compiled, payload).Unmarshal(in); err != nil {
		return &DecodeError{SchemaID: id, Err: err}
	}

	return nil
}
