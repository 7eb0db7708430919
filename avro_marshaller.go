/**
 * Copyright 2024 OpenStream Engineering.
 * All rights reserved.
 */

package schemaregistry

import (
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/tryfix/errors"
)

type avroSchema struct {
	schema avro.Schema
}

func (s *avroSchema) Format() Format { return Avro }

func (s *avroSchema) Canonical() string { return s.schema.String() }

// AvroMarshaller encodes and decodes messages in the Avro binary format.
type AvroMarshaller struct {
	api avro.API
}

func NewAvroMarshaller() *AvroMarshaller {
	return &AvroMarshaller{api: avro.DefaultConfig}
}

func (m *AvroMarshaller) Parse(schema string) (CompiledSchema, error) {
	sch, err := avro.Parse(schema)
	if err != nil {
		return nil, &SchemaParseError{Format: Avro, Err: err}
	}

	return &avroSchema{schema: sch}, nil
}

func (m *AvroMarshaller) Marshall(schema CompiledSchema, v interface{}) ([]byte, error) {
	sch, ok := schema.(*avroSchema)
	if !ok {
		return nil, errors.New(fmt.Sprintf(`schema [%s] was not compiled by the avro marshaller`, schema.Format()))
	}

	return m.api.Marshal(sch.schema, v)
}

func (m *AvroMarshaller) NewUnmarshaler(schema CompiledSchema, data []byte) Unmarshaler {
	return &AvroUnmarshaler{api: m.api, schema: schema, data: data}
}

type AvroUnmarshaler struct {
	api    avro.API
	schema CompiledSchema
	data   []byte
}

func (u *AvroUnmarshaler) Unmarshal(in interface{}) error {
	sch, ok := u.schema.(*avroSchema)
	if !ok {
		return errors.New(fmt.Sprintf(`schema [%s] was not compiled by the avro marshaller`, u.schema.Format()))
	}

	return u.api.Unmarshal(sch.schema, u.data, in)
}
