/**
 * Copyright 2024 OpenStream Engineering.
 * All rights reserved.
 */

package schemaregistry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tryfix/errors"
)

type jsonSchema struct {
	schema    *jsonschema.Schema
	canonical string
}

func (s *jsonSchema) Format() Format { return Json }

func (s *jsonSchema) Canonical() string { return s.canonical }

// JsonMarshaller encodes and decodes JSON messages validated against a JSON
// Schema. Values are validated on both encode and decode so a payload that
// violates its registered schema never crosses the wire unnoticed.
type JsonMarshaller struct{}

func NewJsonMarshaller() *JsonMarshaller {
	return &JsonMarshaller{}
}

func (m *JsonMarshaller) Parse(schema string) (CompiledSchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(`schema.json`, strings.NewReader(schema)); err != nil {
		return nil, &SchemaParseError{Format: Json, Err: err}
	}

	compiled, err := compiler.Compile(`schema.json`)
	if err != nil {
		return nil, &SchemaParseError{Format: Json, Err: err}
	}

	// compact re-marshal gives a stable canonical form, encoding/json sorts
	// object keys
	var doc interface{}
	if err := json.Unmarshal([]byte(schema), &doc); err != nil {
		return nil, &SchemaParseError{Format: Json, Err: err}
	}
	canonical, err := json.Marshal(doc)
	if err != nil {
		return nil, &SchemaParseError{Format: Json, Err: err}
	}

	return &jsonSchema{schema: compiled, canonical: string(canonical)}, nil
}

func (m *JsonMarshaller) Marshall(schema CompiledSchema, v interface{}) ([]byte, error) {
	sch, ok := schema.(*jsonSchema)
	if !ok {
		return nil, errors.New(fmt.Sprintf(`schema [%s] was not compiled by the json marshaller`, schema.Format()))
	}

	byt, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithPrevious(err, `json marshal failed`)
	}

	var doc interface{}
	if err := json.Unmarshal(byt, &doc); err != nil {
		return nil, errors.WithPrevious(err, `json remarshal failed`)
	}

	if err := sch.schema.Validate(doc); err != nil {
		return nil, err
	}

	return byt, nil
}

func (m *JsonMarshaller) NewUnmarshaler(schema CompiledSchema, data []byte) Unmarshaler {
	return &JsonUnmarshaler{schema: schema, data: data}
}

type JsonUnmarshaler struct {
	schema CompiledSchema
	data   []byte
}

func (u *JsonUnmarshaler) Unmarshal(in interface{}) error {
	sch, ok := u.schema.(*jsonSchema)
	if !ok {
		return errors.New(fmt.Sprintf(`schema [%s] was not compiled by the json marshaller`, u.schema.Format()))
	}

	var doc interface{}
	if err := json.Unmarshal(u.data, &doc); err != nil {
		return err
	}

	if err := sch.schema.Validate(doc); err != nil {
		return err
	}

	return json.Unmarshal(u.data, in)
}
