package schemaregistry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWireFormat is returned when a payload does not start with the
	// magic byte or is too short to carry the five byte wire header.
	ErrInvalidWireFormat = errors.New(`schemaregistry: invalid wire format`)

	// ErrFormatMismatch is returned when the format requested by the caller
	// disagrees with the format recorded for the resolved schema.
	ErrFormatMismatch = errors.New(`schemaregistry: schema format mismatch`)
)

// RegistryError reports a failed call to the schema registry service. Op is
// one of `register`, `fetch-by-id` or `fetch-by-version`.
type RegistryError struct {
	Op       string
	Subject  string
	SchemaID int
	Version  int
	Err      error
}

func (e *RegistryError) Error() string {
	switch e.Op {
	case `fetch-by-id`:
		return fmt.Sprintf(`schemaregistry: %s [%d] failed due to %v`, e.Op, e.SchemaID, e.Err)
	case `fetch-by-version`:
		return fmt.Sprintf(`schemaregistry: %s [%s][%s] failed due to %v`, e.Op, e.Subject, Version(e.Version), e.Err)
	default:
		return fmt.Sprintf(`schemaregistry: %s [%s] failed due to %v`, e.Op, e.Subject, e.Err)
	}
}

func (e *RegistryError) Unwrap() error { return e.Err }

// SchemaParseError reports a schema definition that does not parse for its
// declared format. The schema may have come from the caller or the registry.
type SchemaParseError struct {
	Format Format
	Err    error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf(`schemaregistry: %s schema parse failed due to %v`, e.Format, e.Err)
}

func (e *SchemaParseError) Unwrap() error { return e.Err }

// EncodeError reports a value that does not conform to its resolved schema.
type EncodeError struct {
	SchemaID int
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf(`schemaregistry: encode failed for schema [%d] due to %v`, e.SchemaID, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports payload bytes that do not conform to the resolved
// schema.
type DecodeError struct {
	SchemaID int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf(`schemaregistry: decode failed for schema [%d] due to %v`, e.SchemaID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
