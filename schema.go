package schemaregistry

import "fmt"

// Format identifies the serialization format a schema is written in. The
// values match the schemaType strings understood by the registry.
type Format string

const (
	Avro     Format = `AVRO`
	Protobuf Format = `PROTOBUF`
	Json     Format = `JSON`
)

func (f Format) String() string {
	return string(f)
}

// Reference is a named pointer from one schema to another registered schema,
// enabling cross schema composition. Protobuf uses the import statement and
// JSON Schema the $ref field as the reference name.
type Reference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// RawSchema is a schema definition exactly as supplied by a caller or
// returned by the registry, together with its format and references. Two raw
// schemas with the same canonical content and format resolve to the same
// registry id.
type RawSchema struct {
	Schema     string
	Format     Format
	References []Reference
}

// CompiledSchema is the parsed form of a RawSchema produced by the format's
// Marshaller. Parsing is expensive, so compiled schemas are cached alongside
// the registry id and reused for every encode and decode.
type CompiledSchema interface {
	// Format reports the format the schema was parsed for.
	Format() Format
	// Canonical returns the canonical textual form of the schema. Schemas
	// with equal canonical forms are the same schema for cache purposes.
	Canonical() string
}

// Version is the type to hold default schema version options
type Version int

const (
	// VersionLatest holds the flag to resolve the latest version of a subject
	VersionLatest Version = 0
)

// String returns the requested version type
func (v Version) String() string {
	if v <= VersionLatest {
		return `Latest`
	}

	return fmt.Sprint(int(v))
}
