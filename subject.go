package schemaregistry

import "fmt"

// SubjectNamingStrategy maps a message's topic, key/value role and record
// name onto the registry subject its schema versions are grouped under.
type SubjectNamingStrategy int

const (
	// TopicNameStrategy derives the subject from the topic name, suffixed
	// with `-key` or `-value` depending on which part of the message the
	// schema encodes.
	TopicNameStrategy SubjectNamingStrategy = iota
	// RecordNameStrategy uses the schema's fully qualified record name. For
	// Protobuf this is the message name, for JSON Schema the title.
	RecordNameStrategy
	// TopicRecordNameStrategy combines the topic name and the fully
	// qualified record name.
	TopicRecordNameStrategy
)

func (s SubjectNamingStrategy) String() string {
	switch s {
	case RecordNameStrategy:
		return `RecordNameStrategy`
	case TopicRecordNameStrategy:
		return `TopicRecordNameStrategy`
	default:
		return `TopicNameStrategy`
	}
}

// SchemaDetails describes where a schema lives in the registry and how its
// subject name is derived.
type SchemaDetails struct {
	// Subject, when set, is used verbatim and overrides the naming strategy.
	Subject string
	// Strategy selects how the subject is derived from the fields below.
	Strategy SubjectNamingStrategy
	Topic    string
	// IsKey marks the schema as encoding the message key rather than the
	// value. It only affects TopicNameStrategy.
	IsKey bool
	// RecordName is the fully qualified name of the schema's root type. It
	// is not validated against the schema, so it must match whatever the
	// registry was told when the schema was first registered.
	RecordName string
	// Version of the schema to resolve, VersionLatest for the latest.
	Version int
	Format  Format
	// References lists other registered schemas required to resolve this
	// one. They are forwarded to the registry on registration.
	References []Reference
}

// SubjectName derives the registry subject for the schema. The derivation is
// deterministic, the same details always name the same subject.
func (d SchemaDetails) SubjectName() string {
	if d.Subject != `` {
		return d.Subject
	}

	switch d.Strategy {
	case RecordNameStrategy:
		return d.RecordName
	case TopicRecordNameStrategy:
		return fmt.Sprintf(`%s-%s`, d.Topic, d.RecordName)
	default:
		suffix := `value`
		if d.IsKey {
			suffix = `key`
		}
		return fmt.Sprintf(`%s-%s`, d.Topic, suffix)
	}
}
