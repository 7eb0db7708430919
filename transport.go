package schemaregistry

import (
	"github.com/riferrei/srclient"
)

// Transport issues the primitive operations against the remote registry.
// Implementations are stateless with respect to this module, every caching
// and deduplication concern lives in the schema cache. All failures are
// reported as *RegistryError.
type Transport interface {
	// Register registers the schema under the subject and returns the
	// registry assigned id. Registering an identical schema again returns
	// the existing id.
	Register(subject string, schema RawSchema) (int, error)

	// FetchByID fetches the schema registered under the global id.
	FetchByID(id int) (RawSchema, error)

	// FetchBySubjectVersion fetches the schema registered under the subject
	// and version. VersionLatest or below resolves the latest version. The
	// version the registry reports back is returned alongside the schema.
	FetchBySubjectVersion(subject string, version int) (int, int, RawSchema, error)
}

// srTransport adapts a riferrei/srclient client to the Transport interface.
type srTransport struct {
	client srclient.ISchemaRegistryClient
}

// NewTransport wraps a schema registry client as a Transport. Tests and
// examples can hand in srclient's mock client.
func NewTransport(client srclient.ISchemaRegistryClient) Transport {
	return &srTransport{client: client}
}

func (t *srTransport) Register(subject string, schema RawSchema) (int, error) {
	refs := make([]srclient.Reference, 0, len(schema.References))
	for _, ref := range schema.References {
		refs = append(refs, srclient.Reference{Name: ref.Name, Subject: ref.Subject, Version: ref.Version})
	}

	registered, err := t.client.CreateSchema(subject, schema.Schema, srclient.SchemaType(schema.Format), refs...)
	if err != nil {
		return 0, &RegistryError{Op: `register`, Subject: subject, Err: err}
	}

	return registered.ID(), nil
}

func (t *srTransport) FetchByID(id int) (RawSchema, error) {
	schema, err := t.client.GetSchema(id)
	if err != nil {
		return RawSchema{}, &RegistryError{Op: `fetch-by-id`, SchemaID: id, Err: err}
	}

	return rawSchemaOf(schema), nil
}

func (t *srTransport) FetchBySubjectVersion(subject string, version int) (int, int, RawSchema, error) {
	var schema *srclient.Schema
	var err error
	if version <= int(VersionLatest) {
		schema, err = t.client.GetLatestSchema(subject)
	} else {
		schema, err = t.client.GetSchemaByVersion(subject, version)
	}
	if err != nil {
		return 0, 0, RawSchema{}, &RegistryError{Op: `fetch-by-version`, Subject: subject, Version: version, Err: err}
	}

	return schema.ID(), schema.Version(), rawSchemaOf(schema), nil
}

func rawSchemaOf(schema *srclient.Schema) RawSchema {
	raw := RawSchema{
		Schema: schema.Schema(),
		// the registry omits the schemaType for avro schemas
		Format: Avro,
	}

	if typ := schema.SchemaType(); typ != nil {
		raw.Format = Format(*typ)
	}

	for _, ref := range schema.References() {
		raw.References = append(raw.References, Reference{Name: ref.Name, Subject: ref.Subject, Version: ref.Version})
	}

	return raw
}
